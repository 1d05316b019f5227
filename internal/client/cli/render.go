package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/permalink/internal/client/batch"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/client/networks"
)

const gatewayBase = "https://gateway.irys.xyz/"

func gatewayURL(id string) string {
	return gatewayBase + id
}

func shortAddress(hex string) string {
	if len(hex) <= 12 {
		return hex
	}
	return hex[:6] + "…" + hex[len(hex)-4:]
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func formatProgress(p models.UploadProgress) string {
	switch p.Stage {
	case models.StageFunding:
		return "Funding storage balance..."
	case models.StageUploading:
		return fmt.Sprintf("Uploading %d/%d: %s", p.Current, p.Total, p.FileName)
	case models.StageManifest:
		return "Uploading manifest..."
	}
	return string(p.Stage)
}

func formatEstimate(est *models.CostEstimate) string {
	return fmt.Sprintf("%s: %s ETH (funding %s ETH with buffer)",
		formatBytes(est.TotalBytes), batch.FormatEther(est.PriceAtomic), batch.FormatEther(est.Buffered))
}

func formatUpload(res *models.UploadBatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Manifest: %s\n", res.ManifestID)
	fmt.Fprintf(&b, "Gateway:  %s\n", gatewayURL(res.ManifestID))
	if res.FundingTx != "" {
		fmt.Fprintf(&b, "Funded:   %s ETH (tx %s)\n", batch.FormatEther(res.FundedWei), res.FundingTx)
	}
	for i, id := range res.FileIDs {
		fmt.Fprintf(&b, "  File #%d %s\n", i+1, gatewayURL(id))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatLink(net networks.Config, res *models.EnsLinkResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Linked: %s\n", res.Subdomain)
	if net.Key == networks.Mainnet {
		fmt.Fprintf(&b, "Open:   https://%s.limo\n", res.Subdomain)
	}
	fmt.Fprintf(&b, "Subnode tx:     %s%s\n", net.ExplorerTxURL, res.TxHash.Hex())
	fmt.Fprintf(&b, "Contenthash tx: %s%s", net.ExplorerTxURL, res.ContenthashTx.Hex())
	return b.String()
}
