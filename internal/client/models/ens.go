package models

import "github.com/ethereum/go-ethereum/common"

type NameSource string

const (
	SourceReverse  NameSource = "reverse"
	SourceSubgraph NameSource = "subgraph"
)

// EnsNameCandidate is a parent name the connected address may link under.
type EnsNameCandidate struct {
	Name   string
	Source NameSource
}

// EnsVersionSuggestion is the first free vN label under a parent name.
// It is computed fresh on every request.
type EnsVersionSuggestion struct {
	Label     string
	Index     int
	Subdomain string
	Node      common.Hash
}

// EnsLinkRequest asks for a manifest to be bound under a new vN subname.
type EnsLinkRequest struct {
	ParentName string
	ManifestID string
	Owner      common.Address
}

// EnsLinkResult is the terminal artifact of the naming step.
type EnsLinkResult struct {
	Subdomain       string
	Node            common.Hash
	TxHash          common.Hash
	ContenthashTx   common.Hash
	UsedNameWrapper bool
}
