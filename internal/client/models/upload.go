package models

import (
	"math/big"
	"time"
)

// CostEstimate is a point-in-time storage quote for a batch. It is stale
// after any batch change. PriceAtomic is the raw quote in wei, Buffered is
// what would be funded, and Price renders PriceAtomic in ether.
type CostEstimate struct {
	PriceAtomic *big.Int
	Buffered    *big.Int
	TotalBytes  int64
	Price       string
}

type UploadStage string

const (
	StageFunding   UploadStage = "funding"
	StageUploading UploadStage = "uploading"
	StageManifest  UploadStage = "manifest"
)

// UploadProgress is emitted before funding, before each file upload and
// before the manifest upload.
type UploadProgress struct {
	Stage    UploadStage
	Current  int
	Total    int
	FileName string
}

// UploadBatchResult is produced exactly once per successful upload attempt.
type UploadBatchResult struct {
	FileIDs     []string
	ManifestID  string
	TotalBytes  int64
	FundedWei   *big.Int
	FundingTx   string
	CompletedAt time.Time
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// Clone returns a copy of e that shares no memory with it.
func (e *CostEstimate) Clone() *CostEstimate {
	if e == nil {
		return nil
	}
	c := *e
	c.PriceAtomic = cloneInt(e.PriceAtomic)
	c.Buffered = cloneInt(e.Buffered)
	return &c
}

// Clone returns a copy of r that shares no memory with it.
func (r *UploadBatchResult) Clone() *UploadBatchResult {
	if r == nil {
		return nil
	}
	c := *r
	c.FileIDs = append([]string(nil), r.FileIDs...)
	c.FundedWei = cloneInt(r.FundedWei)
	return &c
}
