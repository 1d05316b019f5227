package models

import "time"

// UploadRecord is a journaled successful upload. The journal is a receipt
// log only; nothing reads it back to resume work.
type UploadRecord struct {
	ID         string
	Network    string
	ManifestID string
	TotalBytes int64
	FundedWei  string
	FundingTx  string
	CreatedAt  time.Time
	Files      []FileRecord
}

type FileRecord struct {
	Position  int
	Name      string
	ContentID string
}

// LinkRecord is a journaled successful name link.
type LinkRecord struct {
	ID            string
	UploadID      string
	Subdomain     string
	Node          string
	SubnodeTx     string
	ContenthashTx string
	NameWrapper   bool
	CreatedAt     time.Time
}
