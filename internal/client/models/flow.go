package models

// FlowState is the externally observable state of an upload session.
type FlowState string

const (
	FlowIdle       FlowState = "idle"
	FlowEstimating FlowState = "estimating"
	FlowFunding    FlowState = "funding"
	FlowUploading  FlowState = "uploading"
	FlowLinking    FlowState = "linking"
	FlowSuccess    FlowState = "success"
	FlowError      FlowState = "error"
)

// FlowSnapshot is a copy of the orchestrator's state tuple.
type FlowSnapshot struct {
	State    FlowState
	Estimate *CostEstimate
	Progress *UploadProgress
	Upload   *UploadBatchResult
	Link     *EnsLinkResult
	Error    string
}

// Clone returns a copy of s whose results share no memory with s.
func (s FlowSnapshot) Clone() FlowSnapshot {
	c := s
	c.Estimate = s.Estimate.Clone()
	c.Upload = s.Upload.Clone()
	if s.Progress != nil {
		p := *s.Progress
		c.Progress = &p
	}
	if s.Link != nil {
		l := *s.Link
		c.Link = &l
	}
	return c
}
