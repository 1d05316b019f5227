// Package services contains application services for the permalink client.
// This file defines the upload flow: the state machine that drives one
// wallet session through estimate, upload and name link.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/permalink/internal/client/batch"
	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/client/storage"
	"github.com/dmitrijs2005/permalink/internal/common"
	"github.com/dmitrijs2005/permalink/internal/logging"
)

// Uploader quotes and stores a batch. *storage.Service satisfies it.
type Uploader interface {
	EstimateUploadCost(ctx context.Context, session *chain.Session, files []models.File) (*models.CostEstimate, error)
	UploadBatch(ctx context.Context, session *chain.Session, files []models.File, progress storage.ProgressFunc) (*models.UploadBatchResult, error)
}

// Linker binds a manifest under a new versioned name. *ens.Client satisfies it.
type Linker interface {
	LinkManifest(ctx context.Context, session *chain.Session, req models.EnsLinkRequest) (*models.EnsLinkResult, error)
}

// FlowObserver receives a copy of the flow state after every change.
type FlowObserver func(models.FlowSnapshot)

// UploadFlow drives a single session through the upload lifecycle.
//
// Contract:
//   - EstimateFiles: idle/success/error -> estimating -> idle, or error.
//   - StartUpload: -> funding -> uploading -> success, or error.
//   - LinkEns: success -> linking -> success, or error. Needs a prior upload.
//   - ClearError: error -> success when an upload exists, otherwise idle.
//   - Snapshot: copy of the current state tuple.
//
// Every failure is stored as the snapshot's Error message and also returned.
// A call made while another one is in flight returns common.ErrBusy and
// leaves the state untouched.
type UploadFlow interface {
	SetSession(session *chain.Session)
	EstimateFiles(ctx context.Context, files []models.File) error
	StartUpload(ctx context.Context, files []models.File) error
	LinkEns(ctx context.Context, parentName string) error
	ClearError()
	Snapshot() models.FlowSnapshot
}

// FlowOption configures an UploadFlow.
type FlowOption func(*uploadFlow)

// WithObserver registers fn to be called after every state change.
func WithObserver(fn FlowObserver) FlowOption {
	return func(f *uploadFlow) { f.observer = fn }
}

// WithHistory journals successful uploads and links to h. Journal failures
// are logged and never change the flow state.
func WithHistory(h HistoryService) FlowOption {
	return func(f *uploadFlow) { f.history = h }
}

type uploadFlow struct {
	uploader Uploader
	linker   Linker
	history  HistoryService
	observer FlowObserver
	log      logging.Logger

	mu       sync.Mutex
	busy     bool
	attempt  string
	session  *chain.Session
	snap     models.FlowSnapshot
	uploadID string
}

// NewUploadFlow constructs an UploadFlow in the idle state with no session.
func NewUploadFlow(uploader Uploader, linker Linker, log logging.Logger, opts ...FlowOption) UploadFlow {
	if log == nil {
		log = logging.Nop()
	}
	f := &uploadFlow{
		uploader: uploader,
		linker:   linker,
		log:      log,
		snap:     models.FlowSnapshot{State: models.FlowIdle},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetSession replaces the wallet session used by later calls. Accumulated
// results are kept.
func (f *uploadFlow) SetSession(session *chain.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = session
}

func (f *uploadFlow) Snapshot() models.FlowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Clone()
}

func (f *uploadFlow) EstimateFiles(ctx context.Context, files []models.File) error {
	session, err := f.begin()
	if err != nil {
		return err
	}
	defer f.end()

	if !session.Ready() {
		return f.fail(ctx, common.ErrNoSession)
	}
	if err := batch.Check(files); err != nil {
		return f.fail(ctx, err)
	}

	f.update(ctx, func(s *models.FlowSnapshot) {
		s.State = models.FlowEstimating
		s.Error = ""
	})

	estimate, err := f.uploader.EstimateUploadCost(ctx, session, files)
	if err != nil {
		return f.fail(ctx, fmt.Errorf("estimate upload cost: %w", err))
	}

	f.update(ctx, func(s *models.FlowSnapshot) {
		s.Estimate = estimate.Clone()
		s.State = models.FlowIdle
	})
	return nil
}

func (f *uploadFlow) StartUpload(ctx context.Context, files []models.File) error {
	session, err := f.begin()
	if err != nil {
		return err
	}
	defer f.end()

	if !session.Ready() {
		return f.fail(ctx, common.ErrNoSession)
	}
	if err := batch.Check(files); err != nil {
		return f.fail(ctx, err)
	}

	f.update(ctx, func(s *models.FlowSnapshot) {
		s.Error = ""
		s.Link = nil
		s.Progress = nil
		s.State = models.FlowFunding
	})

	result, err := f.uploader.UploadBatch(ctx, session, files, func(p models.UploadProgress) {
		f.update(ctx, func(s *models.FlowSnapshot) {
			s.Progress = &p
			if p.Stage == models.StageFunding {
				s.State = models.FlowFunding
			} else {
				s.State = models.FlowUploading
			}
		})
	})
	if err != nil {
		return f.fail(ctx, fmt.Errorf("upload failed: %w", err))
	}

	uploadID := f.recordUpload(ctx, result, files)

	f.mu.Lock()
	f.uploadID = uploadID
	f.mu.Unlock()

	f.update(ctx, func(s *models.FlowSnapshot) {
		s.Upload = result.Clone()
		s.State = models.FlowSuccess
	})
	f.log.Info(ctx, "upload complete", "flow_id", f.attemptID(), "manifest_id", result.ManifestID, "files", len(result.FileIDs))
	return nil
}

func (f *uploadFlow) LinkEns(ctx context.Context, parentName string) error {
	session, err := f.begin()
	if err != nil {
		return err
	}
	defer f.end()

	if !session.Ready() {
		return f.fail(ctx, common.ErrNoSession)
	}

	f.mu.Lock()
	var manifestID string
	if f.snap.Upload != nil {
		manifestID = f.snap.Upload.ManifestID
	}
	f.mu.Unlock()
	if manifestID == "" {
		return f.fail(ctx, common.ErrNotUploaded)
	}

	f.update(ctx, func(s *models.FlowSnapshot) {
		s.Error = ""
		s.State = models.FlowLinking
	})

	linked, err := f.linker.LinkManifest(ctx, session, models.EnsLinkRequest{
		ParentName: parentName,
		ManifestID: manifestID,
		Owner:      session.Address,
	})
	if err != nil {
		return f.fail(ctx, fmt.Errorf("link name: %w", err))
	}

	f.recordLink(ctx, linked)

	f.update(ctx, func(s *models.FlowSnapshot) {
		l := *linked
		s.Link = &l
		s.State = models.FlowSuccess
	})
	f.log.Info(ctx, "name linked", "flow_id", f.attemptID(), "subdomain", linked.Subdomain)
	return nil
}

func (f *uploadFlow) ClearError() {
	f.update(context.Background(), func(s *models.FlowSnapshot) {
		s.Error = ""
		if s.State != models.FlowError {
			return
		}
		if s.Upload != nil {
			s.State = models.FlowSuccess
		} else {
			s.State = models.FlowIdle
		}
	})
}

// begin claims the single operation slot and tags the attempt with a fresh id.
func (f *uploadFlow) begin() (*chain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return nil, common.ErrBusy
	}
	f.busy = true
	f.attempt = uuid.NewString()
	return f.session, nil
}

func (f *uploadFlow) end() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
}

func (f *uploadFlow) attemptID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempt
}

// update applies fn under the lock and notifies the observer outside it.
func (f *uploadFlow) update(ctx context.Context, fn func(s *models.FlowSnapshot)) {
	f.mu.Lock()
	prev := f.snap.State
	fn(&f.snap)
	snap := f.snap.Clone()
	attempt := f.attempt
	f.mu.Unlock()

	if snap.State != prev {
		f.log.Debug(ctx, "flow transition", "flow_id", attempt, "from", prev, "state", snap.State)
	}
	if f.observer != nil {
		f.observer(snap)
	}
}

func (f *uploadFlow) fail(ctx context.Context, err error) error {
	f.update(ctx, func(s *models.FlowSnapshot) {
		s.Error = err.Error()
		s.State = models.FlowError
	})
	f.log.Error(ctx, "flow failed", "flow_id", f.attemptID(), "error", err)
	return err
}

func (f *uploadFlow) recordUpload(ctx context.Context, result *models.UploadBatchResult, files []models.File) string {
	if f.history == nil {
		return ""
	}
	id, err := f.history.RecordUpload(ctx, result, files)
	if err != nil {
		f.log.Warn(ctx, "journal upload failed", "error", err)
		return ""
	}
	return id
}

func (f *uploadFlow) recordLink(ctx context.Context, linked *models.EnsLinkResult) {
	f.mu.Lock()
	uploadID := f.uploadID
	f.mu.Unlock()

	if f.history == nil || uploadID == "" {
		return
	}
	if err := f.history.RecordLink(ctx, uploadID, linked); err != nil {
		f.log.Warn(ctx, "journal link failed", "error", err)
	}
}
