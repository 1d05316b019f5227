package services

import (
	"context"
	"fmt"
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/ens"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/common"
)

// NameFinder looks up parent names and free version labels. *ens.Client
// satisfies it.
type NameFinder interface {
	DiscoverNames(ctx context.Context, session *chain.Session, owner ethcommon.Address) []models.EnsNameCandidate
	FindNextVersion(ctx context.Context, session *chain.Session, parent string) (*models.EnsVersionSuggestion, error)
	Contenthash(ctx context.Context, r chain.Reader, name string) ([]byte, error)
}

// NameService keeps the candidate parent names of the connected address.
//
// Contract:
//   - Refresh: without a session clears the list; otherwise replaces it.
//     Discovery channels that fail only contribute no names.
//   - Names: last refreshed list.
//   - Loading: true while a Refresh is running.
//   - NextVersion: computes the free vN label under parent, never cached.
//   - Resolve: content id of the storage location name points at, or "".
type NameService interface {
	Refresh(ctx context.Context, session *chain.Session) []models.EnsNameCandidate
	Names() []models.EnsNameCandidate
	Loading() bool
	NextVersion(ctx context.Context, session *chain.Session, parent string) (*models.EnsVersionSuggestion, error)
	Resolve(ctx context.Context, session *chain.Session, name string) (string, error)
}

type nameService struct {
	finder NameFinder

	mu      sync.Mutex
	names   []models.EnsNameCandidate
	loading bool
}

func NewNameService(finder NameFinder) NameService {
	return &nameService{finder: finder}
}

func (n *nameService) Refresh(ctx context.Context, session *chain.Session) []models.EnsNameCandidate {
	if session == nil || session.Reader == nil || session.Address == (ethcommon.Address{}) {
		n.set(nil)
		return nil
	}

	n.mu.Lock()
	n.loading = true
	n.mu.Unlock()

	names := n.finder.DiscoverNames(ctx, session, session.Address)
	n.set(names)
	return names
}

func (n *nameService) set(names []models.EnsNameCandidate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.names = names
	n.loading = false
}

func (n *nameService) Names() []models.EnsNameCandidate {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.EnsNameCandidate(nil), n.names...)
}

func (n *nameService) Loading() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.loading
}

func (n *nameService) NextVersion(ctx context.Context, session *chain.Session, parent string) (*models.EnsVersionSuggestion, error) {
	return n.finder.FindNextVersion(ctx, session, parent)
}

func (n *nameService) Resolve(ctx context.Context, session *chain.Session, name string) (string, error) {
	if session == nil || session.Reader == nil {
		return "", common.ErrNoSession
	}
	if !ens.IsSupported(name) {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidName, name)
	}
	record, err := n.finder.Contenthash(ctx, session.Reader, name)
	if err != nil {
		return "", fmt.Errorf("read contenthash of %s: %w", name, err)
	}
	if len(record) == 0 {
		return "", nil
	}
	return ens.DecodeArweaveContenthash(record)
}
