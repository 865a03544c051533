package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
)

type requestRepository struct {
	mu       sync.RWMutex
	requests map[types.RequestID]*model.Request
}

func newRequestRepository() *requestRepository {
	return &requestRepository{
		requests: make(map[types.RequestID]*model.Request),
	}
}

// copyRequest creates a deep copy of a request
func copyRequest(req *model.Request) *model.Request {
	copied := *req
	copied.ResponderIDs = make([]types.UserID, len(req.ResponderIDs))
	copy(copied.ResponderIDs, req.ResponderIDs)
	return &copied
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) (*model.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID]; exists {
		return nil, goerr.Wrap(repository.ErrAlreadyExists, "request already exists", goerr.V("id", req.ID))
	}

	now := time.Now().UTC()
	created := copyRequest(req)
	created.CreatedAt = now
	created.UpdatedAt = now

	r.requests[created.ID] = created
	return copyRequest(created), nil
}

func (r *requestRepository) Get(ctx context.Context, id types.RequestID) (*model.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, exists := r.requests[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "request not found", goerr.V("id", id))
	}

	return copyRequest(req), nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.Request) (*model.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.requests[req.ID]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "request not found", goerr.V("id", req.ID))
	}

	updated := copyRequest(req)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.requests[updated.ID] = updated
	return copyRequest(updated), nil
}

// AddResponder holds the write lock across the whole read-modify-write,
// which is the in-memory equivalent of the Firestore transaction.
func (r *requestRepository) AddResponder(ctx context.Context, id types.RequestID, responderID types.UserID) (*model.Request, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, exists := r.requests[id]
	if !exists {
		return nil, false, goerr.Wrap(repository.ErrNotFound, "request not found", goerr.V("id", id))
	}

	if req.Concluded() {
		return nil, false, goerr.Wrap(repository.ErrAlreadyConcluded, "cannot respond to concluded request", goerr.V("id", id))
	}

	if req.HasResponder(responderID) {
		return copyRequest(req), true, nil
	}

	req.ResponderIDs = append(req.ResponderIDs, responderID)
	if req.Status == types.RequestStatusPending {
		req.Status = types.RequestStatusResponding
	}
	req.UpdatedAt = time.Now().UTC()

	return copyRequest(req), false, nil
}

func (r *requestRepository) Conclude(ctx context.Context, id types.RequestID, reason string, byID types.UserID, byName string, at time.Time) (*model.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, exists := r.requests[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "request not found", goerr.V("id", id))
	}

	if req.Concluded() {
		return nil, goerr.Wrap(repository.ErrAlreadyConcluded, "request already concluded", goerr.V("id", id))
	}

	req.Status = types.RequestStatusConcluded
	req.ConclusionReason = reason
	req.ConcludedByID = byID
	req.ConcludedByName = byName
	req.ConcludedAt = at.UTC()
	req.UpdatedAt = time.Now().UTC()

	return copyRequest(req), nil
}

func (r *requestRepository) CountActiveByGuild(ctx context.Context, guildID types.GuildID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, req := range r.requests {
		if req.ExternalGuildID == guildID && !req.Concluded() {
			count++
		}
	}

	return count, nil
}

func (r *requestRepository) List(ctx context.Context, opts ...interfaces.ListRequestOption) ([]*model.Request, error) {
	cfg := interfaces.BuildListRequestConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	requests := make([]*model.Request, 0, len(r.requests))
	for _, req := range r.requests {
		if s := cfg.Status(); s != nil && req.Status != *s {
			continue
		}
		if g := cfg.GuildID(); g != nil && req.ExternalGuildID != *g {
			continue
		}
		requests = append(requests, copyRequest(req))
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})

	if limit := cfg.Limit(); limit > 0 && len(requests) > limit {
		requests = requests[:limit]
	}

	return requests, nil
}
