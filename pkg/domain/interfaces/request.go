package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
)

// RequestRepository defines the interface for the request ledger. Rows are
// retained indefinitely; nothing in this interface deletes.
type RequestRepository interface {
	// Create persists a new request. Fails with ErrAlreadyExists when the
	// request ID is already present (no overwrite).
	Create(ctx context.Context, req *model.Request) (*model.Request, error)

	// Get retrieves a request by ID. Returns ErrNotFound when absent.
	Get(ctx context.Context, id types.RequestID) (*model.Request, error)

	// Update overwrites mutable view references and metadata. Not used for
	// responder or conclusion transitions, which have dedicated atomic ops.
	Update(ctx context.Context, req *model.Request) (*model.Request, error)

	// AddResponder atomically appends the responder and promotes
	// pending→responding. A responder already present is reported via
	// alreadyPresent with no state change. A concluded request fails with
	// ErrAlreadyConcluded.
	AddResponder(ctx context.Context, id types.RequestID, responderID types.UserID) (req *model.Request, alreadyPresent bool, err error)

	// Conclude atomically populates the conclusion fields and moves the
	// status to concluded. A second conclusion fails with
	// ErrAlreadyConcluded and leaves the original fields unchanged.
	Conclude(ctx context.Context, id types.RequestID, reason string, byID types.UserID, byName string, at time.Time) (*model.Request, error)

	// CountActiveByGuild counts non-concluded requests filed from the guild
	CountActiveByGuild(ctx context.Context, guildID types.GuildID) (int, error)

	// List retrieves requests with optional filtering, newest first
	List(ctx context.Context, opts ...ListRequestOption) ([]*model.Request, error)
}
