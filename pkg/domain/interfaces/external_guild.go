package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
)

// ExternalGuildRepository defines the interface for the customer guild
// registry
type ExternalGuildRepository interface {
	// Get retrieves a registration. Returns ErrNotFound when the guild has
	// never been registered.
	Get(ctx context.Context, guildID types.GuildID) (*model.ExternalGuild, error)

	// Put stores the registration as-is (create or full overwrite)
	Put(ctx context.Context, guild *model.ExternalGuild) (*model.ExternalGuild, error)

	// Touch sets LastAccessedAt to now and forces Active=true. Returns
	// false without side effects when the guild is not registered; a
	// missing registration is never created here.
	Touch(ctx context.Context, guildID types.GuildID, now time.Time) (bool, error)

	// List returns all registrations
	List(ctx context.Context) ([]*model.ExternalGuild, error)

	// SweepInactive flips Active=false on every active registration whose
	// LastAccessedAt is strictly older than the deadline. No other code
	// path may demote a registration on elapsed time.
	SweepInactive(ctx context.Context, deadline time.Time) (*model.SweepResult, error)
}
