package interfaces

import (
	"context"

	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
)

// GuildConfigRepository defines the interface for per-guild settings
type GuildConfigRepository interface {
	// Get retrieves the config for a guild. Returns ErrNotFound when the
	// guild has never been configured.
	Get(ctx context.Context, guildID types.GuildID) (*model.GuildConfig, error)

	// Upsert creates the config when absent and merges only the non-nil
	// patch fields over the existing record otherwise. An omitted field is
	// never cleared.
	Upsert(ctx context.Context, guildID types.GuildID, patch *model.GuildConfigPatch) (*model.GuildConfig, error)
}
