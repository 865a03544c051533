package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
)

type guildConfigRepository struct {
	mu      sync.RWMutex
	configs map[types.GuildID]*model.GuildConfig
}

func newGuildConfigRepository() *guildConfigRepository {
	return &guildConfigRepository{
		configs: make(map[types.GuildID]*model.GuildConfig),
	}
}

// copyGuildConfig creates a copy so callers never share store memory
func copyGuildConfig(c *model.GuildConfig) *model.GuildConfig {
	copied := *c
	return &copied
}

func (r *guildConfigRepository) Get(ctx context.Context, guildID types.GuildID) (*model.GuildConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.configs[guildID]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "guild config not found", goerr.V("guild_id", guildID))
	}

	return copyGuildConfig(cfg), nil
}

func (r *guildConfigRepository) Upsert(ctx context.Context, guildID types.GuildID, patch *model.GuildConfigPatch) (*model.GuildConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	cfg, exists := r.configs[guildID]
	if !exists {
		cfg = &model.GuildConfig{
			GuildID:   guildID,
			CreatedAt: now,
		}
	} else {
		cfg = copyGuildConfig(cfg)
	}

	patch.Apply(cfg)
	cfg.UpdatedAt = now

	r.configs[guildID] = cfg
	return copyGuildConfig(cfg), nil
}
