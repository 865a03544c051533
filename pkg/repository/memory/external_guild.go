package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
)

type externalGuildRepository struct {
	mu     sync.RWMutex
	guilds map[types.GuildID]*model.ExternalGuild
}

func newExternalGuildRepository() *externalGuildRepository {
	return &externalGuildRepository{
		guilds: make(map[types.GuildID]*model.ExternalGuild),
	}
}

// copyExternalGuild creates a deep copy of a registration
func copyExternalGuild(g *model.ExternalGuild) *model.ExternalGuild {
	copied := *g
	copied.AllowedRoleIDs = make([]types.RoleID, len(g.AllowedRoleIDs))
	copy(copied.AllowedRoleIDs, g.AllowedRoleIDs)
	return &copied
}

func (r *externalGuildRepository) Get(ctx context.Context, guildID types.GuildID) (*model.ExternalGuild, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	guild, exists := r.guilds[guildID]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "external guild not found", goerr.V("guild_id", guildID))
	}

	return copyExternalGuild(guild), nil
}

func (r *externalGuildRepository) Put(ctx context.Context, guild *model.ExternalGuild) (*model.ExternalGuild, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := copyExternalGuild(guild)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.guilds[stored.GuildID] = stored
	return copyExternalGuild(stored), nil
}

func (r *externalGuildRepository) Touch(ctx context.Context, guildID types.GuildID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	guild, exists := r.guilds[guildID]
	if !exists {
		return false, nil
	}

	guild.LastAccessedAt = now.UTC()
	guild.Active = true
	guild.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *externalGuildRepository) List(ctx context.Context) ([]*model.ExternalGuild, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	guilds := make([]*model.ExternalGuild, 0, len(r.guilds))
	for _, g := range r.guilds {
		guilds = append(guilds, copyExternalGuild(g))
	}
	sort.Slice(guilds, func(i, j int) bool {
		return guilds[i].GuildID < guilds[j].GuildID
	})

	return guilds, nil
}

func (r *externalGuildRepository) SweepInactive(ctx context.Context, deadline time.Time) (*model.SweepResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &model.SweepResult{}
	now := time.Now().UTC()

	for _, g := range r.guilds {
		if g.Active && g.LastAccessedAt.Before(deadline) {
			g.Active = false
			g.UpdatedAt = now
			result.Demoted = append(result.Demoted, g.GuildID)
		}
	}
	sort.Slice(result.Demoted, func(i, j int) bool {
		return result.Demoted[i] < result.Demoted[j]
	})

	for _, g := range r.guilds {
		if g.Active {
			result.Active++
		} else {
			result.Inactive++
		}
	}

	return result, nil
}
