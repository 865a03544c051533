package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
	"github.com/secmon-lab/argos/pkg/utils/errutil"
)

// ConfigUseCase manages per-guild settings and answers permission queries
// derived from them
type ConfigUseCase struct {
	repo      interfaces.Repository
	operators []types.UserID
}

func NewConfigUseCase(repo interfaces.Repository, operators []types.UserID) *ConfigUseCase {
	return &ConfigUseCase{
		repo:      repo,
		operators: operators,
	}
}

func (uc *ConfigUseCase) isOperator(userID types.UserID) bool {
	for _, id := range uc.operators {
		if id == userID {
			return true
		}
	}
	return false
}

// Get returns the guild's configuration. Absence surfaces as
// repository.ErrNotFound for the caller to branch on.
func (uc *ConfigUseCase) Get(ctx context.Context, guildID types.GuildID) (*model.GuildConfig, error) {
	cfg, err := uc.repo.GuildConfig().Get(ctx, guildID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get guild config", goerr.V(GuildIDKey, guildID))
	}
	return cfg, nil
}

// Upsert merges the patch into the actor's guild configuration, creating it
// on first write. Requires manager permission.
func (uc *ConfigUseCase) Upsert(ctx context.Context, actor *model.Actor, patch *model.GuildConfigPatch) (*model.GuildConfig, error) {
	if patch == nil || patch.IsEmpty() {
		return nil, goerr.New("no configuration fields supplied")
	}
	if !uc.IsManager(ctx, actor) {
		return nil, goerr.Wrap(ErrManagerRequired, "cannot update guild config",
			goerr.V(GuildIDKey, actor.GuildID), goerr.V("user_id", actor.ID))
	}

	cfg, err := uc.repo.GuildConfig().Upsert(ctx, actor.GuildID, patch)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert guild config", goerr.V(GuildIDKey, actor.GuildID))
	}
	return cfg, nil
}

// lookup returns the stored config, or an empty one when missing. Any other
// store failure is logged and also yields the empty config, so permission
// checks degrade to deny-by-default instead of crashing the caller.
func (uc *ConfigUseCase) lookup(ctx context.Context, guildID types.GuildID) *model.GuildConfig {
	cfg, err := uc.repo.GuildConfig().Get(ctx, guildID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			errutil.Handle(ctx, err, "guild config lookup failed, treating as absent")
		}
		return &model.GuildConfig{GuildID: guildID}
	}
	return cfg
}

// IsManager reports whether the actor may administer the guild's
// configuration: platform administrator, operator override, or holder of the
// configured manager role.
func (uc *ConfigUseCase) IsManager(ctx context.Context, actor *model.Actor) bool {
	if actor == nil {
		return false
	}
	if actor.Admin || uc.isOperator(actor.ID) {
		return true
	}
	cfg := uc.lookup(ctx, actor.GuildID)
	return actor.HasRole(cfg.ManagerRoleID)
}

// CanBlacklist reports whether the actor may manage the blacklist: guild
// owner, operator override, or holder of the configured blacklist role.
func (uc *ConfigUseCase) CanBlacklist(ctx context.Context, actor *model.Actor) bool {
	if actor == nil {
		return false
	}
	if actor.Owner || uc.isOperator(actor.ID) {
		return true
	}
	cfg := uc.lookup(ctx, actor.GuildID)
	return actor.HasRole(cfg.BlacklistRoleID)
}
