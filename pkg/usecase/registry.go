package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/interfaces"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
	"github.com/secmon-lab/argos/pkg/service/discord"
	"github.com/secmon-lab/argos/pkg/utils/errutil"
	"github.com/secmon-lab/argos/pkg/utils/logging"
)

// RegistryUseCase manages customer guild registrations
type RegistryUseCase struct {
	repo    interfaces.Repository
	config  *ConfigUseCase
	discord discord.Service
}

func NewRegistryUseCase(repo interfaces.Repository, config *ConfigUseCase, discordService discord.Service) *RegistryUseCase {
	return &RegistryUseCase{
		repo:    repo,
		config:  config,
		discord: discordService,
	}
}

// canAdminister reports whether the actor may run setup commands for their
// own guild
func (uc *RegistryUseCase) canAdminister(actor *model.Actor) bool {
	if actor == nil {
		return false
	}
	return actor.Admin || actor.Owner || uc.config.isOperator(actor.ID)
}

// Register registers or re-registers the actor's guild, designating the
// invocation channel for requests. Re-registration updates the name and
// channel, reactivates the entry and refreshes its activity timestamp;
// blacklist state and the allow-list survive.
func (uc *RegistryUseCase) Register(ctx context.Context, actor *model.Actor) (*model.ExternalGuild, error) {
	if !uc.canAdminister(actor) {
		return nil, goerr.Wrap(ErrAdminRequired, "cannot register guild",
			goerr.V(GuildIDKey, actor.GuildID), goerr.V("user_id", actor.ID))
	}

	name := actor.GuildID.String()
	if uc.discord != nil {
		resolved, err := uc.discord.GuildName(ctx, actor.GuildID)
		if err != nil {
			errutil.Handle(ctx, err, "failed to resolve guild name, falling back to ID")
		} else if resolved != "" {
			name = resolved
		}
	}

	reg, err := uc.repo.ExternalGuild().Get(ctx, actor.GuildID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to look up registration", goerr.V(GuildIDKey, actor.GuildID))
		}
		reg = &model.ExternalGuild{GuildID: actor.GuildID}
	}

	reg.Name = name
	reg.ChannelID = actor.ChannelID
	reg.Active = true
	reg.LastAccessedAt = time.Now()

	saved, err := uc.repo.ExternalGuild().Put(ctx, reg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save registration", goerr.V(GuildIDKey, actor.GuildID))
	}

	logging.From(ctx).Info("guild registered",
		"guild_id", saved.GuildID,
		"guild_name", saved.Name,
		"channel_id", saved.ChannelID,
	)

	return saved, nil
}

// Status returns the registration and the number of active requests filed
// from the guild
func (uc *RegistryUseCase) Status(ctx context.Context, guildID types.GuildID) (*model.ExternalGuild, int, error) {
	reg, err := uc.repo.ExternalGuild().Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, goerr.Wrap(ErrGuildNotRegistered, "no registration", goerr.V(GuildIDKey, guildID))
		}
		return nil, 0, goerr.Wrap(err, "failed to look up registration", goerr.V(GuildIDKey, guildID))
	}

	count, err := uc.repo.Request().CountActiveByGuild(ctx, guildID)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to count active requests", goerr.V(GuildIDKey, guildID))
	}

	return reg, count, nil
}

// List returns all registrations
func (uc *RegistryUseCase) List(ctx context.Context) ([]*model.ExternalGuild, error) {
	guilds, err := uc.repo.ExternalGuild().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list registrations")
	}
	return guilds, nil
}

// getForUpdate loads the actor's guild registration for an allow-list
// mutation, enforcing the administration permission
func (uc *RegistryUseCase) getForUpdate(ctx context.Context, actor *model.Actor) (*model.ExternalGuild, error) {
	if !uc.canAdminister(actor) {
		return nil, goerr.Wrap(ErrAdminRequired, "cannot modify registration",
			goerr.V(GuildIDKey, actor.GuildID), goerr.V("user_id", actor.ID))
	}

	reg, err := uc.repo.ExternalGuild().Get(ctx, actor.GuildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(ErrGuildNotRegistered, "no registration", goerr.V(GuildIDKey, actor.GuildID))
		}
		return nil, goerr.Wrap(err, "failed to look up registration", goerr.V(GuildIDKey, actor.GuildID))
	}
	return reg, nil
}

// SetAllowedRoles replaces the guild's allow-list. Duplicates are removed,
// first occurrence wins.
func (uc *RegistryUseCase) SetAllowedRoles(ctx context.Context, actor *model.Actor, roleIDs []types.RoleID) (*model.ExternalGuild, error) {
	reg, err := uc.getForUpdate(ctx, actor)
	if err != nil {
		return nil, err
	}

	seen := make(map[types.RoleID]struct{}, len(roleIDs))
	deduped := make([]types.RoleID, 0, len(roleIDs))
	for _, id := range roleIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}

	reg.AllowedRoleIDs = deduped
	saved, err := uc.repo.ExternalGuild().Put(ctx, reg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save allow-list", goerr.V(GuildIDKey, reg.GuildID))
	}
	return saved, nil
}

// AddAllowedRole appends a role to the allow-list. A role already present is
// a benign no-op reported via added=false.
func (uc *RegistryUseCase) AddAllowedRole(ctx context.Context, actor *model.Actor, roleID types.RoleID) (reg *model.ExternalGuild, added bool, err error) {
	reg, err = uc.getForUpdate(ctx, actor)
	if err != nil {
		return nil, false, err
	}

	if !reg.AddAllowedRole(roleID) {
		return reg, false, nil
	}
	saved, err := uc.repo.ExternalGuild().Put(ctx, reg)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to save allow-list", goerr.V(GuildIDKey, reg.GuildID))
	}
	return saved, true, nil
}

// RemoveAllowedRole removes a role from the allow-list. A role not present
// is a benign no-op reported via removed=false.
func (uc *RegistryUseCase) RemoveAllowedRole(ctx context.Context, actor *model.Actor, roleID types.RoleID) (reg *model.ExternalGuild, removed bool, err error) {
	reg, err = uc.getForUpdate(ctx, actor)
	if err != nil {
		return nil, false, err
	}

	if !reg.RemoveAllowedRole(roleID) {
		return reg, false, nil
	}
	saved, err := uc.repo.ExternalGuild().Put(ctx, reg)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to save allow-list", goerr.V(GuildIDKey, reg.GuildID))
	}
	return saved, true, nil
}

// ClearAllowedRoles empties the allow-list, lifting the restriction
func (uc *RegistryUseCase) ClearAllowedRoles(ctx context.Context, actor *model.Actor) (*model.ExternalGuild, error) {
	reg, err := uc.getForUpdate(ctx, actor)
	if err != nil {
		return nil, err
	}

	reg.AllowedRoleIDs = nil
	saved, err := uc.repo.ExternalGuild().Put(ctx, reg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save allow-list", goerr.V(GuildIDKey, reg.GuildID))
	}
	return saved, nil
}

// SetBlacklist marks the guild as blacklisted. A guild that never registered
// gets a blacklist-only entry so the block applies before first contact.
// Requires blacklist permission in the actor's (home) guild.
func (uc *RegistryUseCase) SetBlacklist(ctx context.Context, actor *model.Actor, guildID types.GuildID, reason string) (*model.ExternalGuild, error) {
	if !uc.config.CanBlacklist(ctx, actor) {
		return nil, goerr.Wrap(ErrBlacklistNotPermitted, "cannot blacklist guild",
			goerr.V(GuildIDKey, guildID), goerr.V("user_id", actor.ID))
	}

	reg, err := uc.repo.ExternalGuild().Get(ctx, guildID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(err, "failed to look up registration", goerr.V(GuildIDKey, guildID))
		}
		reg = &model.ExternalGuild{GuildID: guildID, Name: guildID.String()}
	}

	reg.Blacklisted = true
	reg.BlacklistReason = reason

	saved, err := uc.repo.ExternalGuild().Put(ctx, reg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save blacklist state", goerr.V(GuildIDKey, guildID))
	}

	logging.From(ctx).Info("guild blacklisted",
		"guild_id", guildID,
		"reason", reason,
		"by", actor.ID,
	)

	return saved, nil
}

// ClearBlacklist lifts the guild's blacklist. Requires blacklist permission
// in the actor's (home) guild.
func (uc *RegistryUseCase) ClearBlacklist(ctx context.Context, actor *model.Actor, guildID types.GuildID) (*model.ExternalGuild, error) {
	if !uc.config.CanBlacklist(ctx, actor) {
		return nil, goerr.Wrap(ErrBlacklistNotPermitted, "cannot clear blacklist",
			goerr.V(GuildIDKey, guildID), goerr.V("user_id", actor.ID))
	}

	reg, err := uc.repo.ExternalGuild().Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, goerr.Wrap(ErrGuildNotRegistered, "no registration", goerr.V(GuildIDKey, guildID))
		}
		return nil, goerr.Wrap(err, "failed to look up registration", goerr.V(GuildIDKey, guildID))
	}

	reg.Blacklisted = false
	reg.BlacklistReason = ""

	saved, err := uc.repo.ExternalGuild().Put(ctx, reg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save blacklist state", goerr.V(GuildIDKey, guildID))
	}

	logging.From(ctx).Info("guild blacklist cleared",
		"guild_id", guildID,
		"by", actor.ID,
	)

	return saved, nil
}

// SweepInactive demotes active registrations whose last activity is older
// than the threshold. Only the sweep may demote on elapsed time.
func (uc *RegistryUseCase) SweepInactive(ctx context.Context, threshold time.Duration) (*model.SweepResult, error) {
	deadline := time.Now().Add(-threshold)

	result, err := uc.repo.ExternalGuild().SweepInactive(ctx, deadline)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sweep inactive guilds", goerr.V("deadline", deadline))
	}

	logging.From(ctx).Info("inactive guild sweep finished",
		"demoted", len(result.Demoted),
		"active", result.Active,
		"inactive", result.Inactive,
	)

	return result, nil
}
