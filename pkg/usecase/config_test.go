package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
	"github.com/secmon-lab/argos/pkg/repository/memory"
	"github.com/secmon-lab/argos/pkg/usecase"
)

func homeAdmin() *model.Actor {
	return &model.Actor{
		ID:      types.UserID("300000000000000030"),
		Name:    "admin",
		GuildID: homeGuildID,
		Admin:   true,
	}
}

func TestConfigUseCase_Upsert(t *testing.T) {
	ctx := context.Background()

	newUC := func(t *testing.T) *usecase.UseCases {
		t.Helper()
		return usecase.New(memory.New(),
			usecase.WithHomeGuild(homeGuildID),
			usecase.WithOperators(operatorID),
		)
	}

	t.Run("admin creates initial config", func(t *testing.T) {
		uc := newUC(t)

		cfg, err := uc.Config.Upsert(ctx, homeAdmin(), &model.GuildConfigPatch{
			SecurityRoleID: rolePtr(securityRoleID),
			AlertChannelID: channelPtr(alertChannelID),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.SecurityRoleID).Equal(securityRoleID)
		gt.Value(t, cfg.AlertChannelID).Equal(alertChannelID)
		gt.Value(t, cfg.CustomerRoleID).Equal(types.RoleID(""))
	})

	t.Run("merge keeps omitted fields", func(t *testing.T) {
		uc := newUC(t)

		_, err := uc.Config.Upsert(ctx, homeAdmin(), &model.GuildConfigPatch{
			SecurityRoleID: rolePtr(securityRoleID),
		})
		gt.NoError(t, err).Required()

		cfg, err := uc.Config.Upsert(ctx, homeAdmin(), &model.GuildConfigPatch{
			AlertChannelID: channelPtr(alertChannelID),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.SecurityRoleID).Equal(securityRoleID)
		gt.Value(t, cfg.AlertChannelID).Equal(alertChannelID)
	})

	t.Run("rejects empty patch", func(t *testing.T) {
		uc := newUC(t)

		_, err := uc.Config.Upsert(ctx, homeAdmin(), &model.GuildConfigPatch{})
		gt.Error(t, err)
		_, err = uc.Config.Upsert(ctx, homeAdmin(), nil)
		gt.Error(t, err)
	})

	t.Run("rejects plain member", func(t *testing.T) {
		uc := newUC(t)

		actor := &model.Actor{ID: strangerID, Name: "eve", GuildID: homeGuildID}
		_, err := uc.Config.Upsert(ctx, actor, &model.GuildConfigPatch{
			SecurityRoleID: rolePtr(securityRoleID),
		})
		gt.Error(t, err).Is(usecase.ErrManagerRequired)
	})

	t.Run("manager role holder may update", func(t *testing.T) {
		uc := newUC(t)

		_, err := uc.Config.Upsert(ctx, homeAdmin(), &model.GuildConfigPatch{
			ManagerRoleID: rolePtr(managerRoleID),
		})
		gt.NoError(t, err).Required()

		manager := &model.Actor{
			ID:      types.UserID("300000000000000031"),
			Name:    "mgr",
			GuildID: homeGuildID,
			RoleIDs: []types.RoleID{managerRoleID},
		}
		cfg, err := uc.Config.Upsert(ctx, manager, &model.GuildConfigPatch{
			CustomerRoleID: rolePtr(customerRoleID),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.CustomerRoleID).Equal(customerRoleID)
	})

	t.Run("operator may update without roles", func(t *testing.T) {
		uc := newUC(t)

		op := &model.Actor{ID: operatorID, Name: "op", GuildID: homeGuildID}
		_, err := uc.Config.Upsert(ctx, op, &model.GuildConfigPatch{
			SecurityRoleID: rolePtr(securityRoleID),
		})
		gt.NoError(t, err).Required()
	})
}

func TestConfigUseCase_Get(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New(), usecase.WithHomeGuild(homeGuildID))

	_, err := uc.Config.Get(ctx, homeGuildID)
	gt.Error(t, err).Is(repository.ErrNotFound)

	_, err = uc.Config.Upsert(ctx, homeAdmin(), &model.GuildConfigPatch{
		SecurityRoleID: rolePtr(securityRoleID),
	})
	gt.NoError(t, err).Required()

	cfg, err := uc.Config.Get(ctx, homeGuildID)
	gt.NoError(t, err).Required()
	gt.Value(t, cfg.SecurityRoleID).Equal(securityRoleID)
}

func TestConfigUseCase_IsManager(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New(),
		usecase.WithHomeGuild(homeGuildID),
		usecase.WithOperators(operatorID),
	)

	// Admin and operator qualify even with no config stored
	gt.Bool(t, uc.Config.IsManager(ctx, homeAdmin())).True()
	op := &model.Actor{ID: operatorID, GuildID: homeGuildID}
	gt.Bool(t, uc.Config.IsManager(ctx, op)).True()

	plain := &model.Actor{ID: strangerID, GuildID: homeGuildID}
	gt.Bool(t, uc.Config.IsManager(ctx, plain)).False()

	_, err := uc.Config.Upsert(ctx, homeAdmin(), &model.GuildConfigPatch{
		ManagerRoleID: rolePtr(managerRoleID),
	})
	gt.NoError(t, err).Required()

	holder := &model.Actor{
		ID:      types.UserID("300000000000000032"),
		GuildID: homeGuildID,
		RoleIDs: []types.RoleID{managerRoleID},
	}
	gt.Bool(t, uc.Config.IsManager(ctx, holder)).True()
}
