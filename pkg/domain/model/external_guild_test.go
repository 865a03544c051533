package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
)

func TestExternalGuild_AddAllowedRole(t *testing.T) {
	g := &model.ExternalGuild{GuildID: "123456789012345678"}

	gt.B(t, g.AddAllowedRole("111111111111111111")).True()
	gt.B(t, g.AddAllowedRole("222222222222222222")).True()
	gt.A(t, g.AllowedRoleIDs).Length(2)

	// adding an existing role is a no-op
	gt.B(t, g.AddAllowedRole("111111111111111111")).False()
	gt.A(t, g.AllowedRoleIDs).Length(2)

	// insertion order is preserved
	gt.V(t, g.AllowedRoleIDs[0]).Equal(types.RoleID("111111111111111111"))
	gt.V(t, g.AllowedRoleIDs[1]).Equal(types.RoleID("222222222222222222"))
}

func TestExternalGuild_RemoveAllowedRole(t *testing.T) {
	g := &model.ExternalGuild{
		GuildID: "123456789012345678",
		AllowedRoleIDs: []types.RoleID{
			"111111111111111111",
			"222222222222222222",
			"333333333333333333",
		},
	}

	gt.B(t, g.RemoveAllowedRole("222222222222222222")).True()
	gt.A(t, g.AllowedRoleIDs).Length(2)
	gt.V(t, g.AllowedRoleIDs[0]).Equal(types.RoleID("111111111111111111"))
	gt.V(t, g.AllowedRoleIDs[1]).Equal(types.RoleID("333333333333333333"))

	// removing an absent role is a no-op
	gt.B(t, g.RemoveAllowedRole("999999999999999999")).False()
	gt.A(t, g.AllowedRoleIDs).Length(2)
}

func TestExternalGuild_HasAllowedRole(t *testing.T) {
	g := &model.ExternalGuild{
		GuildID:        "123456789012345678",
		AllowedRoleIDs: []types.RoleID{"111111111111111111"},
	}

	gt.B(t, g.HasAllowedRole([]types.RoleID{"111111111111111111"})).True()
	gt.B(t, g.HasAllowedRole([]types.RoleID{"222222222222222222", "111111111111111111"})).True()
	gt.B(t, g.HasAllowedRole([]types.RoleID{"222222222222222222"})).False()
	gt.B(t, g.HasAllowedRole(nil)).False()
}
