package model

import (
	"slices"
	"time"

	"github.com/secmon-lab/argos/pkg/domain/types"
)

// ExternalGuild represents a registered customer guild whose members may
// file security requests routed to the home guild. Exactly one registration
// exists per guild.
type ExternalGuild struct {
	GuildID         types.GuildID
	Name            string
	ChannelID       types.ChannelID
	Active          bool
	Blacklisted     bool
	BlacklistReason string
	LastAccessedAt  time.Time
	AllowedRoleIDs  []types.RoleID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasAllowedRole reports whether any of the given roles is on the
// allow-list. An empty allow-list means unrestricted, which this method
// does NOT cover; callers check len(AllowedRoleIDs) first.
func (g *ExternalGuild) HasAllowedRole(roleIDs []types.RoleID) bool {
	for _, id := range roleIDs {
		if slices.Contains(g.AllowedRoleIDs, id) {
			return true
		}
	}
	return false
}

// AddAllowedRole appends the role to the allow-list, preserving insertion
// order. Returns false when the role is already present.
func (g *ExternalGuild) AddAllowedRole(roleID types.RoleID) bool {
	if slices.Contains(g.AllowedRoleIDs, roleID) {
		return false
	}
	g.AllowedRoleIDs = append(g.AllowedRoleIDs, roleID)
	return true
}

// RemoveAllowedRole removes the role from the allow-list. Returns false
// when the role is absent.
func (g *ExternalGuild) RemoveAllowedRole(roleID types.RoleID) bool {
	idx := slices.Index(g.AllowedRoleIDs, roleID)
	if idx < 0 {
		return false
	}
	g.AllowedRoleIDs = slices.Delete(g.AllowedRoleIDs, idx, idx+1)
	return true
}

// SweepResult summarizes one inactivity sweep pass over the registry
type SweepResult struct {
	Demoted  []types.GuildID
	Active   int
	Inactive int
}
