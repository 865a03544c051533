package model

import (
	"slices"

	"github.com/secmon-lab/argos/pkg/domain/types"
)

// Actor is a fully resolved description of the user behind an inbound
// interaction. The platform adapter resolves it once per event; the core
// layers never fetch member data themselves.
type Actor struct {
	ID        types.UserID
	Name      string
	GuildID   types.GuildID
	ChannelID types.ChannelID
	RoleIDs   []types.RoleID

	// Admin is the platform administrator permission in GuildID,
	// Owner the guild-owner flag. Both are guild-scoped.
	Admin bool
	Owner bool
}

// HasRole reports whether the actor holds the given role
func (a *Actor) HasRole(roleID types.RoleID) bool {
	if roleID == "" {
		return false
	}
	return slices.Contains(a.RoleIDs, roleID)
}

// HasAnyRole reports whether the actor holds at least one of the roles
func (a *Actor) HasAnyRole(roleIDs []types.RoleID) bool {
	for _, id := range roleIDs {
		if a.HasRole(id) {
			return true
		}
	}
	return false
}

// Mention returns the platform mention string for the actor
func (a *Actor) Mention() string {
	return "<@" + a.ID.String() + ">"
}
