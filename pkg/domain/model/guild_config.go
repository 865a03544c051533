package model

import (
	"time"

	"github.com/secmon-lab/argos/pkg/domain/types"
)

// GuildConfig represents per-guild settings for a hosting guild.
// All role and channel references are optional and stay empty until an
// administrator configures them; request handling treats absence as a hard
// precondition failure, not as a default.
type GuildConfig struct {
	GuildID         types.GuildID
	ManagerRoleID   types.RoleID
	CustomerRoleID  types.RoleID
	SecurityRoleID  types.RoleID
	AlertChannelID  types.ChannelID
	BlacklistRoleID types.RoleID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GuildConfigPatch carries a partial update for GuildConfig. Only non-nil
// fields are applied; an omitted field never clears the stored value.
type GuildConfigPatch struct {
	ManagerRoleID   *types.RoleID
	CustomerRoleID  *types.RoleID
	SecurityRoleID  *types.RoleID
	AlertChannelID  *types.ChannelID
	BlacklistRoleID *types.RoleID
}

// IsEmpty reports whether the patch carries no fields
func (p *GuildConfigPatch) IsEmpty() bool {
	return p.ManagerRoleID == nil &&
		p.CustomerRoleID == nil &&
		p.SecurityRoleID == nil &&
		p.AlertChannelID == nil &&
		p.BlacklistRoleID == nil
}

// Apply merges the patch over the config in place
func (p *GuildConfigPatch) Apply(cfg *GuildConfig) {
	if p.ManagerRoleID != nil {
		cfg.ManagerRoleID = *p.ManagerRoleID
	}
	if p.CustomerRoleID != nil {
		cfg.CustomerRoleID = *p.CustomerRoleID
	}
	if p.SecurityRoleID != nil {
		cfg.SecurityRoleID = *p.SecurityRoleID
	}
	if p.AlertChannelID != nil {
		cfg.AlertChannelID = *p.AlertChannelID
	}
	if p.BlacklistRoleID != nil {
		cfg.BlacklistRoleID = *p.BlacklistRoleID
	}
}

// AlertReady reports whether the guild can receive request alerts: both the
// alert channel and the security role must be configured.
func (c *GuildConfig) AlertReady() bool {
	return c.AlertChannelID != "" && c.SecurityRoleID != ""
}
