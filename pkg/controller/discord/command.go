package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/secmon-lab/argos/pkg/domain/model"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/repository"
)

// subcommand returns the invoked subcommand name and its options
func subcommand(data discordgo.ApplicationCommandInteractionData) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(data.Options) == 0 {
		return "", nil
	}
	sub := data.Options[0]
	return sub.Name, sub.Options
}

func optionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt.Name == name {
			return strings.TrimSpace(opt.StringValue())
		}
	}
	return ""
}

func optionRoleID(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) types.RoleID {
	for _, opt := range opts {
		if opt.Name == name {
			return types.RoleID(opt.RoleValue(nil, "").ID)
		}
	}
	return ""
}

func optionChannelID(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) types.ChannelID {
	for _, opt := range opts {
		if opt.Name == name {
			return types.ChannelID(opt.ChannelValue(nil).ID)
		}
	}
	return ""
}

// commandRequest opens the filing form. The home guild files internal
// requests, every other guild files external ones.
func (h *Handler) commandRequest(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor) {
	if actor.GuildID == h.uc.HomeGuildID() {
		h.showModal(ctx, s, i, internalRequestModal())
		return
	}
	h.showModal(ctx, s, i, externalRequestModal())
}

func (h *Handler) commandConfig(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor, data discordgo.ApplicationCommandInteractionData) {
	if actor.GuildID != h.uc.HomeGuildID() {
		h.replyEphemeral(ctx, s, i, "This command only works in the home server.")
		return
	}

	sub, opts := subcommand(data)
	switch sub {
	case "set":
		h.configSet(ctx, s, i, actor, opts)
	case "show":
		h.configShow(ctx, s, i, actor)
	default:
		h.replyEphemeral(ctx, s, i, "Unknown subcommand.")
	}
}

func (h *Handler) configSet(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	patch := &model.GuildConfigPatch{}
	if id := optionRoleID(opts, "manager-role"); id != "" {
		patch.ManagerRoleID = &id
	}
	if id := optionRoleID(opts, "customer-role"); id != "" {
		patch.CustomerRoleID = &id
	}
	if id := optionRoleID(opts, "security-role"); id != "" {
		patch.SecurityRoleID = &id
	}
	if id := optionChannelID(opts, "alert-channel"); id != "" {
		patch.AlertChannelID = &id
	}
	if id := optionRoleID(opts, "blacklist-role"); id != "" {
		patch.BlacklistRoleID = &id
	}

	if patch.IsEmpty() {
		h.replyEphemeral(ctx, s, i, "Nothing to change: pass at least one option.")
		return
	}

	cfg, err := h.uc.Config.Upsert(ctx, actor, patch)
	if err != nil {
		h.replyRejection(ctx, s, i, err)
		return
	}

	h.replyEphemeral(ctx, s, i, "Configuration updated.\n"+formatConfig(cfg))
}

func (h *Handler) configShow(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor) {
	cfg, err := h.uc.Config.Get(ctx, actor.GuildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.replyEphemeral(ctx, s, i, "Nothing is configured yet. Use `/config set` to get started.")
			return
		}
		h.replyRejection(ctx, s, i, err)
		return
	}

	h.replyEphemeral(ctx, s, i, formatConfig(cfg))
}

func (h *Handler) commandSetup(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor, data discordgo.ApplicationCommandInteractionData) {
	if actor.GuildID == h.uc.HomeGuildID() {
		h.replyEphemeral(ctx, s, i, "This command is for customer servers; it does not work in the home server.")
		return
	}

	sub, opts := subcommand(data)
	switch sub {
	case "channel":
		reg, err := h.uc.Registry.Register(ctx, actor)
		if err != nil {
			h.replyRejection(ctx, s, i, err)
			return
		}
		h.replyEphemeral(ctx, s, i, fmt.Sprintf("Registered **%s**. Requests are filed in <#%s>.", reg.Name, reg.ChannelID))

	case "allow-role":
		roleID := optionRoleID(opts, "role")
		if roleID == "" {
			h.replyEphemeral(ctx, s, i, "A role is required.")
			return
		}
		_, added, err := h.uc.Registry.AddAllowedRole(ctx, actor, roleID)
		if err != nil {
			h.replyRejection(ctx, s, i, err)
			return
		}
		if !added {
			h.replyEphemeral(ctx, s, i, "That role is already on the allow list.")
			return
		}
		h.replyEphemeral(ctx, s, i, fmt.Sprintf("Members with <@&%s> can now file requests.", roleID))

	case "remove-role":
		roleID := optionRoleID(opts, "role")
		if roleID == "" {
			h.replyEphemeral(ctx, s, i, "A role is required.")
			return
		}
		_, removed, err := h.uc.Registry.RemoveAllowedRole(ctx, actor, roleID)
		if err != nil {
			h.replyRejection(ctx, s, i, err)
			return
		}
		if !removed {
			h.replyEphemeral(ctx, s, i, "That role is not on the allow list.")
			return
		}
		h.replyEphemeral(ctx, s, i, fmt.Sprintf("Removed <@&%s> from the allow list.", roleID))

	case "clear-roles":
		if _, err := h.uc.Registry.ClearAllowedRoles(ctx, actor); err != nil {
			h.replyRejection(ctx, s, i, err)
			return
		}
		h.replyEphemeral(ctx, s, i, "Allow list cleared. Any member can now file requests.")

	case "status":
		reg, active, err := h.uc.Registry.Status(ctx, actor.GuildID)
		if err != nil {
			h.replyRejection(ctx, s, i, err)
			return
		}
		h.replyEphemeral(ctx, s, i, formatStatus(reg, active))

	default:
		h.replyEphemeral(ctx, s, i, "Unknown subcommand.")
	}
}

func (h *Handler) commandBlacklist(ctx context.Context, s Session, i *discordgo.InteractionCreate, actor *model.Actor, data discordgo.ApplicationCommandInteractionData) {
	if actor.GuildID != h.uc.HomeGuildID() {
		h.replyEphemeral(ctx, s, i, "This command only works in the home server.")
		return
	}

	sub, opts := subcommand(data)

	guildID := types.GuildID(optionString(opts, "server-id"))
	if err := guildID.Validate(); err != nil {
		h.replyEphemeral(ctx, s, i, "That does not look like a server ID.")
		return
	}

	switch sub {
	case "add":
		reg, err := h.uc.Registry.SetBlacklist(ctx, actor, guildID, optionString(opts, "reason"))
		if err != nil {
			h.replyRejection(ctx, s, i, err)
			return
		}
		h.replyEphemeral(ctx, s, i, fmt.Sprintf("Blacklisted **%s**. Its requests will be rejected.", reg.Name))

	case "remove":
		reg, err := h.uc.Registry.ClearBlacklist(ctx, actor, guildID)
		if err != nil {
			h.replyRejection(ctx, s, i, err)
			return
		}
		h.replyEphemeral(ctx, s, i, fmt.Sprintf("Removed **%s** from the blacklist.", reg.Name))

	default:
		h.replyEphemeral(ctx, s, i, "Unknown subcommand.")
	}
}

func formatConfig(cfg *model.GuildConfig) string {
	var b strings.Builder
	b.WriteString("Manager role: " + roleMentionOrUnset(cfg.ManagerRoleID) + "\n")
	b.WriteString("Customer role: " + roleMentionOrUnset(cfg.CustomerRoleID) + "\n")
	b.WriteString("Security role: " + roleMentionOrUnset(cfg.SecurityRoleID) + "\n")
	b.WriteString("Alert channel: " + channelMentionOrUnset(cfg.AlertChannelID) + "\n")
	b.WriteString("Blacklist role: " + roleMentionOrUnset(cfg.BlacklistRoleID))
	return b.String()
}

func formatStatus(reg *model.ExternalGuild, activeRequests int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", reg.Name)
	fmt.Fprintf(&b, "Designated channel: <#%s>\n", reg.ChannelID)
	if reg.Active {
		b.WriteString("Status: active\n")
	} else {
		b.WriteString("Status: inactive (re-register with `/setup channel`)\n")
	}
	if reg.Blacklisted {
		b.WriteString("This server is currently blocked from filing requests.\n")
	}
	if len(reg.AllowedRoleIDs) == 0 {
		b.WriteString("Allowed roles: unrestricted\n")
	} else {
		mentions := make([]string, len(reg.AllowedRoleIDs))
		for n, id := range reg.AllowedRoleIDs {
			mentions[n] = "<@&" + id.String() + ">"
		}
		fmt.Fprintf(&b, "Allowed roles: %s\n", strings.Join(mentions, " "))
	}
	fmt.Fprintf(&b, "Active requests: %d", activeRequests)
	return b.String()
}

func roleMentionOrUnset(id types.RoleID) string {
	if id == "" {
		return "not set"
	}
	return "<@&" + id.String() + ">"
}

func channelMentionOrUnset(id types.ChannelID) string {
	if id == "" {
		return "not set"
	}
	return "<#" + id.String() + ">"
}
