package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/secmon-lab/argos/pkg/domain/types"
)

// Service provides the subset of the Discord API the application posts
// through. Interaction handling stays in the controller; this interface
// covers outbound rendering and guild metadata lookups.
type Service interface {
	// PostMessage posts an embed message to a channel and returns the
	// created message ID.
	PostMessage(ctx context.Context, channelID types.ChannelID, msg *Message) (types.MessageID, error)

	// UpdateMessage rewrites an existing message in place, replacing its
	// content, embeds and components.
	UpdateMessage(ctx context.Context, channelID types.ChannelID, messageID types.MessageID, msg *Message) error

	// GuildName resolves the guild's display name (with caching)
	GuildName(ctx context.Context, guildID types.GuildID) (string, error)

	// GuildOwnerID resolves the user that owns the guild (with caching)
	GuildOwnerID(ctx context.Context, guildID types.GuildID) (types.UserID, error)
}

// Message is an outbound message payload. Content is used as the plain-text
// fallback for notifications when embeds are present.
type Message struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}
