package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/domain/types"
)

const (
	// DefaultCacheTTL is the default TTL for guild metadata cache
	DefaultCacheTTL = 5 * time.Minute
)

// cacheEntry holds cached guild metadata with expiration
type cacheEntry struct {
	name      string
	ownerID   types.UserID
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	session  *discordgo.Session
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[types.GuildID]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for guild metadata cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// New creates a new Discord service on top of an existing session. The
// session's gateway lifecycle is managed by the caller.
func New(session *discordgo.Session, opts ...Option) (Service, error) {
	if session == nil {
		return nil, goerr.New("Discord session is required")
	}

	c := &client{
		session:  session,
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[types.GuildID]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// PostMessage posts an embed message to a channel
func (c *client) PostMessage(ctx context.Context, channelID types.ChannelID, msg *Message) (types.MessageID, error) {
	if msg == nil {
		return "", goerr.New("message is nil", goerr.V("channel_id", channelID))
	}

	sent, err := c.session.ChannelMessageSendComplex(channelID.String(), &discordgo.MessageSend{
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: msg.Components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", goerr.Wrap(err, "failed to post Discord message", goerr.V("channel_id", channelID))
	}

	return types.MessageID(sent.ID), nil
}

// UpdateMessage rewrites an existing message in place
func (c *client) UpdateMessage(ctx context.Context, channelID types.ChannelID, messageID types.MessageID, msg *Message) error {
	if msg == nil {
		return goerr.New("message is nil", goerr.V("channel_id", channelID), goerr.V("message_id", messageID))
	}

	edit := discordgo.NewMessageEdit(channelID.String(), messageID.String())
	edit.Content = &msg.Content
	edit.Embeds = &msg.Embeds
	edit.Components = &msg.Components

	if _, err := c.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return goerr.Wrap(err, "failed to update Discord message",
			goerr.V("channel_id", channelID), goerr.V("message_id", messageID))
	}

	return nil
}

// GuildName resolves the guild's display name with caching
func (c *client) GuildName(ctx context.Context, guildID types.GuildID) (string, error) {
	entry, err := c.guildEntry(ctx, guildID)
	if err != nil {
		return "", err
	}
	return entry.name, nil
}

// GuildOwnerID resolves the user that owns the guild with caching
func (c *client) GuildOwnerID(ctx context.Context, guildID types.GuildID) (types.UserID, error) {
	entry, err := c.guildEntry(ctx, guildID)
	if err != nil {
		return "", err
	}
	return entry.ownerID, nil
}

func (c *client) guildEntry(ctx context.Context, guildID types.GuildID) (cacheEntry, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[guildID]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check cache after acquiring write lock
	if entry, ok := c.cache[guildID]; ok && entry.expiresAt.After(now) {
		return entry, nil
	}

	guild, err := c.session.Guild(guildID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return cacheEntry{}, goerr.Wrap(err, "failed to get guild", goerr.V("guild_id", guildID))
	}

	entry = cacheEntry{
		name:      guild.Name,
		ownerID:   types.UserID(guild.OwnerID),
		expiresAt: now.Add(c.cacheTTL),
	}
	c.cache[guildID] = entry

	return entry, nil
}
