package interfaces

import "github.com/secmon-lab/argos/pkg/domain/types"

// ListRequestOption is a functional option for filtering requests in List
type ListRequestOption func(*listRequestConfig)

type listRequestConfig struct {
	status  *types.RequestStatus
	guildID *types.GuildID
	limit   int
}

// WithStatus filters requests by status
func WithStatus(status types.RequestStatus) ListRequestOption {
	return func(c *listRequestConfig) {
		c.status = &status
	}
}

// WithGuild filters requests by originating external guild
func WithGuild(guildID types.GuildID) ListRequestOption {
	return func(c *listRequestConfig) {
		c.guildID = &guildID
	}
}

// WithLimit caps the number of returned requests
func WithLimit(limit int) ListRequestOption {
	return func(c *listRequestConfig) {
		c.limit = limit
	}
}

// BuildListRequestConfig builds a listRequestConfig from options
func BuildListRequestConfig(opts ...ListRequestOption) *listRequestConfig {
	cfg := &listRequestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listRequestConfig) Status() *types.RequestStatus {
	return c.status
}

// GuildID returns the guild filter value, or nil if not set
func (c *listRequestConfig) GuildID() *types.GuildID {
	return c.guildID
}

// Limit returns the result cap, 0 meaning unlimited
func (c *listRequestConfig) Limit() int {
	return c.limit
}
