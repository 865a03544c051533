package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// Discord snowflake: 64-bit decimal, 17-20 digits for any realistic epoch
var snowflakePattern = regexp.MustCompile(`^[0-9]{17,20}$`)

// GuildID represents a Discord guild (server) identifier
type GuildID string

// Validate checks if the GuildID is a well-formed snowflake
func (g GuildID) Validate() error {
	if g == "" {
		return goerr.New("guild ID cannot be empty")
	}
	if !snowflakePattern.MatchString(string(g)) {
		return goerr.New("guild ID must be a numeric snowflake", goerr.V("id", g))
	}
	return nil
}

// String returns the string representation of GuildID
func (g GuildID) String() string {
	return string(g)
}

// ChannelID represents a Discord channel identifier
type ChannelID string

// Validate checks if the ChannelID is a well-formed snowflake
func (c ChannelID) Validate() error {
	if c == "" {
		return goerr.New("channel ID cannot be empty")
	}
	if !snowflakePattern.MatchString(string(c)) {
		return goerr.New("channel ID must be a numeric snowflake", goerr.V("id", c))
	}
	return nil
}

// String returns the string representation of ChannelID
func (c ChannelID) String() string {
	return string(c)
}

// UserID represents a Discord user identifier
type UserID string

// Validate checks if the UserID is a well-formed snowflake
func (u UserID) Validate() error {
	if u == "" {
		return goerr.New("user ID cannot be empty")
	}
	if !snowflakePattern.MatchString(string(u)) {
		return goerr.New("user ID must be a numeric snowflake", goerr.V("id", u))
	}
	return nil
}

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}

// RoleID represents a Discord role identifier
type RoleID string

// Validate checks if the RoleID is a well-formed snowflake
func (r RoleID) Validate() error {
	if r == "" {
		return goerr.New("role ID cannot be empty")
	}
	if !snowflakePattern.MatchString(string(r)) {
		return goerr.New("role ID must be a numeric snowflake", goerr.V("id", r))
	}
	return nil
}

// String returns the string representation of RoleID
func (r RoleID) String() string {
	return string(r)
}

// MessageID represents a Discord message identifier
type MessageID string

// String returns the string representation of MessageID
func (m MessageID) String() string {
	return string(m)
}
