package config

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Discord holds CLI flags for the Discord bot session
type Discord struct {
	token string
}

// Flags returns CLI flags for Discord configuration
func (d *Discord) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "discord-token",
			Usage:       "Discord bot token",
			Category:    "Discord",
			Sources:     cli.EnvVars("ARGOS_DISCORD_TOKEN"),
			Destination: &d.token,
		},
	}
}

// IsConfigured checks if the bot token is set
func (d *Discord) IsConfigured() bool {
	return d.token != ""
}

func (d Discord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("token.len", len(d.token)),
	)
}

// Configure creates a Discord session from the bot token. The session is not
// connected yet; the caller opens and closes it.
func (d *Discord) Configure() (*discordgo.Session, error) {
	if d.token == "" {
		return nil, goerr.New("discord-token is required")
	}

	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Discord session")
	}

	// Interactions arrive regardless of intents; Guilds keeps the session
	// aware of membership changes.
	session.Identify.Intents = discordgo.IntentsGuilds

	return session, nil
}
