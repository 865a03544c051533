package cli

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/cli/config"
	discordctrl "github.com/secmon-lab/argos/pkg/controller/discord"
	"github.com/secmon-lab/argos/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSyncCommands() *cli.Command {
	var discordCfg config.Discord

	return &cli.Command{
		Name:  "sync-commands",
		Usage: "Register the global slash-command set with Discord",
		Flags: discordCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			session, err := discordCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Discord session")
			}

			// REST only, no gateway connection needed. The bot user ID
			// doubles as the application ID.
			me, err := session.User("@me", discordgo.WithContext(ctx))
			if err != nil {
				return goerr.Wrap(err, "failed to look up bot application")
			}

			commands := discordctrl.Commands()
			registered, err := session.ApplicationCommandBulkOverwrite(me.ID, "", commands, discordgo.WithContext(ctx))
			if err != nil {
				return goerr.Wrap(err, "failed to register application commands")
			}

			logger.Info("Registered application commands", "count", len(registered))
			for _, cmd := range registered {
				logger.Info("Command registered", "name", cmd.Name, "id", cmd.ID)
			}

			return nil
		},
	}
}
