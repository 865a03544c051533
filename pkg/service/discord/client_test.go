package discord_test

import (
	"context"
	"os"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/secmon-lab/argos/pkg/service/discord"
)

func TestNew(t *testing.T) {
	t.Run("returns error when session is nil", func(t *testing.T) {
		_, err := discord.New(nil)
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when session is provided", func(t *testing.T) {
		session, err := discordgo.New("Bot test-token")
		gt.NoError(t, err).Required()

		svc, err := discord.New(session)
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_DISCORD_BOT_TOKEN")
	if token == "" {
		t.Skip("TEST_DISCORD_BOT_TOKEN is not set")
	}
	guildID := os.Getenv("TEST_DISCORD_GUILD_ID")
	if guildID == "" {
		t.Skip("TEST_DISCORD_GUILD_ID is not set")
	}

	ctx := context.Background()

	session, err := discordgo.New("Bot " + token)
	gt.NoError(t, err).Required()

	svc, err := discord.New(session)
	gt.NoError(t, err).Required()

	t.Run("GuildName resolves the guild name", func(t *testing.T) {
		name, err := svc.GuildName(ctx, types.GuildID(guildID))
		gt.NoError(t, err).Required()
		gt.String(t, name).NotEqual("")
		t.Logf("Resolved guild name: %s -> %s", guildID, name)
	})

	t.Run("GuildOwnerID resolves the owner", func(t *testing.T) {
		ownerID, err := svc.GuildOwnerID(ctx, types.GuildID(guildID))
		gt.NoError(t, err).Required()
		gt.String(t, ownerID.String()).NotEqual("")
		t.Logf("Resolved guild owner: %s", ownerID)
	})

	t.Run("Second lookup is served from cache", func(t *testing.T) {
		first, err := svc.GuildName(ctx, types.GuildID(guildID))
		gt.NoError(t, err).Required()

		second, err := svc.GuildName(ctx, types.GuildID(guildID))
		gt.NoError(t, err).Required()
		gt.Value(t, second).Equal(first)
	})
}
