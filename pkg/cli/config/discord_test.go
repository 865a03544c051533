package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argos/pkg/cli/config"
)

func TestDiscordIsConfigured(t *testing.T) {
	tests := []struct {
		name           string
		token          string
		wantConfigured bool
	}{
		{"token set", "bot-token", true},
		{"token empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discord := config.NewDiscordForTest(tt.token)
			gt.Value(t, discord.IsConfigured()).Equal(tt.wantConfigured)
		})
	}
}

func TestDiscordConfigure(t *testing.T) {
	t.Run("fails without token", func(t *testing.T) {
		discord := config.NewDiscordForTest("")
		_, err := discord.Configure()
		gt.Value(t, err).NotNil()
	})

	t.Run("creates an unconnected session", func(t *testing.T) {
		discord := config.NewDiscordForTest("test-token")
		session, err := discord.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, session).NotNil()
	})
}
