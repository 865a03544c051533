package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argos/pkg/cli"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "argos.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	gt.NoError(t, err).Required()
	return path
}

func TestRun_DoctorCommand_HealthySetup(t *testing.T) {
	profilePath := writeProfile(t, `
home_guild_id = "100000000000000001"
operator_user_ids = ["300000000000000001"]

[sweep]
interval = "12h"

[update_watch]
owner = "secmon-lab"
repo = "argos"
`)

	err := cli.Run(context.Background(), []string{
		"argos", "doctor",
		"--config", profilePath,
		"--discord-token", "test-token",
		"--repository-backend", "memory",
	}, "test")
	gt.NoError(t, err)
}

func TestRun_DoctorCommand_MissingDiscordToken(t *testing.T) {
	profilePath := writeProfile(t, `home_guild_id = "100000000000000001"`)

	err := cli.Run(context.Background(), []string{
		"argos", "doctor",
		"--config", profilePath,
		"--repository-backend", "memory",
	}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_DoctorCommand_InvalidProfile(t *testing.T) {
	profilePath := writeProfile(t, `home_guild_id = "not-a-guild"`)

	err := cli.Run(context.Background(), []string{
		"argos", "doctor",
		"--config", profilePath,
		"--discord-token", "test-token",
		"--repository-backend", "memory",
	}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_DoctorCommand_MissingProfile(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"argos", "doctor",
		"--discord-token", "test-token",
		"--repository-backend", "memory",
	}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_DoctorCommand_FirestoreWithoutProject(t *testing.T) {
	profilePath := writeProfile(t, `home_guild_id = "100000000000000001"`)

	// Default backend is firestore, which needs a project ID
	err := cli.Run(context.Background(), []string{
		"argos", "doctor",
		"--config", profilePath,
		"--discord-token", "test-token",
	}, "test")
	gt.Value(t, err).NotNil()
}
