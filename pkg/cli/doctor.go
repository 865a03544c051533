package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argos/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdDoctor() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var discordCfg config.Discord
	var githubCfg config.GitHub
	var sentryCfg config.Sentry

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, discordCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the profile and environment for a runnable setup",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			pass := color.New(color.FgGreen).SprintFunc()
			fail := color.New(color.FgRed).SprintFunc()
			warn := color.New(color.FgYellow).SprintFunc()

			failures := 0
			report := func(ok bool, name, detail string) {
				if ok {
					fmt.Printf("[%s] %-14s %s\n", pass("PASS"), name, detail)
				} else {
					failures++
					fmt.Printf("[%s] %-14s %s\n", fail("FAIL"), name, detail)
				}
			}
			skip := func(name, detail string) {
				fmt.Printf("[%s] %-14s %s\n", warn("SKIP"), name, detail)
			}

			if appCfg.Path() == "" {
				report(false, "profile", "--config is not set")
			} else if profile, err := appCfg.Configure(); err != nil {
				report(false, "profile", err.Error())
			} else {
				report(true, "profile", fmt.Sprintf("home guild %s, %d operator(s)",
					profile.HomeGuild(), len(profile.Operators())))
				if profile.UpdateWatch.Enabled() {
					report(true, "update watch", fmt.Sprintf("%s/%s every %s",
						profile.UpdateWatch.Owner, profile.UpdateWatch.Repo,
						profile.UpdateWatch.IntervalDuration()))
				} else {
					skip("update watch", "no release repository configured")
				}
			}

			if discordCfg.IsConfigured() {
				report(true, "discord", "bot token set")
			} else {
				report(false, "discord", "discord-token is not set")
			}

			switch repoCfg.Backend() {
			case "firestore":
				if repoCfg.ProjectID() == "" {
					report(false, "repository", "firestore backend needs firestore-project-id")
				} else {
					report(true, "repository", fmt.Sprintf("firestore project %s", repoCfg.ProjectID()))
				}
			case "memory":
				report(true, "repository", "in-memory (development only)")
			default:
				report(false, "repository", fmt.Sprintf("unknown backend %q", repoCfg.Backend()))
			}

			if githubCfg.IsConfigured() {
				report(true, "github", "credentials set")
			} else {
				skip("github", "no credentials, release checks disabled")
			}

			if sentryCfg.IsConfigured() {
				report(true, "sentry", "DSN set")
			} else {
				skip("sentry", "no DSN, error reporting disabled")
			}

			if failures > 0 {
				return goerr.New("doctor found problems", goerr.V("failures", failures))
			}

			fmt.Printf("\n%s\n", pass("All checks passed"))
			return nil
		},
	}
}
