package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/argos/pkg/cli/config"
	discordctrl "github.com/secmon-lab/argos/pkg/controller/discord"
	httpctrl "github.com/secmon-lab/argos/pkg/controller/http"
	discordsvc "github.com/secmon-lab/argos/pkg/service/discord"
	"github.com/secmon-lab/argos/pkg/service/worker"
	"github.com/secmon-lab/argos/pkg/usecase"
	"github.com/secmon-lab/argos/pkg/utils/logging"
	"github.com/secmon-lab/argos/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var appCfg config.App
	var repoCfg config.Repository
	var discordCfg config.Discord
	var githubCfg config.GitHub
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Ops HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ARGOS_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, discordCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the bot gateway, background workers and ops HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			sentryClose, err := sentryCfg.Configure(version)
			if err != nil {
				return goerr.Wrap(err, "failed to configure sentry")
			}
			defer sentryClose()

			// Load and validate the application profile
			profile, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application profile")
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			session, err := discordCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Discord session")
			}

			discordSvc, err := discordsvc.New(session)
			if err != nil {
				return goerr.Wrap(err, "failed to create Discord service")
			}

			uc := usecase.New(repo,
				usecase.WithHomeGuild(profile.HomeGuild()),
				usecase.WithOperators(profile.Operators()...),
				usecase.WithDiscord(discordSvc),
			)

			handler := discordctrl.NewHandler(uc, discordSvc)
			session.AddHandler(handler.HandleInteraction)

			if err := session.Open(); err != nil {
				return goerr.Wrap(err, "failed to open Discord gateway connection")
			}
			defer safe.Close(ctx, session)
			logger.Info("Discord gateway connected", "home_guild", profile.HomeGuild())

			// Start the inactive guild sweeper
			sweeper := worker.NewSweepWorker(uc.Registry,
				profile.Sweep.InitialDelayDuration(),
				profile.Sweep.IntervalDuration(),
				profile.Sweep.ThresholdDuration(),
			)
			if err := sweeper.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start sweep worker")
			}

			// Start the release watcher if GitHub access is configured
			githubSvc, err := githubCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure GitHub client")
			}

			var releaseWatcher *worker.ReleaseWatchWorker
			if githubSvc != nil && profile.UpdateWatch.Enabled() {
				releaseWatcher = worker.NewReleaseWatchWorker(repo, discordSvc, githubSvc,
					profile.HomeGuild(),
					profile.UpdateWatch.Owner, profile.UpdateWatch.Repo,
					version,
					profile.UpdateWatch.IntervalDuration(),
				)
				if err := releaseWatcher.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start release watch worker")
				}
				logger.Info("Release watch enabled",
					"owner", profile.UpdateWatch.Owner,
					"repo", profile.UpdateWatch.Repo)
			} else {
				logger.Info("Release watch disabled, requires GitHub credentials and update_watch profile")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Run until a shutdown signal or a server failure
			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(sigCtx)
			g.Go(func() error {
				logger.Info("Starting ops HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("Shutting down")

				if releaseWatcher != nil {
					releaseWatcher.Stop()
				}
				sweeper.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}

			logger.Info("Server shutdown completed")
			return nil
		},
	}
}
