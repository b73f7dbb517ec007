// cmd/idea-lab/serve.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"idea-lab/internal/api"
	"idea-lab/internal/canvas"
	"idea-lab/internal/common/aws"
	"idea-lab/internal/common/config"
	"idea-lab/internal/funding"
	"idea-lab/internal/notify"
	"idea-lab/internal/repository"
	"idea-lab/internal/roadmap"
	"idea-lab/internal/session"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the metrics endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.store(ctx)
	if err != nil {
		return err
	}
	pg, err := a.postgres(ctx)
	if err != nil {
		return err
	}
	publisher, err := a.fundingPublisher(ctx)
	if err != nil {
		return err
	}

	tracker := roadmap.NewTracker(store, a.log)
	deps := api.Deps{
		Ideas:           a.ideas,
		Store:           repository.NewIdeaRepository(pg.DB),
		Profiles:        repository.NewProfileRepository(pg.DB),
		Sessions:        session.NewManager(a.ideas, tracker, a.log, cfg.App.DefaultLanguage, cfg.Server.MaxSessions),
		Canvas:          canvas.NewService(a.ideas, store, a.log),
		Funding:         funding.NewPlanner(a.ideas, store, publisher, a.log),
		DefaultLanguage: cfg.App.DefaultLanguage,
	}
	if index := a.ideaIndex(ctx); index != nil {
		deps.Search = index
	}
	if email := cfg.Notifications.Email; email.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return err
		}
		deps.Mailer = notify.NewMailer(client, email.FromEmail, true, a.log)
	}

	apiServer := api.NewHTTPServer(
		cfg.Server.Address,
		api.NewServer(deps, a.log),
		config.GetDuration(cfg.Server.ReadTimeout),
		config.GetDuration(cfg.Server.WriteTimeout),
	)
	metrics := metricsServer(cfg.Server.MetricsAddress, pg.Ping)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(gctx, apiServer, a.log) })
	g.Go(func() error { return serve(gctx, metrics, a.log) })

	err = g.Wait()
	a.log.Info("server stopped", nil)
	return err
}
