// cmd/idea-lab/worker.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"idea-lab/internal/canvas"
	"idea-lab/internal/common/camunda"
	"idea-lab/internal/common/config"
	"idea-lab/internal/funding"
	"idea-lab/internal/roadmap"
	"idea-lab/internal/workers/generation"
)

func newWorkerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the Zeebe job workers for every generation task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := config.ValidateWorkers(cfg); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWorkers(ctx, cfg)
		},
	}
}

func runWorkers(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	zc, err := camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		return err
	}
	a.onClose(zc.Close)
	a.log.Info("Zeebe client connected successfully", map[string]interface{}{
		"gateway": cfg.Camunda.BrokerAddress,
	})

	store, err := a.store(ctx)
	if err != nil {
		return err
	}
	publisher, err := a.fundingPublisher(ctx)
	if err != nil {
		return err
	}

	deps := generation.Deps{
		Content:  a.ideas,
		Canvas:   canvas.NewService(a.ideas, store, a.log),
		Funding:  funding.NewPlanner(a.ideas, store, publisher, a.log),
		Roadmaps: roadmap.NewTracker(store, a.log),
	}
	if index := a.ideaIndex(ctx); index != nil {
		deps.Index = index
	}

	var workers []*camunda.Worker
	for _, taskType := range generation.TaskTypes {
		key := generation.ConfigKey(taskType)
		if !config.IsWorkerEnabled(cfg, key) {
			a.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		wc := config.GetWorkerConfig(cfg, key)
		handler, err := generation.NewHandler(taskType, generation.ConfigFor(cfg, taskType), deps, a.log)
		if err != nil {
			return err
		}
		workers = append(workers, camunda.NewWorker(zc.Zeebe(), taskType, handler, camunda.WorkerOptions{
			Name:          cfg.App.Name,
			MaxJobsActive: wc.MaxJobsActive,
			// activation lock must outlive the handler timeout
			Timeout: config.GetDuration(wc.Timeout) + config.GetDuration(cfg.Camunda.Timeout),
		}, a.log))
	}
	a.log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	err = serve(ctx, metricsServer(cfg.Server.MetricsAddress, zc.HealthCheck), a.log)

	a.log.Info("shutdown signal received, stopping workers", nil)
	for _, w := range workers {
		w.Stop()
	}
	return err
}
