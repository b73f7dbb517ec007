// cmd/idea-lab/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idea-lab/internal/common/aws"
	"idea-lab/internal/common/config"
	"idea-lab/internal/common/database"
	"idea-lab/internal/common/genai"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/common/observability"
	"idea-lab/internal/funding"
	"idea-lab/internal/ideagen"
	"idea-lab/internal/search"
	"idea-lab/internal/storage"
)

// app holds what every subcommand shares: config, logging, telemetry
// and the content generator.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	obs     *observability.Observability
	gen     genai.Generator
	ideas   *ideagen.Service
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format).
		With(map[string]interface{}{"app": cfg.App.Name, "env": cfg.App.Environment})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}

	gen, err := genai.New(ctx, cfg.GenAI)
	if err != nil {
		obs.Shutdown()
		return nil, fmt.Errorf("genai: %w", err)
	}

	a := &app{
		cfg:   cfg,
		log:   log,
		obs:   obs,
		gen:   gen,
		ideas: ideagen.NewService(gen, obs, log),
	}
	a.closers = append(a.closers, gen.Close)
	return a, nil
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", map[string]interface{}{"error": err})
		}
	}
	a.obs.Shutdown()
}

// store opens the record store for roadmap, canvas and funding records.
func (a *app) store(ctx context.Context) (storage.KVStore, error) {
	cc := a.cfg.Cache
	if cc.Backend == "memory" {
		a.log.Info("using in-process record store", map[string]interface{}{"maxEntries": cc.MaxEntries})
		return storage.NewMemoryStore(cc.CacheTTL(), cc.MaxEntries), nil
	}

	var client interface{ Close() error }
	var store storage.KVStore
	err := retryWithBackoff(ctx, func() error {
		rdb, err := database.NewRedis(ctx, a.cfg.Database.Redis)
		if err != nil {
			return err
		}
		client = rdb
		store = storage.NewRedisStore(rdb, cc.CacheTTL(), a.cfg.App.Name+":")
		return nil
	}, 10, 2*time.Second, a.log, "Redis connection")
	if err != nil {
		return nil, err
	}
	a.onClose(client.Close)
	a.log.Info("Redis connected successfully", nil)
	return store, nil
}

func (a *app) postgres(ctx context.Context) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	err := retryWithBackoff(ctx, func() error {
		var err error
		pg, err = database.NewPostgres(ctx, a.cfg.Database.Postgres)
		return err
	}, 15, 2*time.Second, a.log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	a.onClose(pg.Close)

	if err := pg.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a.log.Info("PostgreSQL connected successfully", nil)
	return pg, nil
}

// ideaIndex returns nil when search is not configured or unreachable.
func (a *app) ideaIndex(ctx context.Context) *search.IdeaIndex {
	esCfg := a.cfg.Database.Elasticsearch
	if !esCfg.Enabled() {
		a.log.Info("idea search disabled", nil)
		return nil
	}
	es, err := database.NewElasticsearch(esCfg)
	if err == nil {
		err = database.PingElasticsearch(ctx, es)
	}
	if err != nil {
		a.log.Warn("elasticsearch unavailable, idea search disabled", map[string]interface{}{"error": err})
		return nil
	}

	index := search.NewIdeaIndex(es, esCfg.Index, a.log)
	if err := index.EnsureIndex(ctx); err != nil {
		a.log.Warn("ensure search index failed", map[string]interface{}{"error": err})
	}
	return index
}

// fundingPublisher returns nil when milestone notifications are disabled.
func (a *app) fundingPublisher(ctx context.Context) (funding.Publisher, error) {
	n := a.cfg.Notifications
	if !n.Funding.Enabled {
		return nil, nil
	}
	client, err := aws.NewSNSClient(ctx, n.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("sns: %w", err)
	}
	return funding.NewSNSPublisher(client, n.Funding.TopicARN), nil
}

// metricsServer serves Prometheus metrics and a health check.
func metricsServer(addr string, health func(context.Context) error) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if health != nil {
			if err := health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, `{"status":"unhealthy"}`)
				return
			}
		}
		fmt.Fprintf(w, `{"status":"healthy"}`)
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serve runs srv until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// retryWithBackoff attempts operation with exponential backoff until it
// succeeds, maxRetries is reached or ctx is done.
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}

		log.Warn(operationName+" failed, retrying", map[string]interface{}{
			"error":       err,
			"attempt":     i + 1,
			"maxRetries":  maxRetries,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
