/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package app wires the buzzer service together.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/buzzer/pkg/api"
	"github.com/carverauto/buzzer/pkg/auth"
	"github.com/carverauto/buzzer/pkg/config"
	"github.com/carverauto/buzzer/pkg/db"
	"github.com/carverauto/buzzer/pkg/gateway"
	"github.com/carverauto/buzzer/pkg/lifecycle"
	"github.com/carverauto/buzzer/pkg/logger"
	"github.com/carverauto/buzzer/pkg/models"
	"github.com/carverauto/buzzer/pkg/natsutil"
	"github.com/carverauto/buzzer/pkg/presence"
	"github.com/carverauto/buzzer/pkg/push"
	"github.com/carverauto/buzzer/pkg/ring"
	"github.com/carverauto/buzzer/pkg/version"
)

const (
	serviceName     = "buzzer"
	shutdownTimeout = 15 * time.Second
)

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
}

// GenerateVAPIDKeys prints a fresh key pair for the push section of the config.
func GenerateVAPIDKeys() error {
	keys, err := push.GenerateKeyPair()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(keys)
}

// Run boots the service and blocks until SIGINT/SIGTERM or a fatal component error.
func Run(ctx context.Context, opts Options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig(nil).LoadBuzzerConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger("buzzer-main", cfg.Logging)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := logger.ShutdownOTEL(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "error shutting down log exporter: %v\n", err)
		}
	}()

	mainLogger.Info().
		Str("version", version.GetFullVersion()).
		Interface("config", config.Redacted(cfg)).
		Msg("Loaded configuration")

	if _, metricsErr := logger.InitializeMetrics(ctx, logger.MetricsConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		OTel:           cfg.Metrics.OTel,
		ExportInterval: time.Duration(cfg.Metrics.ExportInterval),
	}); metricsErr != nil && !errors.Is(metricsErr, logger.ErrOTelMetricsDisabled) {
		return metricsErr
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := logger.ShutdownMetrics(shutdownCtx); err != nil {
			mainLogger.Error().Err(err).Msg("Error shutting down metrics provider")
		}
	}()

	if _, tracingErr := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		OTel:           cfg.Tracing.OTel,
	}); tracingErr != nil && !errors.Is(tracingErr, logger.ErrOTelTracingDisabled) {
		return tracingErr
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := logger.ShutdownTracing(shutdownCtx); err != nil {
			mainLogger.Error().Err(err).Msg("Error shutting down tracer provider")
		}
	}()

	pool, err := openDatabase(ctx, cfg, mainLogger)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := db.New(pool, mainLogger.Component("db"))

	// presence is process-local, so flags left by a previous run are stale
	if reset, err := store.ResetOnlineDevices(ctx); err != nil {
		return fmt.Errorf("failed to reset device presence: %w", err)
	} else if reset > 0 {
		mainLogger.Info().Int64("devices", reset).Msg("Cleared stale online flags")
	}

	events, nc, err := connectEvents(ctx, cfg, mainLogger)
	if err != nil {
		return err
	}

	if nc != nil {
		defer func() {
			if err := nc.Drain(); err != nil {
				mainLogger.Warn().Err(err).Msg("Error draining NATS connection")
			}
		}()
	}

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		return err
	}

	registry := presence.NewRegistry(mainLogger.Component("presence"))
	router := presence.NewRouter(registry, mainLogger.Component("router"))
	dispatcher := push.NewDispatcher(cfg.Push, mainLogger.Component("push"))

	coordinatorOpts := []ring.Option{
		ring.WithAutoComplete(cfg.Ring.AutoCompleteEnabled()),
		ring.WithTimeouts(time.Duration(cfg.Ring.PersistTimeout), pushTimeout(cfg.Push), publishTimeout(cfg.NATS)),
	}

	if dispatcher.Configured() {
		coordinatorOpts = append(coordinatorOpts, ring.WithNotifier(dispatcher), ring.WithSubscriptionStore(store))
	} else {
		mainLogger.Warn().Msg("VAPID keys not configured, push notifications disabled")
	}

	if events != nil {
		coordinatorOpts = append(coordinatorOpts, ring.WithEventPublisher(events))
	}

	coordinator := ring.NewCoordinator(store.RingSessions(), router, mainLogger.Component("ring"), coordinatorOpts...)

	gatewayOpts := []gateway.Option{
		gateway.WithPresenceConfig(cfg.Presence),
		gateway.WithTimeouts(time.Duration(cfg.Ring.PersistTimeout), publishTimeout(cfg.NATS)),
		gateway.WithAllowedOrigins(cfg.CORS.AllowedOrigins),
	}

	if events != nil {
		gatewayOpts = append(gatewayOpts, gateway.WithPresencePublisher(events))
	}

	gw := gateway.New(router, store, verifier, coordinator, mainLogger.Component("gateway"), gatewayOpts...)

	apiServer := api.NewServer(cfg.CORS, mainLogger.Component("api"),
		api.WithRingService(coordinator),
		api.WithDirectory(store),
		api.WithPresence(registry),
		api.WithPushKeys(dispatcher),
		api.WithTokenVerifier(verifier),
		api.WithRoutes(gw),
	)

	srv := apiServer.HTTPServer(cfg.ListenAddr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mainLogger.Info().Str("listen_addr", cfg.ListenAddr).Msg("Starting HTTP server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		return gw.RunSweeper(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()

		mainLogger.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error

		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}

		if err := gw.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("gateway shutdown: %w", err))
		}

		if err := coordinator.Close(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("ring coordinator shutdown: %w", err))
		}

		return errors.Join(errs...)
	})

	return g.Wait()
}

func openDatabase(ctx context.Context, cfg *models.BuzzerConfig, log *lifecycle.LoggerImpl) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx, cfg.Database, log.Component("db"))
	if err != nil {
		return nil, err
	}

	if cfg.Database.RunMigrations {
		if err := db.RunMigrations(ctx, pool, log.Component("migrations")); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return pool, nil
}

// connectEvents returns a nil publisher when NATS is not configured.
func connectEvents(ctx context.Context, cfg *models.BuzzerConfig, log *lifecycle.LoggerImpl) (*natsutil.EventPublisher, *nats.Conn, error) {
	if cfg.NATS == nil || cfg.NATS.URL == "" {
		log.Info().Msg("NATS not configured, lifecycle events disabled")
		return nil, nil, nil
	}

	eventsLog := log.Component("events")

	nc, err := natsutil.Connect(cfg.NATS, eventsLog)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := natsutil.CreateEventPublisher(ctx, nc, cfg.NATS, eventsLog)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return publisher, nc, nil
}

func pushTimeout(cfg *models.PushConfig) time.Duration {
	if cfg == nil {
		return 0
	}

	return time.Duration(cfg.Timeout)
}

func publishTimeout(cfg *models.NATSConfig) time.Duration {
	if cfg == nil {
		return 0
	}

	return time.Duration(cfg.PublishTimeout)
}
