package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smsledger/internal/shared/config"
	"smsledger/internal/shared/logger"
	"smsledger/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
			SampleRatio:  cfg.Telemetry.SampleRatio,
		}, log)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Telemetry shutdown failed")
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Warm the rule cache so the first message does not pay for the load.
	snap := deps.RuleStore.Rules(ctx)
	log.Info().Str("source", string(snap.Source)).Int("rules", len(snap.Rules)).Int("skipped", len(snap.Skipped)).Msg("Rules loaded")

	deps.Pool.Start()
	deps.RuleListener.Start(context.Background())
	if deps.RuleSync != nil {
		if err := deps.RuleSync.Start(cfg.Rules.SyncSchedule); err != nil {
			return err
		}
	}

	handler := SetupRoutes(deps, cfg, log)
	srv, redirectSrv, serveErrs := StartServers(NewServerConfigFromConfig(handler, cfg), log)

	select {
	case <-ctx.Done():
	case err := <-serveErrs:
		log.Error().Err(err).Msg("Server failed")
		GracefulShutdown(srv, redirectSrv, deps, 30*time.Second, log)
		return err
	}

	GracefulShutdown(srv, redirectSrv, deps, 30*time.Second, log)
	return nil
}
