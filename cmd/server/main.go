// Package main is the entry point for the costcalc HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"costcalc/api"
	"costcalc/core/bus"
	"costcalc/core/calculators"
	"costcalc/core/pricing"
	"costcalc/core/record"
	"costcalc/core/registry"
	"costcalc/core/runner"
	"costcalc/internal/config"
	"costcalc/internal/logging"
)

const version = "0.1.0"

func main() {
	addr := flag.String("addr", "", "listen address (overrides COSTCALC_ADDR)")
	flag.Parse()

	cfg := config.LoadEnv()
	config.Set(cfg)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	r := buildRunner(cfg)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewServer(api.NewHandler(r), version),
	}

	// Warm the pricing cache so the first request does not pay for the
	// remote fetch.
	warmCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Pricing.FetchTimeoutSeconds)*time.Second)
	r.Resolver().GetPricing(warmCtx, "concrete", cfg.Region)
	cancel()

	errCh := make(chan error, 1)
	go func() {
		logging.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("version", version))
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logging.Error("server failed", zap.Error(err))
			os.Exit(1)
		}
	case sig := <-stop:
		logging.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logging.Error("shutdown error", zap.Error(err))
		}
	}
}

func buildRunner(cfg *config.Config) *runner.Runner {
	var opts []pricing.Option
	if cfg.Pricing.URL != "" && !cfg.Pricing.OfflineOnly {
		opts = append(opts, pricing.WithURL(cfg.Pricing.URL))
	}
	resolver := pricing.NewResolver(opts...)

	reg := registry.NewRegistry()
	calculators.RegisterAll(reg, resolver)

	store := record.NewStore(cfg.DataDir)
	if cfg.HistoryLimit > 0 {
		store = store.WithLimit(cfg.HistoryLimit)
	}

	return runner.New(reg, resolver, bus.New(), store)
}
