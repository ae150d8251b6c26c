package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"kycgate/internal/kyc/contract"
	kychandler "kycgate/internal/kyc/handler"
	kycmetrics "kycgate/internal/kyc/metrics"
	"kycgate/internal/kyc/service"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/httpserver"
	"kycgate/internal/platform/logger"
	platformmetrics "kycgate/internal/platform/metrics"
	httptransport "kycgate/internal/transport/http"
	"kycgate/pkg/platform/audit/publishers/compliance"
	auditmemory "kycgate/pkg/platform/audit/store/memory"
)

// main wires the verification pipeline behind the HTTP router and keeps the
// server lifecycle small. Business logic lives in internal/kyc.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(os.Stderr, cfg.LogFormat, logger.ParseLevel(cfg.LogLevel))

	registry := platformmetrics.NewRegistry()

	auditPublisher := compliance.New(
		auditmemory.NewInMemoryStore(),
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(registry)),
	)
	defer func() {
		if err := auditPublisher.Close(); err != nil {
			log.Error("failed to close audit publisher", "error", err)
		}
	}()

	svc, err := service.New(cfg.KYC,
		service.WithLogger(log),
		service.WithMetrics(kycmetrics.New(registry)),
		service.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("failed to build kyc service", "error", err)
		os.Exit(1)
	}

	contracts, err := contract.Load()
	if err != nil {
		log.Error("failed to load request contracts", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		KYC:     kychandler.New(svc, contracts, log),
		Metrics: registry.Handler(),
		Logger:  log,
	})
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting kycgate",
			"addr", cfg.Addr,
			"min_age", cfg.KYC.MinAge,
			"max_age", cfg.KYC.MaxAge,
			"confidence_threshold", cfg.KYC.ConfidenceThreshold,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
