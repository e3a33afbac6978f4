package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/leadiq/internal/adapter/fsm"
	"github.com/neomorfeo/leadiq/internal/adapter/river"
	"github.com/neomorfeo/leadiq/internal/adapter/sqlite"
	"github.com/neomorfeo/leadiq/internal/app"
	"github.com/neomorfeo/leadiq/internal/domain"

	handler "github.com/neomorfeo/leadiq/internal/adapter/http"
	otelx "github.com/neomorfeo/leadiq/internal/adapter/otel"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "leadiq.db")

	ctx := context.Background()

	// --- Observability ---
	providers, err := otelx.Setup(ctx, otelx.ConfigFromEnv())
	if err != nil {
		return err
	}
	// Runs on every exit path, including bootstrap failures below, so
	// exporters always flush.
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(flushCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otelx.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return err
	}

	riverClient, err := river.Setup(ctx, db)
	if err != nil {
		return err
	}
	if err := riverClient.Start(ctx); err != nil {
		return err
	}

	publisher := otelx.NewTracingPublisher(river.NewPublisher(riverClient))

	leads := otelx.NewTracingRepository[*domain.Lead, domain.LeadFilter](
		"LeadRepository", sqlite.NewLeadRepository(store, publisher))
	customers := otelx.NewTracingRepository[*domain.Customer, domain.CustomerFilter](
		"CustomerRepository", sqlite.NewCustomerRepository(store, publisher))
	campaigns := otelx.NewTracingRepository[*domain.Campaign, domain.CampaignFilter](
		"CampaignRepository", sqlite.NewCampaignRepository(store, publisher))

	uowFactory := sqlite.NewUnitOfWorkFactory(store, publisher)

	// --- Application ---
	leadSvc := app.NewLeadService(leads, uowFactory)
	customerSvc := app.NewCustomerService(customers)
	campaignSvc := app.NewCampaignService(campaigns, fsm.New())

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("leadiq", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("leadiq", "0.1.0"))
	handler.Register(api, leadSvc, customerSvc, campaignSvc)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("leadiq listening", "port", port)
		slog.Info("API docs", "url", "http://localhost:"+port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop taking requests first, then drain the job queue. The store and
	// the telemetry exporters close via the deferred calls above.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("river shutdown", "error", err)
	}

	slog.Info("stopped")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
