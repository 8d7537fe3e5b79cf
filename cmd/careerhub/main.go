package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/careerhub/internal/adapter/driven/contexttoken"
	"github.com/ericfisherdev/careerhub/internal/adapter/driven/opener"
	sqliteadapter "github.com/ericfisherdev/careerhub/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/careerhub/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/careerhub/internal/adapter/driving/web"
	wsadapter "github.com/ericfisherdev/careerhub/internal/adapter/driving/ws"
	"github.com/ericfisherdev/careerhub/internal/application"
	"github.com/ericfisherdev/careerhub/internal/bridge"
	"github.com/ericfisherdev/careerhub/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a missing or short signing secret).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"token_ttl", cfg.TokenTTL,
		"public_url", cfg.PublicURL,
		"tools", len(cfg.ToolURLs),
	)
	if cfg.ToolOrigin == "" {
		slog.Warn("CAREERHUB_TOOL_ORIGIN not set: verification endpoint and bridge accept every origin")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", db.Path())

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	appStore := sqliteadapter.NewApplicationRepo(db)
	interviewStore := sqliteadapter.NewInterviewRepo(db)
	documentStore := sqliteadapter.NewDocumentRepo(db)
	sessionStore := sqliteadapter.NewSessionRepo(db)

	authority, err := contexttoken.NewAuthority(cfg.SigningSecret)
	if err != nil {
		return err
	}

	// 6. Create application services.
	contextSvc := application.NewContextService(
		appStore,
		interviewStore,
		documentStore,
		authority,
		authority,
		cfg.TokenTTL,
		slog.Default(),
	)

	var launcherOpts []application.LauncherOption
	if cfg.ContextInQuery {
		launcherOpts = append(launcherOpts, application.WithQueryChannel())
	}
	launcher := application.NewLauncher(
		contextSvc,
		opener.NewPrinter(os.Stdout),
		cfg.ToolURLs,
		cfg.PublicURL,
		slog.Default(),
		launcherOpts...,
	)

	// 7. Start the messaging bridge.
	msgBridge := bridge.New(cfg.ToolOrigin, slog.Default())
	toolMessages := application.NewToolMessageService(msgBridge, contextSvc, slog.Default())
	toolMessages.Start()
	defer toolMessages.Stop()

	// 7.5. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(contextSvc, sessionStore, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler, httphandler.Options{
		ToolOrigin:          cfg.ToolOrigin,
		VerifyRatePerMinute: cfg.VerifyRatePerMinute,
		Bridge:              wsadapter.NewHandler(msgBridge, slog.Default()),
	})

	// 7.6. Create web handler and register launch routes.
	webHandler := webhandler.NewHandler(appStore, sessionStore, launcher, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Bridge connections read until this context ends.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Log startup complete.
	slog.Info("careerhub started",
		"listen_addr", cfg.ListenAddr,
		"tool_origin", cfg.ToolOrigin,
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 11. Log shutdown complete.
	slog.Info("shutdown complete")
	return nil
}
