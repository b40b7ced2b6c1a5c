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

	"github.com/lumenpos/lumenpos/internal/app"
	"github.com/lumenpos/lumenpos/internal/auth"
	"github.com/lumenpos/lumenpos/internal/catalog"
	"github.com/lumenpos/lumenpos/internal/platform/cache"
	"github.com/lumenpos/lumenpos/internal/printing"
	"github.com/lumenpos/lumenpos/internal/sales/draft"
	"github.com/lumenpos/lumenpos/internal/sales/session"
	"github.com/lumenpos/lumenpos/internal/terminal"
	"github.com/lumenpos/lumenpos/internal/upstream"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		_ = redisClient.Close()
	}()

	tokens := auth.NewRedisTokenStore(redisClient)
	client := upstream.NewClient(cfg.APIBaseURL, tokens)
	authService := auth.NewService(client, tokens, logger)

	catalogLookup := catalog.NewCachedLookup(client, redisClient, cfg.CatalogCacheTTL, logger)

	sessions := session.NewManager(session.Deps{
		Engine:    draft.NewEngine(cfg.TaxRate),
		Catalog:   catalogLookup,
		Gateway:   client,
		Invoices:  client,
		Customers: client,
		Logger:    logger,
	})

	pdfClient := printing.NewPDFClient(cfg.GotenbergURL)
	if err := pdfClient.Ping(ctx); err != nil {
		logger.Warn("pdf converter unreachable, printing degrades to html", slog.Any("error", err))
	}

	handler := terminal.NewHandler(
		logger,
		sessions,
		authService,
		catalogLookup,
		client,
		client,
		printing.NewRenderer(),
		pdfClient,
	)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		TerminalHandler: handler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("terminal listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
