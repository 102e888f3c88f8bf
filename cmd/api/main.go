package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hitched/api/internal/app"
	"hitched/api/internal/assistant"
	"hitched/api/internal/config"
	"hitched/api/internal/email"
	"hitched/api/internal/export"
	"hitched/api/internal/history"
	"hitched/api/internal/media"
	"hitched/api/internal/products"
	"hitched/api/internal/search"
	"hitched/api/internal/session"
	"hitched/api/internal/store"
)

func main() {
	setupLogging()
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.SnapshotsDir, 0o755); err != nil {
		slog.Error("failed to create snapshots dir", "error", err)
		os.Exit(1)
	}

	dataStore := store.NewPostgresStore(db)
	deps := app.Deps{
		Snapshots: history.New(cfg.SnapshotsDir),
		Exporter:  export.NewService(app.NewExportStore(dataStore)),
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		deps.Sessions = redisStore
		slog.Info("refresh tokens stored in redis")
	} else {
		slog.Info("refresh tokens stored in postgres")
	}

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, pgfts)
	deps.Search = searchService
	if meiliClient != nil {
		go searchService.ReindexAllFromPG(ctx)
	}

	mediaService, err := media.New(ctx, media.Config{
		Endpoint:      cfg.MinioEndpoint,
		AccessKey:     cfg.MinioAccessKey,
		SecretKey:     cfg.MinioSecretKey,
		Bucket:        cfg.MinioBucket,
		UseSSL:        cfg.MinioUseSSL,
		PublicBaseURL: cfg.MinioPublicURL,
	})
	if err != nil {
		slog.Warn("image hosting unavailable", "error", err)
	} else {
		deps.Media = mediaService
	}

	if cfg.ScraperAPIKey != "" {
		deps.Products = products.New(cfg.ScraperAPIKey, cfg.ScraperAPIURL)
	}
	if cfg.AnthropicAPIKey != "" {
		deps.Assistant = assistant.New(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}
	if cfg.SMTPHost != "" {
		deps.Email = email.NewService(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
	}

	service := app.New(cfg, dataStore, deps)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := app.NewMetrics(registry)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, metrics)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", httpServer.Handler())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("hitched api listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown error", "error", err)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}
