package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"continuum/internal/client/github"
	"continuum/internal/client/statuspage"
	"continuum/internal/config"
	cronrunner "continuum/internal/cron"
	"continuum/internal/db"
	"continuum/internal/handler"
	"continuum/internal/ingest"
	"continuum/internal/logger"
	gormrepository "continuum/internal/repository/gorm"
)

func main() {
	cfgPath := os.Getenv("CONTINUUM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CONTINUUM_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	githubHTTP := &http.Client{Timeout: cfg.GitHub.Timeout}
	githubClient := github.NewClient(githubHTTP, cfg.GitHub.BaseURL, cfg.GitHub.RawBaseURL, cfg.GitHub.Token)
	statusHTTP := &http.Client{Timeout: cfg.Statuspage.Timeout}
	statusClient := statuspage.NewClient(statusHTTP)

	syncer := &ingest.Syncer{
		Repo:     store,
		GitHub:   githubClient,
		Status:   statusClient,
		FeedHTTP: &http.Client{Timeout: cfg.Feed.Timeout},
		Logger:   logger,
		Options: ingest.Options{
			SampleCap:        cfg.Sync.SampleCap,
			FetchConcurrency: cfg.Sync.FetchConcurrency,
			FetchBatchSize:   cfg.Sync.FetchBatchSize,
			PerPage:          cfg.GitHub.PerPage,
		},
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(handler.CORSMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	handler.RegisterDocs(engine)

	postmortemHandler := &handler.PostmortemHandler{Repo: store, Logger: logger}
	postmortemHandler.Register(engine)
	adminHandler := &handler.AdminHandler{Repo: store, Logger: logger, Secret: cfg.Admin.Secret}
	adminHandler.Register(engine)
	sourceHandler := &handler.SourceHandler{Repo: store, Syncer: syncer, Logger: logger, Secret: cfg.Admin.Secret}
	sourceHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.SourceSync, func(ctx context.Context) {
			syncActiveSources(ctx, store, syncer, logger)
		})
		if err != nil {
			logger.Fatal("cron add failed", zap.Error(err))
		}
		cronRunner.Start()
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if cfg.Cron.Enabled {
		cronRunner.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
}

// syncActiveSources runs the pipeline for every active source in turn,
// draining each event stream; the terminal result is logged by the syncer.
func syncActiveSources(ctx context.Context, store *gormrepository.Store, syncer *ingest.Syncer, logger *zap.Logger) {
	sources, err := store.ListActiveSources(ctx)
	if err != nil {
		logger.Warn("cron list sources failed", zap.Error(err))
		return
	}
	for _, src := range sources {
		if ctx.Err() != nil {
			return
		}
		for range syncer.Run(ctx, src) {
		}
	}
}
