package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bettracker/internal/analytics"
	"bettracker/internal/auth"
	"bettracker/internal/cache"
	"bettracker/internal/config"
	cronrunner "bettracker/internal/cron"
	"bettracker/internal/db"
	"bettracker/internal/handler"
	"bettracker/internal/labeler"
	"bettracker/internal/llm"
	"bettracker/internal/logger"
	gormrepository "bettracker/internal/repository/gorm"
	"bettracker/internal/service"

	_ "bettracker/docs"
)

func main() {
	cfgPath := os.Getenv("BT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("BT_ENV_ONLY"); envOnlyRaw != "" {
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

	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}
	if cfg.App.Seed {
		if err := db.Seed(context.Background(), dbConn); err != nil {
			logger.Warn("seed failed", zap.Error(err))
		}
	}

	store := gormrepository.New(dbConn.Gorm)
	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		logger.Warn("init default system switches failed", zap.Error(err))
	}

	cacheStore, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Warn("cache backend unavailable, using memory", zap.Error(err))
		cacheStore = cache.NewMemoryStore()
	}
	if closer, ok := cacheStore.(io.Closer); ok {
		defer closer.Close()
	}

	loc, err := time.LoadLocation(cfg.Analytics.Timezone)
	if err != nil {
		logger.Warn("unknown analytics timezone, using UTC", zap.String("timezone", cfg.Analytics.Timezone), zap.Error(err))
		loc = time.UTC
	}

	llmClient := llm.New(cfg.LLM, logger)
	betLabeler := labeler.New(logger)

	ticketSvc := &service.TicketService{Repo: store, Logger: logger}
	statsSvc := &service.StatsService{
		Repo:   store,
		Logger: logger,
		Composer: analytics.Composer{
			Location: loc,
			Category: betLabeler.Categorize,
		},
	}
	marketTypeSvc := &service.MarketTypeService{Repo: store, Logger: logger}
	aiSvc := &service.AIService{
		Repo:         store,
		Stats:        statsSvc,
		LLM:          llmClient,
		Settings:     settingsSvc,
		Logger:       logger,
		Retention:    cfg.AI.HistoryRetention,
		HistoryLimit: cfg.AI.HistoryLimit,
	}
	ocrSvc := &service.OCRService{
		Reader:   llmClient,
		Cache:    cacheStore,
		Settings: settingsSvc,
		TTL:      cfg.OCR.CacheTTL,
		Logger:   logger,
	}

	var jwt *auth.JWT
	if cfg.Auth.Enabled() {
		j := auth.FromConfig(cfg.Auth)
		jwt = &j
	} else {
		logger.Warn("auth disabled, /api is open")
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := handler.NewRouter(handler.Deps{
		Logger:         logger,
		Ping:           func(ctx context.Context) error { return db.Ping(ctx, dbConn) },
		Lookups:        store,
		Location:       loc,
		Tickets:        ticketSvc,
		Stats:          statsSvc,
		MarketTypes:    marketTypeSvc,
		Settings:       settingsSvc,
		AI:             aiSvc,
		OCR:            ocrSvc,
		JWT:            jwt,
		Password:       cfg.Auth.Password,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.OCR.MaxUploadBytes,
		Swagger:        true,
	})

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		if _, err := cronRunner.Add("ai_prune", cfg.Cron.AIPrune, func(ctx context.Context) error {
			_, err := aiSvc.Prune(ctx)
			return err
		}); err != nil {
			logger.Fatal("cron ai_prune schedule invalid", zap.String("spec", cfg.Cron.AIPrune), zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
