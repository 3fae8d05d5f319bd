package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"leadintake/internal/backend"
	"leadintake/internal/config"
	"leadintake/internal/database"
	"leadintake/internal/domain/intake"
	"leadintake/internal/domain/staff"
	"leadintake/internal/domain/upload"
	"leadintake/internal/middleware"
	applog "leadintake/internal/pkg/logger"
	"leadintake/internal/pkg/metrics"
	jwtsvc "leadintake/internal/pkg/jwt"
	"leadintake/internal/repository"
)

const pruneInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := applog.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db, repository.Models()...); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a := newApp(cfg, logger, db, reg)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.store.Run(gctx, cfg.SweepInterval)
		return nil
	})
	g.Go(func() error {
		pruneJournal(gctx, a.journal, cfg.JournalRetention, logger)
		return nil
	})
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type app struct {
	store   *intake.Store
	journal *repository.SubmissionRepository
	router  *gin.Engine
}

func newApp(cfg *config.Config, logger *zap.Logger, db *gorm.DB, reg *prometheus.Registry) *app {
	m := metrics.New(reg)

	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger, m)
	journal := repository.NewSubmissionRepository(db)
	uploads := upload.NewService(client, cfg.UploadMaxBytes, logger)
	resolver := staff.NewResolver(client, logger)

	store := intake.NewStore(cfg.SessionTTL, m, logger)
	service := intake.NewService(store, client, uploads, resolver, journal, m, logger)

	checkOrigin := middleware.OriginAllowed(cfg.CORSAllowedOrigins)
	if cfg.AllowAnyWSOrigin {
		checkOrigin = nil
	}
	hub := intake.NewHub(checkOrigin, logger)
	service.SetPublisher(hub)
	store.OnEvict(hub.Close)

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)
	handler := intake.NewHandler(service, hub)

	return &app{
		store:   store,
		journal: journal,
		router:  newRouter(cfg, logger, reg, db, j, handler),
	}
}

func newRouter(
	cfg *config.Config,
	logger *zap.Logger,
	reg *prometheus.Registry,
	db *gorm.DB,
	j *jwtsvc.Service,
	handler *intake.Handler,
) *gin.Engine {
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unavailable"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "database": dbStatus})
	})
	r.GET("/metrics", metrics.Handler(reg))

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(j))
	{
		intake.RegisterRoutes(protected, handler)
	}
	return r
}

func pruneJournal(ctx context.Context, journal *repository.SubmissionRepository, retention time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := journal.Prune(ctx, time.Now().Add(-retention))
			if err != nil {
				logger.Warn("journal prune failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("pruned submission journal", zap.Int64("rows", n))
			}
		}
	}
}
