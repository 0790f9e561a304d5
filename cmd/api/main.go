package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/booking"
	"github.com/BruksfildServices01/barber-booking/internal/catalog"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	"github.com/BruksfildServices01/barber-booking/internal/drafts"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/platform"
	"github.com/BruksfildServices01/barber-booking/internal/routes"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// INFRA
	// ======================================================
	loc, err := timezone.Resolve(cfg.Timezone)
	if err != nil {
		lg.Fatal("invalid booking timezone", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.New(reg)

	var (
		sink audit.Sink = audit.NewZapSink(lg)
		db   *gorm.DB
	)
	if cfg.UseDatabase() {
		db, err = dbpkg.NewDB(cfg.DBUrl)
		if err != nil {
			lg.Fatal("failed to open audit database", zap.Error(err))
		}
		sink = audit.New(db)
	}
	auditDispatcher := audit.NewDispatcher(sink, lg, cfg.AuditQueueSize)
	defer auditDispatcher.Close()

	var store drafts.Store = drafts.NewMemoryStore()
	if cfg.UseRedis() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			lg.Fatal("failed to reach redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		store = drafts.NewRedisStore(rdb)
	} else {
		lg.Warn("REDIS_ADDR not set, booking drafts are kept in memory")
	}

	// ======================================================
	// BOOKING
	// ======================================================
	client := platform.NewClient(cfg.PlatformURL, cfg.PlatformTimeout, lg)

	manager := drafts.NewManager(booking.Deps{
		Catalog:      catalog.NewLoader(client, lg, bookingMetrics, cfg.MediaConcurrency),
		Availability: client,
		Appointments: client,
		Settings:     client,
		Clock:        clock.New(loc),
		Routes:       cfg.Routes,
		Logger:       lg,
		Metrics:      bookingMetrics,
		Audit:        auditDispatcher,
	}, store, drafts.Options{
		DraftTTL:    cfg.DraftTTL,
		IdleTimeout: cfg.IdleTimeout,
	}, lg)
	defer manager.Close()

	// ======================================================
	// HTTP
	// ======================================================
	if !logger.IsProduction(cfg.AppEnv) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		Sessions: manager,
		Gatherer: reg,
		Logger:   lg,
		DB:       db,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		manager.Run(gctx)
		return nil
	})

	g.Go(func() error {
		lg.Info("server running", zap.String("addr", cfg.Addr()), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("server stopped", zap.Error(err))
	}
}
