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

	"telephony-common/internal/audit"
	"telephony-common/internal/auth"
	"telephony-common/internal/calls"
	"telephony-common/internal/config"
	"telephony-common/internal/phone"
	"telephony-common/internal/reporting"
	"telephony-common/pkg/logger"
	"telephony-common/pkg/metrics"
	"telephony-common/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "telephony-api"})
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	codecMetrics, err := metrics.NewCodec(reg)
	if err != nil {
		log.Error("metrics init failed", "err", err)
		os.Exit(1)
	}
	opts := []calls.Option{calls.WithMetrics(codecMetrics)}

	var (
		repo      calls.Repository
		lister    calls.Lister
		auditRepo audit.Repository
	)
	if cfg.DB.Host != "" {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := utils.EnsureSchema(rootCtx, db); err != nil {
			log.Error("postgres schema failed", "err", err)
			os.Exit(1)
		}
		pg := calls.NewPostgresRepo(db)
		repo, lister = pg, pg
		auditRepo = audit.NewPostgresRepo(db)
	} else {
		log.Warn("DB_HOST not set, call records are kept in memory")
		mem := calls.NewMemoryRepo()
		repo, lister = mem, mem
		auditRepo = audit.NewMemoryRepo()
	}

	if cfg.Redis.Host != "" {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		opts = append(opts, calls.WithCache(calls.NewRedisCache(rdb, cfg.Redis.CacheTTL)))
	}

	if cfg.NATS.URL != "" {
		nc, err := utils.OpenNATS(cfg.NATS.URL, cfg.NATS.Name, log)
		if err != nil {
			log.Error("nats init failed", "err", err)
			os.Exit(1)
		}
		defer nc.Drain()
		opts = append(opts, calls.WithPublisher(calls.NewNATSPublisher(nc)))
	}

	phones, err := newPhoneRegistry(cfg.Phones)
	if err != nil {
		log.Error("phone registry init failed", "err", err)
		os.Exit(1)
	}

	deps := routeDeps{
		Audit:       audit.NewService(auditRepo),
		Auth:        authManager,
		Calls:       calls.NewService(repo, opts...),
		Phones:      phones,
		Reports:     reporting.NewService(lister),
		Metrics:     reg,
		IssueTokens: !cfg.IsProduction(),
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

// loadConfig reads ENV_FILE first when it is set.
func loadConfig() (config.Config, error) {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newPhoneRegistry(cfg config.PhonesConfig) (*phone.Registry, error) {
	reg := phone.NewRegistry(cfg.DefaultSlot)
	for slot, name := range cfg.Slots {
		reg.Add(phone.Phone{Slot: slot, Name: name})
	}
	for sub, slot := range cfg.Subscriptions {
		if err := reg.Bind(sub, slot); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
