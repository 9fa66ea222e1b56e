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

	"swooche-router/internal/calls"
	"swooche-router/internal/config"
	"swooche-router/internal/notify"
	"swooche-router/internal/observe"
	"swooche-router/internal/presence"
	"swooche-router/internal/routing"
	"swooche-router/internal/voicetoken"
	"swooche-router/pkg/logger"
	"swooche-router/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := observe.NewMetrics(reg)

	// Presence store: Redis when configured, in-memory otherwise.
	var store presence.Store
	if cfg.UseRedisPresence() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = presence.NewRedisStore(rdb, 0)
	} else {
		log.Info("redis not configured, using in-memory presence store")
		store = presence.NewMemoryStore()
	}
	presenceSvc := presence.NewService(store, log, metrics)

	// Call log: Postgres when configured, in-memory otherwise.
	var callLog calls.Repository
	if cfg.UsePostgresCallLog() {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		callLog = calls.NewPostgresRepo(db)
	} else {
		log.Info("postgres not configured, using in-memory call log")
		callLog = calls.NewMemoryRepo()
	}

	routes := routing.NewTable(cfg.Agent.DefaultIdentity)
	if cfg.Twilio.PhoneNumber != "" {
		routes.SetRoute(cfg.Twilio.PhoneNumber, cfg.Agent.DefaultIdentity)
	}

	issuer := voicetoken.NewIssuer(cfg.Twilio)

	var notifier *notify.Notifier
	if sms, err := notify.NewTwilioSMS(cfg.Twilio); err != nil {
		log.Warn("post-call SMS disabled", "err", err)
	} else {
		notifier = notify.NewNotifier(sms, log, metrics, notify.NewDeliveryLog(0))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, deps{
		cfg:      cfg,
		reg:      reg,
		metrics:  metrics,
		presence: presenceSvc,
		routes:   routes,
		issuer:   issuer,
		notifier: notifier,
		callLog:  callLog,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("router listening", "addr", srv.Addr, "env", cfg.App.Env)
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
