package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"curio/internal/auth"
	"curio/internal/drop"
	dropmetrics "curio/internal/drop/metrics"
	"curio/internal/drop/models"
	"curio/internal/drop/service"
	"curio/internal/drop/store/ledger"
	"curio/internal/drop/store/state"
	"curio/internal/drop/store/whitelist"
	"curio/internal/platform/config"
	"curio/internal/platform/httpserver"
	"curio/internal/platform/logger"
	"curio/internal/platform/middleware"
	platformredis "curio/internal/platform/redis"
	"curio/internal/treasury"
	"curio/pkg/platform/audit/kafka"
	"curio/pkg/platform/audit/publisher"
	auditmem "curio/pkg/platform/audit/store/memory"
	auditpg "curio/pkg/platform/audit/store/postgres"
	"curio/pkg/platform/tx"
)

// main wires dependencies and owns the server lifecycle. Backends are chosen
// by configuration: Postgres, Redis, and Kafka when configured, in-memory
// fallbacks otherwise.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		stateStore  service.StateStore
		ledgerStore service.Ledger
		opts        []drop.Option
		db          *sql.DB
	)

	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("database unreachable", "error", err)
			os.Exit(1)
		}

		pgLedger := ledger.NewPostgres(db)
		pgState := state.NewPostgres(db)
		if err := pgLedger.EnsureSchema(ctx); err != nil {
			log.Error("failed to create ledger schema", "error", err)
			os.Exit(1)
		}
		if err := pgState.EnsureSchema(ctx); err != nil {
			log.Error("failed to create state schema", "error", err)
			os.Exit(1)
		}
		ledgerStore = pgLedger
		stateStore = pgState
		opts = append(opts, drop.WithTxRunner(tx.SQLRunner{DB: db}))
		log.Info("using postgres backend")
	} else {
		ledgerStore = ledger.NewInMemory()
		stateStore = state.NewInMemory()
		log.Info("using in-memory backend")
	}

	var whitelistStore service.Whitelist
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		whitelistStore = whitelist.NewRedis(redisClient.Client)
		defer redisClient.Close()
		log.Info("using redis whitelist")
	} else {
		whitelistStore = whitelist.NewInMemory()
	}

	var auditStore publisher.Store
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaPub.Close()
		auditStore = kafkaPub
		log.Info("publishing audit events to kafka", "topic", cfg.AuditTopic)
	} else if db != nil {
		pgAudit := auditpg.New(db)
		if err := pgAudit.EnsureSchema(ctx); err != nil {
			log.Error("failed to create audit schema", "error", err)
			os.Exit(1)
		}
		auditStore = pgAudit
		log.Info("persisting audit events in postgres")
	} else {
		auditStore = auditmem.NewInMemoryStore()
	}
	auditPub := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(256))
	defer auditPub.Close()

	opts = append(opts,
		drop.WithLogger(log),
		drop.WithMetrics(dropmetrics.New()),
		drop.WithAuditPublisher(auditPub),
	)

	svc := drop.NewService(stateStore, ledgerStore, whitelistStore, treasury.NewInMemory(), opts...)

	admin, err := models.ParseAccount(cfg.AdminAccount)
	if err != nil {
		log.Error("invalid administrator account", "error", err)
		os.Exit(1)
	}
	initial, err := models.NewCollection(admin, cfg.MintCap, cfg.PhaseLimit, cfg.MintPrice, cfg.PlaceholderURI)
	if err != nil {
		log.Error("invalid collection parameters", "error", err)
		os.Exit(1)
	}
	if err := svc.Bootstrap(ctx, initial); err != nil {
		log.Error("failed to bootstrap collection", "error", err)
		os.Exit(1)
	}

	jwtService := auth.NewJWTService(cfg.JWTSigningKey, "curio")
	handler := drop.NewHandler(svc, log, jwtService)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.ContentTypeJSON)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthz(db, redisClient))
	handler.Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting curio", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// healthz pings the configured backends in parallel. Nil backends are healthy
// by definition since the in-memory fallbacks cannot fail.
func healthz(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		if db != nil {
			g.Go(func() error { return db.PingContext(ctx) })
		}
		if redisClient != nil {
			g.Go(func() error { return redisClient.Health(ctx) })
		}

		if err := g.Wait(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
