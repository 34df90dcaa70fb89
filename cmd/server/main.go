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

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/session-gateway/backend/internal/auth"
	"github.com/ayush/session-gateway/backend/internal/config"
	"github.com/ayush/session-gateway/backend/internal/events"
	"github.com/ayush/session-gateway/backend/internal/logging"
	"github.com/ayush/session-gateway/backend/internal/messaging"
	"github.com/ayush/session-gateway/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx := context.Background()

	fatal := func(msg string, err error) {
		logger.Error(ctx, msg, "err", err)
		os.Exit(1)
	}

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		fatal("postgres connect", err)
	}
	defer pgPool.Close()
	if err := store.Migrate(ctx, pgPool, logger); err != nil {
		fatal("postgres migrate", err)
	}
	pgStore := store.NewPostgresStore(pgPool)

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		fatal("redis connect", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb, cfg.SessionTTL)

	// ── Event sinks (optional) ───────────────────────────────
	var sinks events.Fanout
	var auditLog *store.MongoAuditStore

	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			fatal("mongo connect", err)
		}
		defer mongoClient.Disconnect(ctx)
		auditLog = store.NewMongoAuditStore(mongoClient.Database(cfg.MongoDB))
		sinks = append(sinks, auditLog)
	}

	if cfg.NATSURL != "" {
		natsCfg := messaging.DefaultNATSConfig()
		natsCfg.URL = cfg.NATSURL
		natsClient, err := messaging.NewNATSClient(natsCfg, logger)
		if err != nil {
			fatal("nats connect", err)
		}
		defer natsClient.Close()
		sinks = append(sinks, messaging.NewEventPublisher(natsClient))
	}

	// ── Handlers ─────────────────────────────────────────────
	authn, err := auth.NewAuthenticator(cfg.AuthMode, pgStore)
	if err != nil {
		fatal("authenticator", err)
	}
	if cfg.AuthMode == config.AuthModePlaceholder {
		logger.Warn(ctx, "placeholder authentication enabled, every login succeeds")
	}
	authHandler := auth.NewHandler(pgStore, sessions, authn, sinks, logger)
	if auditLog != nil {
		authHandler.WithAuditLog(auditLog)
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(authHandler, sessions, cfg.CORSAllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info(ctx, "listening", "addr", srv.Addr, "auth_mode", cfg.AuthMode, "event_sinks", len(sinks))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error(ctx, "shutdown", "err", err)
	}
}
