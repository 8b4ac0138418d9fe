// Command server wires the trust control plane: stores, services, the HTTP
// surface, and the process lifecycle. Business logic lives in internal/trust.
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

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"trustplane/internal/platform/config"
	"trustplane/internal/platform/httpserver"
	"trustplane/internal/platform/logger"
	"trustplane/internal/platform/postgres"
	platformredis "trustplane/internal/platform/redis"
	httptransport "trustplane/internal/transport/http"
	trustconfig "trustplane/internal/trust/config"
	"trustplane/internal/trust/eligibility"
	"trustplane/internal/trust/handler"
	"trustplane/internal/trust/metrics"
	"trustplane/internal/trust/notify"
	"trustplane/internal/trust/ports"
	"trustplane/internal/trust/quota"
	"trustplane/internal/trust/ratelimit"
	attemptstore "trustplane/internal/trust/store/attempt"
	documentstore "trustplane/internal/trust/store/document"
	usagestore "trustplane/internal/trust/store/usage"
	userstore "trustplane/internal/trust/store/user"
	"trustplane/internal/trust/verification"
	auditmemory "trustplane/pkg/platform/audit/store/memory"
	"trustplane/pkg/platform/audit/publisher"
	"trustplane/pkg/platform/middleware/auth"
	"trustplane/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Stores degrade to in-memory when a backend is not configured so the
	// binary stays runnable in development.
	var (
		documents ports.DocumentStore
		users     ports.UserStore
		usage     ports.UsageStore
		txRunner  ports.TxRunner
	)
	if db != nil {
		documents = documentstore.NewPostgres(db)
		users = userstore.NewPostgres(db)
		txRunner = tx.NewSQLRunner(db)

		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		usage = usagestore.NewPostgres(pool)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		documents = documentstore.NewInMemoryDocumentStore()
		users = userstore.NewInMemoryUserStore()
		usage = usagestore.NewInMemoryUsageStore()
		txRunner = tx.NewSerialRunner()
	}

	var attempts ratelimit.Store
	if redisClient != nil {
		attempts = attemptstore.NewRedisAttemptStore(redisClient.Client)
	} else {
		log.Warn("no redis URL configured, using in-memory attempt store")
		attempts = attemptstore.NewInMemoryAttemptStore()
	}

	var sink ports.NotificationSink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := notify.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	} else {
		log.Warn("no kafka brokers configured, logging notifications instead")
		sink = notify.NewLogSink(log)
	}

	auditPublisher := publisher.NewPublisher(auditmemory.NewInMemoryStore(), publisher.WithLogger(log))
	defer auditPublisher.Close()

	m := metrics.New()
	trustCfg := trustconfig.DefaultConfig()

	limiter, err := ratelimit.New(attempts,
		ratelimit.WithLogger(log),
		ratelimit.WithAuditPublisher(auditPublisher),
		ratelimit.WithConfig(trustCfg),
		ratelimit.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	verificationSvc, err := verification.New(documents, users, txRunner,
		verification.WithLogger(log),
		verification.WithAuditPublisher(auditPublisher),
		verification.WithNotificationSink(sink),
		verification.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	quotaSvc, err := quota.New(users, usage,
		quota.WithLogger(log),
		quota.WithAuditPublisher(auditPublisher),
		quota.WithNotificationSink(sink),
		quota.WithConfig(trustCfg),
		quota.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	eligibilitySvc, err := eligibility.New(verificationSvc, quotaSvc,
		eligibility.WithLogger(log),
	)
	if err != nil {
		return err
	}

	h := handler.New(eligibilitySvc, limiter, log, auth.NewHMACValidator(cfg.Server.JWTSigningKey))
	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(h, log))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting trustplane", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
