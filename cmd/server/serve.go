package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"depositguard/internal/assist"
	"depositguard/internal/audit"
	auditkafka "depositguard/internal/audit/kafka"
	"depositguard/internal/audit/relay"
	auditstore "depositguard/internal/audit/store"
	casehandler "depositguard/internal/cases/handler"
	casemetrics "depositguard/internal/cases/metrics"
	caseservice "depositguard/internal/cases/service"
	casestore "depositguard/internal/cases/store"
	"depositguard/internal/documents"
	"depositguard/internal/documents/objectstore"
	httpapi "depositguard/internal/http"
	"depositguard/internal/jurisdiction/cache"
	jurisdictionhandler "depositguard/internal/jurisdiction/handler"
	jurisdictionservice "depositguard/internal/jurisdiction/service"
	jurisdictionstore "depositguard/internal/jurisdiction/store"
	jwttoken "depositguard/internal/jwt_token"
	"depositguard/internal/platform/config"
	"depositguard/internal/platform/httpserver"
	"depositguard/internal/platform/metrics"
	"depositguard/internal/platform/postgres"
	platformredis "depositguard/internal/platform/redis"
	"depositguard/pkg/platform/tx"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts.cfg, opts.logger)
		},
	}
}

// stores is the persistence wiring picked by configuration: Postgres when a
// DSN is set, in-memory otherwise.
type stores struct {
	db           *sql.DB
	jurisdiction interface {
		jurisdictionservice.Store
		jurisdictionstore.Writer
	}
	cases  caseservice.Store
	audit  audit.Store
	outbox relay.Source
	tx     tx.Transactor
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Postgres.DSN == "" {
		logger.WarnContext(ctx, "postgres not configured; using in-memory stores")
		return &stores{
			jurisdiction: jurisdictionstore.NewInMemory(),
			cases:        casestore.NewInMemory(),
			audit:        auditstore.NewInMemory(),
			tx:           tx.None{},
		}, nil
	}
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	auditPG := auditstore.NewPostgres(db)
	return &stores{
		db:           db,
		jurisdiction: jurisdictionstore.NewPostgres(db),
		cases:        casestore.NewPostgres(db),
		audit:        auditPG,
		outbox:       auditPG,
		tx:           tx.NewDB(db),
	}, nil
}

func openObjectStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (objectstore.Store, error) {
	var backend objectstore.Store
	switch cfg.Backend {
	case "s3":
		s3, err := objectstore.NewS3FromEnv(ctx, objectstore.S3Config{
			Region:   cfg.S3Region,
			Bucket:   cfg.S3Bucket,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		backend = s3
	default:
		logger.WarnContext(ctx, "object storage is in memory; documents are lost on restart")
		backend = objectstore.NewMemory()
	}
	return objectstore.NewBreaker(backend,
		objectstore.WithFailureThreshold(cfg.FailureThreshold),
		objectstore.WithCooldown(cfg.Cooldown),
		objectstore.WithBreakerLogger(logger),
	), nil
}

func newImprover(cfg config.OpenAIConfig, logger *slog.Logger) (caseservice.Improver, error) {
	if cfg.APIKey == "" {
		return assist.Disabled{}, nil
	}
	opts := []assist.Option{
		assist.WithModel(cfg.Model),
		assist.WithRateLimit(cfg.RPS, cfg.Burst),
		assist.WithTimeout(cfg.Timeout),
		assist.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, assist.WithBaseURL(cfg.BaseURL))
	}
	improver, err := assist.NewOpenAI(cfg.APIKey, opts...)
	if err != nil {
		return nil, err
	}
	return improver, nil
}

func seedInto(ctx context.Context, w jurisdictionstore.Writer, file string) (*jurisdictionstore.SeedReport, error) {
	now := time.Now().UTC()
	if file == "" {
		return jurisdictionstore.Seed(ctx, w, now)
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return jurisdictionstore.SeedFrom(ctx, w, raw, now)
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	} else if _, err := seedInto(ctx, st.jurisdiction, ""); err != nil {
		return fmt.Errorf("seed in-memory jurisdictions: %w", err)
	}

	checks := map[string]httpapi.HealthCheck{}
	if st.db != nil {
		checks["postgres"] = st.db.PingContext
	}

	ruleCache := cache.Tiered{cache.NewMemory(cfg.Redis.CacheTTL)}
	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		ruleCache = append(ruleCache, cache.NewRedis(rdb.Client, cfg.Redis.CacheTTL, cache.WithLogger(logger)))
		checks["redis"] = rdb.Health
	}

	objects, err := openObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	improver, err := newImprover(cfg.OpenAI, logger)
	if err != nil {
		return err
	}

	appMetrics := metrics.New()
	rules := jurisdictionservice.New(st.jurisdiction,
		jurisdictionservice.WithCache(ruleCache),
		jurisdictionservice.WithLogger(logger),
	)
	cases := caseservice.New(st.cases, rules, audit.NewRecorder(st.audit, logger), documents.NewTextRenderer(), objects,
		caseservice.WithLogger(logger),
		caseservice.WithMetrics(casemetrics.New(appMetrics.Registry)),
		caseservice.WithTransactor(st.tx),
		caseservice.WithImprover(improver),
		caseservice.WithSignedURLTTL(cfg.Storage.SignedURLTTL),
	)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Logger:         logger,
		Metrics:        appMetrics,
		Auth:           jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer),
		RequestTimeout: cfg.Server.RequestTimeout,
		Checks:         checks,
		Public:         []httpapi.Registrar{jurisdictionhandler.New(rules, logger)},
		Protected:      []httpapi.Registrar{casehandler.New(cases, logger)},
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(ctx, httpserver.New(cfg.Server.Addr, router), cfg.Server.ShutdownTimeout, logger)
	})
	if len(cfg.Kafka.Brokers) > 0 && st.outbox != nil {
		producer, err := auditkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
			logger.WarnContext(ctx, "audit topic check failed", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		r := relay.New(st.outbox, producer,
			relay.WithDB(st.db),
			relay.WithInterval(cfg.Kafka.RelayInterval),
			relay.WithBatchSize(cfg.Kafka.RelayBatch),
			relay.WithLogger(logger),
		)
		g.Go(func() error {
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else if len(cfg.Kafka.Brokers) > 0 {
		logger.WarnContext(ctx, "kafka configured without postgres; audit relay disabled")
	}

	return g.Wait()
}
