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
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"driverhub/internal/audit"
	"driverhub/internal/document"
	documentstore "driverhub/internal/document/store"
	"driverhub/internal/driver"
	driverstore "driverhub/internal/driver/store"
	"driverhub/internal/jwttoken"
	"driverhub/internal/platform/config"
	"driverhub/internal/platform/httpserver"
	"driverhub/internal/platform/logger"
	"driverhub/internal/platform/metrics"
	platformredis "driverhub/internal/platform/redis"
	"driverhub/internal/ratelimit"
	"driverhub/internal/registration"
	registrationhandler "driverhub/internal/registration/handler"
	registrationmetrics "driverhub/internal/registration/metrics"
	httptransport "driverhub/internal/transport/http"
	"driverhub/internal/vehicle"
	vehiclestore "driverhub/internal/vehicle/store"
	"driverhub/internal/verification"
	verificationhandler "driverhub/internal/verification/handler"
)

// main wires the dependency graph and owns process lifecycle. Business
// logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var (
		drivers    driver.Store
		docMeta    document.MetadataStore
		vehicles   vehicle.Store
		auditStore audit.Store
		health     func() error
	)

	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		drivers = driverstore.NewPostgresStore(pool)
		docMeta = documentstore.NewPostgresStore(pool)
		vehicles = vehiclestore.NewPostgresStore(pool)
		auditStore = audit.NewPostgresStore(pool)
		health = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		}
		log.Info("using postgres-backed stores")
	} else {
		drivers = driverstore.NewInMemoryStore()
		docMeta = documentstore.NewInMemoryStore()
		vehicles = vehiclestore.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	blobs := documentstore.NewInMemoryBlobStore()
	documents := document.NewAdapter(blobs, docMeta, cfg.MaxDocumentBytes)

	var rateStore ratelimit.Store = ratelimit.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		rateStore = ratelimit.NewRedisStore(redisClient.Client)
		log.Info("using redis-backed rate limiter")
	}

	inbox := make(chan audit.Event, 256)
	auditor := audit.NewChanPublisher(inbox)
	worker := audit.NewWorker(auditStore, inbox, log)
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = kafka.Close(closeCtx)
		}()
		worker = worker.WithMirror(kafka)
		log.Info("mirroring audit events to kafka", "topic", cfg.AuditTopic)
	}

	jwtService := jwttoken.NewService(cfg.JWTSigningKey, "driverhub", "driverhub")

	registrationService := registration.NewService(
		drivers, documents, vehicles, auditor, registrationmetrics.New(), log)
	verificationService := verification.NewService(drivers, documents, auditor, log)

	router := httptransport.New(httptransport.Deps{
		Registration:    registrationhandler.New(registrationService, log, cfg.MaxDocumentBytes),
		Verification:    verificationhandler.New(verificationService, auditStore, log),
		JWTValidator:    jwtService,
		AdminAPIKey:     cfg.AdminAPIKey,
		RateLimitStore:  rateStore,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		RequestTimeout:  cfg.RequestTimeout,
		Metrics:         metrics.New(),
		Logger:          log,
		Health:          health,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(ctx)
	})

	g.Go(func() error {
		log.Info("starting driverhub", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
