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

	"golang.org/x/sync/errgroup"

	certhandler "certreg/internal/certificate/handler"
	certmetrics "certreg/internal/certificate/metrics"
	certservice "certreg/internal/certificate/service"
	certstore "certreg/internal/certificate/store"
	"certreg/internal/events"
	httpapi "certreg/internal/http"
	issuerhandler "certreg/internal/issuer/handler"
	issuermetrics "certreg/internal/issuer/metrics"
	issuerservice "certreg/internal/issuer/service"
	issuerstore "certreg/internal/issuer/store"
	jwttoken "certreg/internal/jwt_token"
	"certreg/internal/ledger"
	"certreg/internal/platform/config"
	"certreg/internal/platform/database"
	"certreg/internal/platform/health"
	"certreg/internal/platform/httpserver"
	"certreg/internal/platform/kafka/producer"
	"certreg/internal/platform/logger"
	platformredis "certreg/internal/platform/redis"
	"certreg/internal/sequence"
	"certreg/internal/storetx"
	id "certreg/pkg/domain"
	"certreg/pkg/secrets"
)

const notificationInboxSize = 256

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	owner, err := id.ParseIdentity(cfg.OwnerIdentity)
	if err != nil {
		return err
	}

	ownerTokenHash := cfg.OwnerTokenHash
	if ownerTokenHash == "" {
		ownerTokenHash, err = secrets.Hash(cfg.OwnerToken)
		if err != nil {
			return err
		}
	}

	healthHandler := health.New(cfg.Environment)

	// Storage backends. An empty DATABASE_URL keeps everything in memory,
	// which is the single-instance development mode.
	var (
		tx          storetx.StoreTx
		issuers     issuerservice.IssuerStore
		records     certservice.RecordStore
		allocator   sequence.Allocator
		tokenLedger ledger.TokenLedger
	)
	if cfg.Database.URL != "" {
		pool, err := database.New(cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		healthHandler.RegisterCheck("database", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})

		tx = storetx.NewPostgres(pool.DB())
		issuers = issuerstore.NewPostgres(pool.DB())
		records = certstore.NewPostgres(pool.DB())
		allocator = sequence.NewPostgres(pool.DB())
		tokenLedger = ledger.NewPostgres(pool.DB())
		log.Info("using postgres storage")
	} else {
		tx = storetx.NewInMemory()
		issuers = issuerstore.NewMemory()
		records = certstore.NewMemory()
		allocator = sequence.NewMemory()
		tokenLedger = ledger.NewMemory()
		log.Info("using in-memory storage")
	}

	// Redis replaces the token ledger only when postgres is not in play;
	// with postgres the mint must commit inside the record transaction.
	if cfg.Redis.URL != "" && cfg.Database.URL == "" {
		redisClient, err := platformredis.New(cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(checkCtx)
		})

		tokenLedger = ledger.NewRedis(redisClient.Client)
		log.Info("using redis token ledger")
	}

	// Notifications: always stored in process; kafka fan-out is optional and
	// delivered by a background worker so requests never block on the broker.
	group, groupCtx := errgroup.WithContext(ctx)

	notifierOpts := []events.Option{events.WithLogger(log)}
	if cfg.Kafka.Brokers != "" {
		kafkaProducer, err := producer.New(cfg.Kafka, log)
		if err != nil {
			return err
		}
		defer kafkaProducer.Close()
		healthHandler.RegisterCheck("kafka", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if !kafkaProducer.Healthy(checkCtx) {
				return errors.New("kafka unreachable")
			}
			return nil
		})

		inbox := make(chan events.Event, notificationInboxSize)
		notifierOpts = append(notifierOpts, events.WithSink(events.NewChannelSink(inbox, log)))
		worker := events.NewWorker(events.NewKafkaSink(kafkaProducer, cfg.Kafka.Topic), inbox)
		group.Go(func() error {
			// A broker failure stops fan-out but not the registry: the
			// in-process store keeps the durable copy and the kafka health
			// check reports the outage.
			if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("notification worker stopped", "error", err)
			}
			return nil
		})
		log.Info("kafka notification sink enabled", "topic", cfg.Kafka.Topic)
	}
	notifier := events.NewPublisher(events.NewInMemoryStore(), notifierOpts...)

	issuerSvc := issuerservice.New(owner, issuers, tx,
		issuerservice.WithLogger(log),
		issuerservice.WithNotifier(notifier),
		issuerservice.WithMetrics(issuermetrics.New()),
	)
	certSvc := certservice.New(records, issuerSvc, allocator, tokenLedger, tx,
		certservice.WithLogger(log),
		certservice.WithNotifier(notifier),
		certservice.WithMetrics(certmetrics.New()),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "certreg", "certreg-api")

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Health:         healthHandler,
		Certificates:   certhandler.New(certSvc, log),
		Issuers:        issuerhandler.New(issuerSvc, log),
		TokenValidator: jwttoken.NewJWTServiceAdapter(jwtService),
		OwnerIdentity:  owner,
		OwnerTokenHash: ownerTokenHash,
	})

	srv := httpserver.New(cfg.Addr, router)

	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
