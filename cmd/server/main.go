package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gescom/internal/config"
	"gescom/internal/infra"
	"gescom/internal/repository"
	"gescom/internal/router"
	"gescom/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Env != "production")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	if cfg.Migrations {
		err = infra.Migrate(cfg.DatabaseURL, cfg.MigrationsDir)
	} else {
		err = infra.AutoMigrate(db)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: without it stock listings are not cached and
	// documents cannot be dispatched.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, async dispatch disabled")
			rdb = nil
		}
	}

	mailer := infra.NewMailer(cfg)
	if !mailer.Configured() {
		log.Warn().Msg("SMTP_HOST not set, document emails will land in the DLQ")
	}
	smtpCB := infra.NewCircuitBreaker(infra.SMTPBreakerConfig())

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	if rdb != nil {
		dispatcher := worker.NewDispatcher(rdb)
		workerHandlers := &worker.WorkerHandlers{
			Document: worker.NewDocumentWorker(
				repository.NewBonCommandeRepository(db),
				repository.NewBonLivraisonRepository(db),
				dispatcher,
				cfg.PDFStoragePath,
				cfg.RaisonSociale,
			),
			Email: worker.NewEmailWorker(mailer, smtpCB),
		}
		worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
		worker.StartRelanceCron(ctx, worker.RelanceCronConfig{RDB: rdb, CB: smtpCB})
	}

	r := router.New(ctx, cfg, db, rdb, smtpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("gescom listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
