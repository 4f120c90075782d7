// Package application assembles the ranking service from configuration.
// The HTTP server and the operator CLI share this wiring.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"hirehub-ranking/internal/config"
	"hirehub-ranking/internal/domain/ports/adapter"
	"hirehub-ranking/internal/infra/adapters/blob"
	"hirehub-ranking/internal/infra/adapters/events"
	"hirehub-ranking/internal/infra/adapters/parser"
	"hirehub-ranking/internal/infra/adapters/scoring"
	pg "hirehub-ranking/internal/infra/db/postgres"
	red "hirehub-ranking/internal/infra/redis"
	"hirehub-ranking/internal/infra/worker"
	"hirehub-ranking/internal/usecase"
)

type App struct {
	Config *config.Config
	Log    *zerolog.Logger

	Pool    *pgxpool.Pool
	Redis   red.RedisClient
	Limiter *red.RateLimiter
	Workers *worker.Pool
	Events  adapter.StatusPublisher

	Ranking usecase.RankingUseCase
	Status  usecase.StatusUseCase
	Resumes usecase.ResumeUseCase

	closers []func() error
}

// New connects Postgres and Redis and builds the use cases. Object storage,
// the resume parser and the event queue are optional; when unset, resume
// processing is unavailable and status events are only logged.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: logger}

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}
	a.Pool = pool
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	rc, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.Redis = rc
	a.closers = append(a.closers, rc.Close)
	a.Limiter = red.NewRateLimiter(rc)

	scorer, err := scoring.New(ctx, cfg.Scoring, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("scoring: %w", err)
	}

	var blobs adapter.BlobStore
	if cfg.Storage.Bucket != "" {
		s3, err := blob.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("storage: %w", err)
		}
		blobs = s3
	} else {
		logger.Warn().Msg("storage.bucket not set; resume files unavailable")
	}

	var resumeParser adapter.ResumeParser
	if cfg.Parser.Endpoint != "" {
		p, err := parser.NewHTTPParser(cfg.Parser.Endpoint, cfg.Parser.Timeout)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parser: %w", err)
		}
		resumeParser = p
	}

	if cfg.Events.AMQPURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Queue, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("events: %w", err)
		}
		a.Events = pub
	} else {
		a.Events = events.NewNoopPublisher(logger)
	}
	a.closers = append(a.closers, a.Events.Close)

	a.Workers = worker.NewPool(cfg.Ranking.Workers, cfg.Ranking.QueueSize, logger)

	jobs := pg.NewJobRepo(pool)
	applicants := pg.NewApplicantRepo(pool)
	resumes := pg.NewResumeRepo(pool)
	cache := red.NewStatusCache(rc, cfg.Redis.StatusTTL, cfg.Redis.ResultsTTL)

	a.Ranking = usecase.NewRankingUseCase(usecase.RankingDeps{
		Tx:         pg.NewTxManager(pool),
		Jobs:       jobs,
		Applicants: applicants,
		Resumes:    resumes,
		Cache:      cache,
		Locker:     red.NewLocker(rc),
		Scorer:     scorer,
		Blobs:      blobs,
		Events:     a.Events,
		Runner:     a.Workers,
	}, cfg.Ranking, logger)
	a.Status = usecase.NewStatusUseCase(jobs, applicants, resumes, cache, logger)
	a.Resumes = usecase.NewResumeUseCase(resumes, cache, blobs, resumeParser, a.Workers, logger)
	return a, nil
}

// Start launches the background workers and the pool stats exporter.
func (a *App) Start(ctx context.Context) {
	a.Workers.Start(ctx)
	go pg.ExportPoolStats(ctx, a.Pool, 15*time.Second, a.Log)
}

// Close stops the workers, waiting for running tasks, then releases
// connections in reverse order of creation.
func (a *App) Close() error {
	if a.Workers != nil {
		a.Workers.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
