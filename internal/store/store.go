package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/flixster/internal/config"
)

// ErrDisabled is returned by a nil Store.
var ErrDisabled = errors.New("store: snapshot storage disabled")

// Options controls connection-pool behaviour.
type Options struct {
	MaxConns    int32
	MinConns    int32
	ConnTimeout time.Duration
	Logger      *log.Logger
}

// OptionsFromConfig derives pool options from runtime configuration.
func OptionsFromConfig(cfg config.Config, logger *log.Logger) Options {
	return Options{
		MaxConns:    int32(cfg.DBMaxConns),
		MinConns:    int32(cfg.DBMinConns),
		ConnTimeout: time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		Logger:      logger,
	}
}

// Store owns the snapshot database pool. A nil *Store is valid and reports
// ErrDisabled, which is how the service runs without a database.
type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
	opts   Options
}

// Open connects to dbURL and verifies connectivity with Ping.
func Open(ctx context.Context, dbURL string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}

	connCtx := ctx
	if opts.ConnTimeout > 0 {
		var cancel context.CancelFunc
		connCtx, cancel = context.WithTimeout(ctx, opts.ConnTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Printf("store: snapshot database ready (max=%d, min=%d)", cfg.MaxConns, cfg.MinConns)
	return &Store{pool: pool, logger: logger, opts: opts}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.logger.Println("store: closing snapshot pool")
	s.pool.Close()
}

// HealthCheck verifies the database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return ErrDisabled
	}
	if s.opts.ConnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ConnTimeout)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

// Pool exposes the underlying pgx pool for repositories.
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}
