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

	"github.com/joho/godotenv"

	"github.com/Clark-Hu/flixster/db"
	"github.com/Clark-Hu/flixster/internal/catalog"
	"github.com/Clark-Hu/flixster/internal/config"
	httpserver "github.com/Clark-Hu/flixster/internal/http"
	"github.com/Clark-Hu/flixster/internal/repository"
	"github.com/Clark-Hu/flixster/internal/store"
	"github.com/Clark-Hu/flixster/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[flixster] ", log.LstdFlags|log.Lshortfile)

	policy := catalog.FailFast
	if cfg.SkipMalformed {
		policy = catalog.SkipMalformed
	}
	catalogClient, err := tmdb.NewHTTPClient(cfg.TMDBURL, cfg.TMDBAPIKey, time.Duration(cfg.TMDBTimeoutSecs)*time.Second, logger, tmdb.WithBatchPolicy(policy))
	if err != nil {
		log.Fatalf("init catalog client: %v", err)
	}

	var (
		st        *store.Store
		snapshots httpserver.SnapshotRepository
	)
	if cfg.SnapshotEnabled() {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		st, err = store.Open(dbCtx, cfg.DBURL, store.OptionsFromConfig(cfg, logger))
		if err == nil {
			err = db.Migrate(dbCtx, st.Pool())
		}
		cancel()
		if err != nil {
			log.Fatalf("snapshot database: %v", err)
		}
		defer st.Close()
		snapshots = repository.New(st).Movies
	} else {
		logger.Println("DB_URL not set, running without snapshot storage")
	}

	server := httpserver.New(cfg, st, snapshots, catalogClient, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
