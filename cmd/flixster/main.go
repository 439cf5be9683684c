package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Clark-Hu/flixster/internal/catalog"
	"github.com/Clark-Hu/flixster/internal/config"
	"github.com/Clark-Hu/flixster/internal/domain"
	"github.com/Clark-Hu/flixster/internal/tmdb"
)

func main() {
	var (
		detailID  = flag.Int("detail", 0, "open the detail view of the movie with this id")
		landscape = flag.Bool("landscape", false, "render normal rows with backdrops instead of posters")
		verbose   = flag.Bool("v", false, "add timestamps and source locations to stderr logs")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stderr, "[flixster] ", 0)
	if *verbose {
		logger.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := catalog.FailFast
	if cfg.SkipMalformed {
		policy = catalog.SkipMalformed
	}
	timeout := time.Duration(cfg.TMDBTimeoutSecs) * time.Second
	client, err := tmdb.NewHTTPClient(cfg.TMDBURL, cfg.TMDBAPIKey, timeout, logger, tmdb.WithBatchPolicy(policy))
	if err != nil {
		log.Fatalf("init catalog client: %v", err)
	}

	orientation := domain.OrientationPortrait
	if *landscape {
		orientation = domain.OrientationLandscape
	}

	screen := &terminal{ctx: ctx, out: os.Stdout, client: client, imageBase: cfg.ImageBaseURL, timeout: timeout, logger: logger}
	adapter := catalog.NewAdapter(nil, catalog.Options{
		ImageBaseURL: cfg.ImageBaseURL,
		Orientation:  func() domain.Orientation { return orientation },
		Navigator:    screen,
		Logger:       logger,
	})

	screen.open(adapter)

	if *detailID == 0 {
		screen.printList(adapter)
		return
	}
	if !screen.tapMovie(adapter, *detailID) {
		fmt.Fprintf(os.Stderr, "movie %d is not in the current listing\n", *detailID)
		os.Exit(1)
	}
}

// terminal renders the list and detail views as plain text.
type terminal struct {
	ctx       context.Context
	out       io.Writer
	client    tmdb.Client
	imageBase string
	timeout   time.Duration
	logger    *log.Logger
}

// open loads the listing into adapter. A failed fetch is logged and leaves
// the listing empty.
func (t *terminal) open(adapter *catalog.Adapter) {
	ctx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()

	movies, err := t.client.NowPlaying(ctx)
	if err != nil {
		t.logger.Printf("fetch catalog: %v", err)
		adapter.Replace(nil)
		return
	}
	adapter.Replace(movies)
}

func (t *terminal) printList(adapter *catalog.Adapter) {
	for i, c := range adapter.Render() {
		movie, _ := adapter.Record(i)
		switch v := c.(type) {
		case *catalog.PopularContainer:
			fmt.Fprintf(t.out, "%3d [%-7s] %-6d %s\n", i, c.Kind(), movie.ID, v.Image)
		case *catalog.NormalContainer:
			fmt.Fprintf(t.out, "%3d [%-7s] %-6d %s\n    %s\n    %s\n", i, c.Kind(), movie.ID, v.Title, v.Overview, v.Image)
		}
	}
}

func (t *terminal) tapMovie(adapter *catalog.Adapter, id int) bool {
	for i, c := range adapter.Render() {
		movie, err := adapter.Record(i)
		if err != nil || movie.ID != id {
			continue
		}
		return c.Tap()
	}
	return false
}

// OpenDetail implements catalog.Navigator.
func (t *terminal) OpenDetail(movie domain.Movie) {
	fmt.Fprintf(t.out, "%s (%.1f/10)\n%s\nposter:   %s\nbackdrop: %s\n",
		movie.Title, movie.Rating, movie.Overview, movie.PosterURL(t.imageBase), movie.BackdropURL(t.imageBase))

	ctx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()

	key, err := t.client.TrailerKey(ctx, movie.ID)
	if err != nil {
		t.logger.Printf("fetch trailer for %d: %v", movie.ID, err)
		return
	}
	fmt.Fprintf(t.out, "trailer:  %s\n", domain.Trailer{MovieID: movie.ID, Key: key}.EmbedURL())
}
