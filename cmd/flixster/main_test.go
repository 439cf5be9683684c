package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/flixster/internal/catalog"
	"github.com/Clark-Hu/flixster/internal/domain"
	"github.com/Clark-Hu/flixster/internal/tmdb"
)

type stubClient struct {
	movies  []domain.Movie
	keys    map[int]string
	listErr error
}

func (s stubClient) NowPlaying(ctx context.Context) ([]domain.Movie, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.movies, nil
}

func (s stubClient) TrailerKey(ctx context.Context, movieID int) (string, error) {
	key, ok := s.keys[movieID]
	if !ok {
		return "", tmdb.ErrNoTrailer
	}
	return key, nil
}

func newTerminal(out io.Writer, client tmdb.Client) (*terminal, *catalog.Adapter) {
	return newTerminalWithLog(out, io.Discard, client)
}

func newTerminalWithLog(out, logOut io.Writer, client tmdb.Client) (*terminal, *catalog.Adapter) {
	logger := log.New(logOut, "", 0)
	term := &terminal{ctx: context.Background(), out: out, client: client, imageBase: "http://img/", timeout: time.Second, logger: logger}
	adapter := catalog.NewAdapter(nil, catalog.Options{ImageBaseURL: "http://img/", Navigator: term, Logger: logger})
	return term, adapter
}

func TestTerminal_ListAndDetail(t *testing.T) {
	client := stubClient{
		movies: []domain.Movie{
			{ID: 1, Title: "Big", PosterPath: "/p1.jpg", BackdropPath: "/b1.jpg", Rating: 9},
			{ID: 2, Title: "Small", Overview: "tiny", PosterPath: "/p2.jpg", BackdropPath: "/b2.jpg", Rating: 3},
		},
		keys: map[int]string{2: "trailer-2"},
	}
	var out bytes.Buffer
	term, adapter := newTerminal(&out, client)

	term.open(adapter)
	require.Equal(t, 2, adapter.Count())

	term.printList(adapter)
	require.Contains(t, out.String(), "[popular]")
	require.Contains(t, out.String(), "http://img/b1.jpg")
	require.Contains(t, out.String(), "http://img/p2.jpg")

	out.Reset()
	require.True(t, term.tapMovie(adapter, 2))
	require.Contains(t, out.String(), "Small (3.0/10)")
	require.Contains(t, out.String(), "https://www.youtube.com/embed/trailer-2")

	out.Reset()
	require.True(t, term.tapMovie(adapter, 1))
	require.NotContains(t, out.String(), "trailer:")

	require.False(t, term.tapMovie(adapter, 42))
}

func TestTerminal_FetchFailureIsLoggedAndListIsEmpty(t *testing.T) {
	var out, logs bytes.Buffer
	term, adapter := newTerminalWithLog(&out, &logs, stubClient{listErr: fmt.Errorf("%w: status 503", tmdb.ErrNetworkFailure)})

	term.open(adapter)
	require.Equal(t, 0, adapter.Count())
	require.Contains(t, logs.String(), "fetch catalog")
	require.Contains(t, logs.String(), "status 503")

	term.printList(adapter)
	require.Empty(t, out.String())
}
