package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Clark-Hu/flixster/internal/catalog"
	"github.com/Clark-Hu/flixster/internal/domain"
)

const maxResponseBody = 4 << 20 // 4 MiB

var (
	// ErrNetworkFailure wraps transport errors and unexpected upstream statuses.
	ErrNetworkFailure = errors.New("tmdb: network failure")
	// ErrNotFound is returned when upstream has no such movie.
	ErrNotFound = errors.New("tmdb: not found")
	// ErrNoTrailer is returned when a movie has no videos.
	ErrNoTrailer = errors.New("tmdb: no trailer")
)

// Client defines the contract for querying the upstream catalog API.
type Client interface {
	NowPlaying(ctx context.Context) ([]domain.Movie, error)
	TrailerKey(ctx context.Context, movieID int) (string, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	policy  catalog.BatchPolicy
	client  *http.Client
	logger  *log.Logger
}

// Option tweaks an HTTPClient.
type Option func(*HTTPClient)

// WithBatchPolicy sets how malformed catalog entries are handled.
func WithBatchPolicy(policy catalog.BatchPolicy) Option {
	return func(c *HTTPClient) { c.policy = policy }
}

// NewHTTPClient constructs a new HTTP-backed catalog client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *log.Logger, opts ...Option) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse tmdb url: %q is not absolute", baseURL)
	}
	c := &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		policy:  catalog.FailFast,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NowPlaying fetches the current catalog listing.
func (c *HTTPClient) NowPlaying(ctx context.Context) ([]domain.Movie, error) {
	body, err := c.get(ctx, "movie/now_playing")
	if err != nil {
		return nil, err
	}
	result, err := catalog.MoviesFromResults(body, c.policy)
	if err != nil {
		return nil, fmt.Errorf("decode now playing: %w", err)
	}
	if result.Skipped > 0 {
		c.logger.Printf("tmdb: skipped %d malformed catalog entries", result.Skipped)
	}
	return result.Movies, nil
}

// TrailerKey returns the video key of the first video listed for movieID.
func (c *HTTPClient) TrailerKey(ctx context.Context, movieID int) (string, error) {
	body, err := c.get(ctx, "movie/"+strconv.Itoa(movieID)+"/videos")
	if err != nil {
		return "", err
	}
	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return "", fmt.Errorf("decode videos: %w: missing results array", catalog.ErrMalformedRecord)
	}
	first := results.Get("0")
	if !first.Exists() {
		return "", ErrNoTrailer
	}
	key := first.Get("key")
	if key.Type != gjson.String || key.Str == "" {
		return "", fmt.Errorf("decode videos: %w: field %q", catalog.ErrMalformedRecord, "key")
	}
	return key.Str, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + "/" + path
	q := endpoint.Query()
	q.Set("api_key", c.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrNetworkFailure, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Printf("tmdb: unexpected status %d for %s", resp.StatusCode, path)
		return nil, fmt.Errorf("%w: upstream returned %d", ErrNetworkFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrNetworkFailure, path, err)
	}
	return body, nil
}
