package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/flixster/internal/catalog"
	"github.com/Clark-Hu/flixster/internal/domain"
	"github.com/Clark-Hu/flixster/internal/repository"
	"github.com/Clark-Hu/flixster/internal/tmdb"
)

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type listScreenResponse struct {
	Count int                `json:"count"`
	Items []listItemResponse `json:"items"`
}

type listItemResponse struct {
	Position int         `json:"position"`
	Kind     domain.Kind `json:"kind"`
	Title    string      `json:"title,omitempty"`
	Overview string      `json:"overview,omitempty"`
	Image    string      `json:"image"`
	Detail   string      `json:"detail"`
}

type detailScreenResponse struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Overview    string           `json:"overview"`
	Rating      float64          `json:"rating"`
	Stars       float32          `json:"stars"`
	PosterURL   string           `json:"posterUrl"`
	BackdropURL string           `json:"backdropUrl"`
	Trailer     *trailerResponse `json:"trailer,omitempty"`
}

type trailerResponse struct {
	Key      string `json:"key"`
	EmbedURL string `json:"embedUrl"`
}

// detailLink records where the last tapped container navigates to.
type detailLink struct {
	target string
}

func (d *detailLink) OpenDetail(movie domain.Movie) {
	d.target = detailPath(movie)
}

func (s *Server) handleListScreen(w http.ResponseWriter, r *http.Request) {
	orientation, err := domain.ParseOrientation(r.URL.Query().Get("orientation"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	link := &detailLink{}
	adapter := catalog.NewAdapter(nil, catalog.Options{
		ImageBaseURL: s.cfg.ImageBaseURL,
		Orientation:  func() domain.Orientation { return orientation },
		Navigator:    link,
		Logger:       s.logger,
	})

	ctx, cancel := s.upstreamContext(r.Context())
	defer cancel()

	movies, err := s.catalog.NowPlaying(ctx)
	if err != nil {
		// Nothing further is shown; the screen stays empty.
		s.logger.Printf("list screen: fetch catalog: %v", err)
		s.respondJSON(w, http.StatusOK, listScreenResponse{Items: []listItemResponse{}})
		return
	}
	adapter.Replace(movies)
	s.saveSnapshot(r.Context(), movies)

	containers := adapter.Render()
	items := make([]listItemResponse, 0, len(containers))
	for i, c := range containers {
		item := listItemResponse{Position: i, Kind: c.Kind()}
		switch v := c.(type) {
		case *catalog.PopularContainer:
			item.Image = v.Image
		case *catalog.NormalContainer:
			item.Title = v.Title
			item.Overview = v.Overview
			item.Image = v.Image
		}
		link.target = ""
		if c.Tap() {
			item.Detail = link.target
		}
		items = append(items, item)
	}

	s.respondJSON(w, http.StatusOK, listScreenResponse{Count: adapter.Count(), Items: items})
}

func (s *Server) saveSnapshot(ctx context.Context, movies []domain.Movie) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.ReplaceSnapshot(ctx, movies); err != nil {
		s.logger.Printf("list screen: save snapshot: %v", err)
	}
}

func (s *Server) handleDetailScreen(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || !validMovieID(id) {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid movie id")
		return
	}

	movie, status, err := s.resolveDetailRecord(r, id)
	if err != nil {
		switch status {
		case http.StatusBadRequest:
			s.respondError(w, status, "BAD_REQUEST", err.Error())
		case http.StatusNotFound:
			s.respondError(w, status, "NOT_FOUND", "Resource not found")
		default:
			s.logger.Printf("detail screen: load movie %d: %v", id, err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load movie")
		}
		return
	}

	resp := detailScreenResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		Overview:    movie.Overview,
		Rating:      movie.Rating,
		Stars:       ratingToStars(movie.Rating),
		PosterURL:   movie.PosterURL(s.cfg.ImageBaseURL),
		BackdropURL: movie.BackdropURL(s.cfg.ImageBaseURL),
	}

	ctx, cancel := s.upstreamContext(r.Context())
	defer cancel()

	key, err := s.catalog.TrailerKey(ctx, movie.ID)
	switch {
	case err == nil:
		trailer := domain.Trailer{MovieID: movie.ID, Key: key}
		resp.Trailer = &trailerResponse{Key: trailer.Key, EmbedURL: trailer.EmbedURL()}
	case errors.Is(err, tmdb.ErrNoTrailer):
	default:
		s.logger.Printf("detail screen: fetch trailer for %d: %v", movie.ID, err)
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// resolveDetailRecord prefers the record carried by the link and falls back
// to the stored snapshot.
func (s *Server) resolveDetailRecord(r *http.Request, id int) (domain.Movie, int, error) {
	if token := strings.TrimSpace(r.URL.Query().Get("record")); token != "" {
		movie, err := DecodeRecordToken(token)
		if err != nil {
			return domain.Movie{}, http.StatusBadRequest, err
		}
		if movie.ID != id {
			return domain.Movie{}, http.StatusBadRequest, fmt.Errorf("record does not match movie id")
		}
		return movie, http.StatusOK, nil
	}

	if s.snapshots == nil {
		return domain.Movie{}, http.StatusNotFound, repository.ErrNotFound
	}
	movie, err := s.snapshots.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Movie{}, http.StatusNotFound, err
		}
		return domain.Movie{}, http.StatusInternalServerError, err
	}
	return movie, http.StatusOK, nil
}

func (s *Server) upstreamContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.TMDBTimeoutSecs <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, time.Duration(s.cfg.TMDBTimeoutSecs)*time.Second)
}

func detailPath(movie domain.Movie) string {
	token, err := EncodeRecordToken(movie)
	if err != nil {
		return fmt.Sprintf("/movies/%d", movie.ID)
	}
	return fmt.Sprintf("/movies/%d?record=%s", movie.ID, url.QueryEscape(token))
}

// EncodeRecordToken serializes a movie into an opaque URL-safe token.
func EncodeRecordToken(movie domain.Movie) (string, error) {
	payload, err := json.Marshal(movie)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// DecodeRecordToken parses a token produced by EncodeRecordToken. Any record
// the catalog mapper accepts round-trips, including empty titles and
// non-positive ids; the caller matches the id against the path.
func DecodeRecordToken(token string) (domain.Movie, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("invalid record: %w", err)
	}
	var movie domain.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		return domain.Movie{}, fmt.Errorf("invalid record payload: %w", err)
	}
	if !validMovieID(movie.ID) {
		return domain.Movie{}, fmt.Errorf("invalid record payload: id out of range")
	}
	return movie, nil
}

// validMovieID mirrors the catalog mapper's id range.
func validMovieID(id int) bool {
	return id >= math.MinInt32 && id <= math.MaxInt32
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// ratingToStars maps the 0-10 catalog rating onto a five star bar.
func ratingToStars(rating float64) float32 {
	return roundToOneDecimal(float32(rating / 2))
}

func roundToOneDecimal(value float32) float32 {
	return float32(math.Round(float64(value)*10) / 10.0)
}
