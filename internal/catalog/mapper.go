package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/Clark-Hu/flixster/internal/domain"
)

// ErrMalformedRecord is returned when a movie object cannot be mapped.
var ErrMalformedRecord = errors.New("catalog: malformed record")

// BatchPolicy decides what happens to a batch containing a malformed element.
type BatchPolicy int

const (
	// FailFast aborts the whole batch on the first malformed element.
	FailFast BatchPolicy = iota
	// SkipMalformed drops malformed elements and keeps the rest in order.
	SkipMalformed
)

// BatchResult is the outcome of mapping a catalog envelope.
type BatchResult struct {
	Movies  []domain.Movie
	Skipped int
}

// MovieFromJSON maps a single movie object.
func MovieFromJSON(raw []byte) (domain.Movie, error) {
	if !gjson.ValidBytes(raw) {
		return domain.Movie{}, fmt.Errorf("%w: invalid json", ErrMalformedRecord)
	}
	return movieFromResult(gjson.ParseBytes(raw))
}

// MoviesFromJSONArray maps an array of movie objects in order. The first
// malformed element aborts the batch.
func MoviesFromJSONArray(raw []byte) ([]domain.Movie, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedRecord)
	}
	res, err := mapArray(gjson.ParseBytes(raw), FailFast)
	if err != nil {
		return nil, err
	}
	return res.Movies, nil
}

// MoviesFromResults maps the "results" array of a catalog response body.
func MoviesFromResults(raw []byte, policy BatchPolicy) (BatchResult, error) {
	if !gjson.ValidBytes(raw) {
		return BatchResult{}, fmt.Errorf("%w: invalid json", ErrMalformedRecord)
	}
	results := gjson.GetBytes(raw, "results")
	if !results.Exists() {
		return BatchResult{}, fmt.Errorf("%w: missing results array", ErrMalformedRecord)
	}
	return mapArray(results, policy)
}

func mapArray(arr gjson.Result, policy BatchPolicy) (BatchResult, error) {
	if !arr.IsArray() {
		return BatchResult{}, fmt.Errorf("%w: expected array", ErrMalformedRecord)
	}
	elems := arr.Array()
	out := BatchResult{Movies: make([]domain.Movie, 0, len(elems))}
	for i, elem := range elems {
		movie, err := movieFromResult(elem)
		if err != nil {
			if policy == SkipMalformed {
				out.Skipped++
				continue
			}
			return BatchResult{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.Movies = append(out.Movies, movie)
	}
	return out, nil
}

func movieFromResult(obj gjson.Result) (domain.Movie, error) {
	if !obj.IsObject() {
		return domain.Movie{}, fmt.Errorf("%w: expected object", ErrMalformedRecord)
	}

	var (
		movie domain.Movie
		err   error
	)
	if movie.PosterPath, err = requireString(obj, "poster_path"); err != nil {
		return domain.Movie{}, err
	}
	if movie.BackdropPath, err = requireString(obj, "backdrop_path"); err != nil {
		return domain.Movie{}, err
	}
	if movie.Title, err = requireString(obj, "title"); err != nil {
		return domain.Movie{}, err
	}
	if movie.Overview, err = requireString(obj, "overview"); err != nil {
		return domain.Movie{}, err
	}
	if movie.Rating, err = requireNumber(obj, "vote_average"); err != nil {
		return domain.Movie{}, err
	}
	id, err := requireNumber(obj, "id")
	if err != nil {
		return domain.Movie{}, err
	}
	if id != math.Trunc(id) || math.Abs(id) > math.MaxInt32 {
		return domain.Movie{}, fmt.Errorf("%w: field %q is not an integer", ErrMalformedRecord, "id")
	}
	movie.ID = int(id)
	return movie, nil
}

func requireString(obj gjson.Result, field string) (string, error) {
	val := obj.Get(field)
	if !val.Exists() {
		return "", fmt.Errorf("%w: missing field %q", ErrMalformedRecord, field)
	}
	if val.Type != gjson.String {
		return "", fmt.Errorf("%w: field %q is %s, want string", ErrMalformedRecord, field, val.Type)
	}
	return val.Str, nil
}

func requireNumber(obj gjson.Result, field string) (float64, error) {
	val := obj.Get(field)
	if !val.Exists() {
		return 0, fmt.Errorf("%w: missing field %q", ErrMalformedRecord, field)
	}
	if val.Type != gjson.Number {
		return 0, fmt.Errorf("%w: field %q is %s, want number", ErrMalformedRecord, field, val.Type)
	}
	if math.IsInf(val.Num, 0) || math.IsNaN(val.Num) {
		return 0, fmt.Errorf("%w: field %q is not a finite number", ErrMalformedRecord, field)
	}
	return val.Num, nil
}
