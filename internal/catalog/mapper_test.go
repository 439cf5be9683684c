package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const movieJSON = `{
	"poster_path": "/poster.jpg",
	"backdrop_path": "/backdrop.jpg",
	"title": "Arrival",
	"overview": "Linguist meets heptapods.",
	"vote_average": 7.6,
	"id": 329865,
	"adult": false
}`

func TestMovieFromJSON_ReadsBackAllFields(t *testing.T) {
	movie, err := MovieFromJSON([]byte(movieJSON))
	require.NoError(t, err)

	require.Equal(t, 329865, movie.ID)
	require.Equal(t, "Arrival", movie.Title)
	require.Equal(t, "Linguist meets heptapods.", movie.Overview)
	require.Equal(t, "/poster.jpg", movie.PosterPath)
	require.Equal(t, "/backdrop.jpg", movie.BackdropPath)
	require.InDelta(t, 7.6, movie.Rating, 1e-9)
}

func TestMovieFromJSON_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		patch func(m map[string]any)
		field string
	}{
		{"missing title", func(m map[string]any) { delete(m, "title") }, "title"},
		{"missing poster", func(m map[string]any) { delete(m, "poster_path") }, "poster_path"},
		{"null backdrop", func(m map[string]any) { m["backdrop_path"] = nil }, "backdrop_path"},
		{"numeric overview", func(m map[string]any) { m["overview"] = 12 }, "overview"},
		{"string rating", func(m map[string]any) { m["vote_average"] = "7.1" }, "vote_average"},
		{"missing id", func(m map[string]any) { delete(m, "id") }, "id"},
		{"fractional id", func(m map[string]any) { m["id"] = 12.5 }, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj map[string]any
			require.NoError(t, json.Unmarshal([]byte(movieJSON), &obj))
			tt.patch(obj)
			raw, err := json.Marshal(obj)
			require.NoError(t, err)

			_, err = MovieFromJSON(raw)
			require.ErrorIs(t, err, ErrMalformedRecord)
			require.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestMovieFromJSON_NotAnObject(t *testing.T) {
	for _, raw := range []string{`[]`, `"title"`, `{"title":`, ``} {
		_, err := MovieFromJSON([]byte(raw))
		require.ErrorIs(t, err, ErrMalformedRecord, "input %q", raw)
	}
}

func TestMovieFromJSON_RejectsOverflowingNumbers(t *testing.T) {
	for _, tt := range []struct{ raw, field string }{
		{`{"poster_path":"/p","backdrop_path":"/b","title":"x","overview":"","vote_average":1e400,"id":1}`, "vote_average"},
		{`{"poster_path":"/p","backdrop_path":"/b","title":"x","overview":"","vote_average":-1e400,"id":1}`, "vote_average"},
		{`{"poster_path":"/p","backdrop_path":"/b","title":"x","overview":"","vote_average":5,"id":1e400}`, "id"},
	} {
		_, err := MovieFromJSON([]byte(tt.raw))
		require.ErrorIs(t, err, ErrMalformedRecord, "input %s", tt.raw)
		require.Contains(t, err.Error(), tt.field)
	}
}

func TestMovieFromJSON_AcceptsEmptyTitleAndNonPositiveID(t *testing.T) {
	movie, err := MovieFromJSON([]byte(`{"poster_path":"/p","backdrop_path":"/b","title":"","overview":"","vote_average":5,"id":0}`))
	require.NoError(t, err)
	require.Equal(t, 0, movie.ID)
	require.Empty(t, movie.Title)

	movie, err = MovieFromJSON([]byte(`{"poster_path":"/p","backdrop_path":"/b","title":"t","overview":"","vote_average":5,"id":-3}`))
	require.NoError(t, err)
	require.Equal(t, -3, movie.ID)
}

func TestMoviesFromJSONArray_PreservesLengthAndOrder(t *testing.T) {
	var parts []string
	for i := 1; i <= 5; i++ {
		parts = append(parts, fmt.Sprintf(`{"poster_path":"/p%d","backdrop_path":"/b%d","title":"Movie %d","overview":"","vote_average":%d,"id":%d}`, i, i, i, i, i))
	}
	raw := "[" + strings.Join(parts, ",") + "]"

	movies, err := MoviesFromJSONArray([]byte(raw))
	require.NoError(t, err)
	require.Len(t, movies, 5)
	for i, m := range movies {
		require.Equal(t, i+1, m.ID)
	}

	empty, err := MoviesFromJSONArray([]byte(`[]`))
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMoviesFromJSONArray_FailFast(t *testing.T) {
	raw := `[` + movieJSON + `,{"title":"broken"},` + movieJSON + `]`

	movies, err := MoviesFromJSONArray([]byte(raw))
	require.ErrorIs(t, err, ErrMalformedRecord)
	require.Contains(t, err.Error(), "element 1")
	require.Nil(t, movies)

	_, err = MoviesFromJSONArray([]byte(movieJSON))
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestMoviesFromResults_Policies(t *testing.T) {
	raw := []byte(`{"page":1,"results":[` + movieJSON + `,{"title":"broken"},` + movieJSON + `]}`)

	_, err := MoviesFromResults(raw, FailFast)
	require.ErrorIs(t, err, ErrMalformedRecord)

	res, err := MoviesFromResults(raw, SkipMalformed)
	require.NoError(t, err)
	require.Len(t, res.Movies, 2)
	require.Equal(t, 1, res.Skipped)

	_, err = MoviesFromResults([]byte(`{"page":1}`), FailFast)
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func FuzzMovieFromJSON(f *testing.F) {
	f.Add([]byte(movieJSON))
	f.Add([]byte(`{"title":1}`))
	f.Add([]byte(`[]`))

	f.Fuzz(func(t *testing.T, raw []byte) {
		movie, err := MovieFromJSON(raw)
		if err != nil {
			require.ErrorIs(t, err, ErrMalformedRecord)
			return
		}
		require.Equal(t, float64(movie.ID), float64(int32(movie.ID)))
	})
}
