package catalog

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/flixster/internal/domain"
)

func movieWithRating(id int, rating float64) domain.Movie {
	return domain.Movie{
		ID:           id,
		Title:        "Movie",
		Overview:     "Overview",
		PosterPath:   "/poster.jpg",
		BackdropPath: "/backdrop.jpg",
		Rating:       rating,
	}
}

func newTestAdapter(movies []domain.Movie, opts Options) *Adapter {
	opts.Logger = log.New(io.Discard, "", 0)
	return NewAdapter(movies, opts)
}

func TestViewKindFor_Threshold(t *testing.T) {
	a := newTestAdapter([]domain.Movie{
		movieWithRating(1, 7.0),
		movieWithRating(2, 6.5),
		movieWithRating(3, 6.4),
		movieWithRating(4, 6.5000001),
	}, Options{})

	want := []domain.Kind{domain.KindPopular, domain.KindNormal, domain.KindNormal, domain.KindPopular}
	for i, w := range want {
		got, err := a.ViewKindFor(i)
		require.NoError(t, err)
		require.Equal(t, w, got, "position %d", i)
	}

	_, err := a.ViewKindFor(4)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = a.ViewKindFor(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCount_TracksReplace(t *testing.T) {
	a := newTestAdapter(nil, Options{})
	require.Equal(t, 0, a.Count())

	batch := []domain.Movie{movieWithRating(1, 1), movieWithRating(2, 2), movieWithRating(3, 3)}
	a.Replace(batch)
	require.Equal(t, 3, a.Count())

	// The adapter keeps its own copy of the list.
	batch[0].Title = "changed"
	got, err := a.Record(0)
	require.NoError(t, err)
	require.Equal(t, "Movie", got.Title)

	a.Replace(batch[:1])
	require.Equal(t, 1, a.Count())
	a.Replace(nil)
	require.Equal(t, 0, a.Count())
}

func TestCreateContainer(t *testing.T) {
	a := newTestAdapter(nil, Options{})
	require.IsType(t, &PopularContainer{}, a.CreateContainer(domain.KindPopular))
	require.IsType(t, &NormalContainer{}, a.CreateContainer(domain.KindNormal))

	first := a.CreateContainer(domain.KindNormal)
	second := a.CreateContainer(domain.KindNormal)
	require.NotSame(t, first, second)
}

func TestBind_NormalOrientation(t *testing.T) {
	orientation := domain.OrientationPortrait
	a := newTestAdapter(nil, Options{
		ImageBaseURL: "http://img.local/w342",
		Orientation:  func() domain.Orientation { return orientation },
	})
	movie := movieWithRating(10, 5.0)

	c := a.CreateContainer(domain.KindNormal).(*NormalContainer)
	require.NoError(t, a.Bind(c, movie))
	require.Equal(t, "Movie", c.Title)
	require.Equal(t, "Overview", c.Overview)
	require.Equal(t, "http://img.local/w342/poster.jpg", c.Image)

	orientation = domain.OrientationLandscape
	require.NoError(t, a.Bind(c, movie))
	require.Equal(t, "http://img.local/w342/backdrop.jpg", c.Image)
}

func TestBind_PopularUsesBackdrop(t *testing.T) {
	a := newTestAdapter(nil, Options{})
	c := a.CreateContainer(domain.KindPopular).(*PopularContainer)
	require.NoError(t, a.Bind(c, movieWithRating(3, 8.2)))
	require.Equal(t, "https://image.tmdb.org/t/p/w342/backdrop.jpg", c.Image)
}

func TestBind_KindMismatch(t *testing.T) {
	a := newTestAdapter(nil, Options{})
	err := a.Bind(a.CreateContainer(domain.KindPopular), movieWithRating(1, 2.0))
	require.ErrorIs(t, err, ErrKindMismatch)
}

func TestBind_TapNavigatesWithCopy(t *testing.T) {
	var opened []domain.Movie
	a := newTestAdapter(nil, Options{
		Navigator: NavigatorFunc(func(m domain.Movie) { opened = append(opened, m) }),
	})

	c := a.CreateContainer(domain.KindNormal)
	require.False(t, c.Tap())

	movie := movieWithRating(42, 3.0)
	require.NoError(t, a.Bind(c, movie))
	movie.Title = "mutated after bind"

	require.True(t, c.Tap())
	require.Len(t, opened, 1)
	require.Equal(t, 42, opened[0].ID)
	require.Equal(t, "Movie", opened[0].Title)
}

func TestRender_KeepsReceivedOrder(t *testing.T) {
	a := newTestAdapter([]domain.Movie{
		movieWithRating(1, 2.0),
		movieWithRating(2, 9.0),
		movieWithRating(3, 6.5),
	}, Options{})

	containers := a.Render()
	require.Len(t, containers, a.Count())
	require.Equal(t, domain.KindNormal, containers[0].Kind())
	require.Equal(t, domain.KindPopular, containers[1].Kind())
	require.Equal(t, domain.KindNormal, containers[2].Kind())
}

func TestSnippet(t *testing.T) {
	require.Equal(t, "short", snippet("short", 10))
	long := strings.Repeat("é", 12)
	got := snippet(long, 10)
	require.Equal(t, strings.Repeat("é", 10)+"…", got)
}
