package catalog

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/Clark-Hu/flixster/internal/domain"
)

// PopularThreshold is the rating a movie must exceed to be shown as popular.
const PopularThreshold = 6.5

const overviewSnippetRunes = 200

var (
	// ErrIndexOutOfRange is returned for positions outside the backing list.
	ErrIndexOutOfRange = errors.New("catalog: index out of range")
	// ErrKindMismatch is returned when a container is bound with the wrong kind of record.
	ErrKindMismatch = errors.New("catalog: container kind mismatch")
)

// Navigator opens the detail view for a selected movie.
type Navigator interface {
	OpenDetail(movie domain.Movie)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(movie domain.Movie)

// OpenDetail calls f(movie).
func (f NavigatorFunc) OpenDetail(movie domain.Movie) { f(movie) }

// Container is a reusable slot bound to one movie at a time.
type Container interface {
	Kind() domain.Kind
	// Tap fires the handler registered by the last Bind. It reports false
	// when nothing has been bound yet.
	Tap() bool
}

// PopularContainer shows a single wide image.
type PopularContainer struct {
	Image string `json:"image"`
	onTap func()
}

// Kind implements Container.
func (c *PopularContainer) Kind() domain.Kind { return domain.KindPopular }

// Tap implements Container.
func (c *PopularContainer) Tap() bool { return fire(c.onTap) }

// NormalContainer shows a title, an overview snippet and one image picked by
// orientation.
type NormalContainer struct {
	Title    string `json:"title"`
	Overview string `json:"overview"`
	Image    string `json:"image"`
	onTap    func()
}

// Kind implements Container.
func (c *NormalContainer) Kind() domain.Kind { return domain.KindNormal }

// Tap implements Container.
func (c *NormalContainer) Tap() bool { return fire(c.onTap) }

func fire(fn func()) bool {
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Options configures an Adapter.
type Options struct {
	// ImageBaseURL prefixes poster and backdrop suffixes.
	ImageBaseURL string
	// Orientation is consulted at bind time; nil means portrait.
	Orientation func() domain.Orientation
	Navigator   Navigator
	Logger      *log.Logger
}

// Adapter turns an ordered list of movies into bound containers.
type Adapter struct {
	movies atomic.Pointer[[]domain.Movie]
	opts   Options
	logger *log.Logger
}

// NewAdapter constructs an adapter over an initial list.
func NewAdapter(movies []domain.Movie, opts Options) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = domain.DefaultImageBaseURL
	}
	a := &Adapter{opts: opts, logger: logger}
	a.Replace(movies)
	return a
}

// Replace swaps the backing list wholesale. The adapter keeps its own copy.
func (a *Adapter) Replace(movies []domain.Movie) {
	next := make([]domain.Movie, len(movies))
	copy(next, movies)
	a.movies.Store(&next)
}

func (a *Adapter) list() []domain.Movie {
	if p := a.movies.Load(); p != nil {
		return *p
	}
	return nil
}

// Count returns the number of movies in the backing list.
func (a *Adapter) Count() int {
	return len(a.list())
}

// Record returns a copy of the movie at index.
func (a *Adapter) Record(index int) (domain.Movie, error) {
	movies := a.list()
	if index < 0 || index >= len(movies) {
		return domain.Movie{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(movies))
	}
	return movies[index], nil
}

// KindOf applies the popularity rule: strictly above PopularThreshold.
func KindOf(movie domain.Movie) domain.Kind {
	if movie.Rating > PopularThreshold {
		return domain.KindPopular
	}
	return domain.KindNormal
}

// ViewKindFor returns the template kind for the movie at index.
func (a *Adapter) ViewKindFor(index int) (domain.Kind, error) {
	movie, err := a.Record(index)
	if err != nil {
		return domain.KindNormal, err
	}
	return KindOf(movie), nil
}

// CreateContainer allocates an empty container for kind.
func (a *Adapter) CreateContainer(kind domain.Kind) Container {
	if kind == domain.KindPopular {
		return &PopularContainer{}
	}
	return &NormalContainer{}
}

// Bind fills container from movie and registers a tap handler that opens the
// detail view for a copy of movie.
func (a *Adapter) Bind(container Container, movie domain.Movie) error {
	if container.Kind() != KindOf(movie) {
		return fmt.Errorf("%w: %s container for %s movie %d", ErrKindMismatch, container.Kind(), KindOf(movie), movie.ID)
	}

	selected := movie
	onTap := func() {
		if a.opts.Navigator == nil {
			a.logger.Printf("catalog: no navigator for movie %d", selected.ID)
			return
		}
		a.opts.Navigator.OpenDetail(selected)
	}

	switch c := container.(type) {
	case *PopularContainer:
		c.Image = movie.BackdropURL(a.opts.ImageBaseURL)
		c.onTap = onTap
	case *NormalContainer:
		c.Title = movie.Title
		c.Overview = snippet(movie.Overview, overviewSnippetRunes)
		if a.orientation() == domain.OrientationLandscape {
			c.Image = movie.BackdropURL(a.opts.ImageBaseURL)
		} else {
			c.Image = movie.PosterURL(a.opts.ImageBaseURL)
		}
		c.onTap = onTap
	default:
		return fmt.Errorf("%w: unsupported container %T", ErrKindMismatch, container)
	}
	return nil
}

// Render creates and binds one container per position, in list order.
func (a *Adapter) Render() []Container {
	movies := a.list()
	out := make([]Container, 0, len(movies))
	for _, movie := range movies {
		c := a.CreateContainer(KindOf(movie))
		if err := a.Bind(c, movie); err != nil {
			a.logger.Printf("catalog: bind movie %d: %v", movie.ID, err)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (a *Adapter) orientation() domain.Orientation {
	if a.opts.Orientation == nil {
		return domain.OrientationPortrait
	}
	return a.opts.Orientation()
}

func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
