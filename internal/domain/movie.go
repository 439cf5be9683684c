package domain

import "strings"

// DefaultImageBaseURL is the poster/backdrop size bucket used by the catalog.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p/w342/"

// Movie is a single catalog record. Values are built once by the mapper and
// passed by value afterwards; nothing mutates a Movie after construction.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"posterPath"`
	BackdropPath string  `json:"backdropPath"`
	Rating       float64 `json:"rating"`
}

// PosterURL joins the poster suffix onto base.
func (m Movie) PosterURL(base string) string {
	return joinImageURL(base, m.PosterPath)
}

// BackdropURL joins the backdrop suffix onto base.
func (m Movie) BackdropURL(base string) string {
	return joinImageURL(base, m.BackdropPath)
}

func joinImageURL(base, suffix string) string {
	if base == "" {
		base = DefaultImageBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(suffix, "/")
}
