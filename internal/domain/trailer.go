package domain

// Trailer references the external video attached to a movie.
type Trailer struct {
	MovieID int
	Key     string
}

// EmbedURL returns the player URL for the trailer key.
func (t Trailer) EmbedURL() string {
	return "https://www.youtube.com/embed/" + t.Key
}
