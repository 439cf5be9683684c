package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/flixster/internal/domain"
)

// MoviesRepository stores the most recent catalog listing.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    title,
    overview,
    poster_path,
    backdrop_path,
    rating
`

// ReplaceSnapshot swaps the stored listing for movies in one transaction.
// Positions follow slice order; a repeated id keeps its first position.
// Concurrent replaces are serialized on a table lock, so the stored listing is
// always exactly one caller's movies.
func (r *MoviesRepository) ReplaceSnapshot(ctx context.Context, movies []domain.Movie) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE movies IN EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock snapshot: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM movies`); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
		if len(movies) == 0 {
			return nil
		}

		const insert = `
            INSERT INTO movies (id, title, overview, poster_path, backdrop_path, rating, position)
            VALUES ($1,$2,$3,$4,$5,$6,$7)
            ON CONFLICT (id) DO NOTHING
        `
		batch := &pgx.Batch{}
		for i, m := range movies {
			batch.Queue(insert, m.ID, m.Title, m.Overview, m.PosterPath, m.BackdropPath, m.Rating, i)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		return nil
	})
}

// GetByID fetches a stored movie by its catalog identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns the stored listing in its original order.
func (r *MoviesRepository) List(ctx context.Context) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies ORDER BY position ASC`, movieColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Overview,
		&movie.PosterPath,
		&movie.BackdropPath,
		&movie.Rating,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
