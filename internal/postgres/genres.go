package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"library-catalog/internal/models"
)

// ListGenres returns all genres ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]models.Genre, error) {
	query, args, err := s.builder().
		From(genresTable).
		Select("id", "name").
		Order(goqu.I("name").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building genre list query: %w", err)
	}

	var genres []models.Genre
	if err := s.db.SelectContext(ctx, &genres, query, args...); err != nil {
		return nil, fmt.Errorf("listing genres: %w", err)
	}

	return genres, nil
}

// GetGenre fetches a genre by primary key.
func (s *Store) GetGenre(ctx context.Context, id int64) (*models.Genre, error) {
	query, args, err := s.builder().
		From(genresTable).
		Select("id", "name").
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building genre query: %w", err)
	}

	var genre models.Genre
	if err := s.db.GetContext(ctx, &genre, query, args...); err != nil {
		return nil, fmt.Errorf("fetching genre %d: %w", id, notFound(err))
	}

	return &genre, nil
}

// CreateGenre inserts a genre and returns it with its assigned ID.
func (s *Store) CreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	if name == "" {
		return nil, fmt.Errorf("genre name must not be empty")
	}

	query, args, err := s.builder().
		Insert(genresTable).
		Rows(goqu.Record{"name": name}).
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building genre insert: %w", err)
	}

	var id int64
	if err := s.db.GetContext(ctx, &id, query, args...); err != nil {
		return nil, fmt.Errorf("inserting genre: %w", err)
	}

	return &models.Genre{ID: id, Name: name}, nil
}

// RenameGenre updates a genre's name.
func (s *Store) RenameGenre(ctx context.Context, id int64, name string) error {
	if name == "" {
		return fmt.Errorf("genre name must not be empty")
	}

	query, args, err := s.builder().
		Update(genresTable).
		Set(goqu.Record{"name": name}).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building genre update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("renaming genre %d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteGenre removes a genre. Join rows referencing it are removed first
// so books simply lose the label.
func (s *Store) DeleteGenre(ctx context.Context, id int64) error {
	linkQuery, linkArgs, err := s.builder().
		Delete(bookGenresTable).
		Where(goqu.Ex{"genre_id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building genre link delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, linkQuery, linkArgs...); err != nil {
		return fmt.Errorf("removing genre links for %d: %w", id, err)
	}

	query, args, err := s.builder().
		Delete(genresTable).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building genre delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting genre %d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}
