package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"library-catalog/internal/models"
)

// ListAuthors returns a page of authors ordered by last then first name.
func (s *Store) ListAuthors(ctx context.Context, limit, offset int) ([]models.Author, error) {
	stmt := s.builder().
		From(authorsTable).
		Select("id", "first_name", "last_name", "date_of_birth", "date_of_death").
		Order(goqu.I("last_name").Asc(), goqu.I("first_name").Asc())

	if limit > 0 {
		stmt = stmt.Limit(uint(limit)).Offset(uint(offset))
	}

	query, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building author list query: %w", err)
	}

	var authors []models.Author
	if err := s.db.SelectContext(ctx, &authors, query, args...); err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}

	return authors, nil
}

// CountAuthors returns the total number of author records.
func (s *Store) CountAuthors(ctx context.Context) (int, error) {
	return s.countAll(ctx, authorsTable)
}

// GetAuthor fetches an author by primary key.
func (s *Store) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	query, args, err := s.builder().
		From(authorsTable).
		Select("id", "first_name", "last_name", "date_of_birth", "date_of_death").
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building author query: %w", err)
	}

	var author models.Author
	if err := s.db.GetContext(ctx, &author, query, args...); err != nil {
		return nil, fmt.Errorf("fetching author %d: %w", id, notFound(err))
	}

	return &author, nil
}

// CreateAuthor inserts an author record and fills in its assigned ID.
func (s *Store) CreateAuthor(ctx context.Context, author *models.Author) error {
	if author == nil {
		return fmt.Errorf("author must not be nil")
	}

	query, args, err := s.builder().
		Insert(authorsTable).
		Rows(goqu.Record{
			"first_name":    author.FirstName,
			"last_name":     author.LastName,
			"date_of_birth": author.DateOfBirth,
			"date_of_death": author.DateOfDeath,
		}).
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building author insert: %w", err)
	}

	if err := s.db.GetContext(ctx, &author.ID, query, args...); err != nil {
		return fmt.Errorf("inserting author: %w", err)
	}

	return nil
}

// UpdateAuthor overwrites an author record by primary key.
func (s *Store) UpdateAuthor(ctx context.Context, author *models.Author) error {
	if author == nil {
		return fmt.Errorf("author must not be nil")
	}

	query, args, err := s.builder().
		Update(authorsTable).
		Set(goqu.Record{
			"first_name":    author.FirstName,
			"last_name":     author.LastName,
			"date_of_birth": author.DateOfBirth,
			"date_of_death": author.DateOfDeath,
		}).
		Where(goqu.Ex{"id": author.ID}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building author update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating author %d: %w", author.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteAuthor removes an author record. Books referencing the author keep
// their rows with the reference cleared (the author is referenced, not
// owned, by books).
func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	clearQuery, clearArgs, err := s.builder().
		Update(booksTable).
		Set(goqu.Record{"author_id": nil}).
		Where(goqu.Ex{"author_id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building author reference clear: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clearing author references for %d: %w", id, err)
	}

	query, args, err := s.builder().
		Delete(authorsTable).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building author delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting author %d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListBooksByAuthor returns the author's books ordered by title.
func (s *Store) ListBooksByAuthor(ctx context.Context, authorID int64) ([]models.Book, error) {
	query, args, err := s.builder().
		From(booksTable).
		Select("id", "title", "author_id", "summary", "isbn", "language").
		Where(goqu.Ex{"author_id": authorID}).
		Order(goqu.I("title").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building author books query: %w", err)
	}

	var books []models.Book
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("listing books for author %d: %w", authorID, err)
	}

	return books, nil
}

// countAll counts every row of a table.
func (s *Store) countAll(ctx context.Context, table string) (int, error) {
	query, args, err := s.builder().
		From(table).
		Select(goqu.COUNT("*")).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building count query for %s: %w", table, err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}

	return count, nil
}
