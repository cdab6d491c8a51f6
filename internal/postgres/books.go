package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"library-catalog/internal/models"
)

// ListBooks returns a page of books ordered by title, with authors and
// genres attached.
func (s *Store) ListBooks(ctx context.Context, limit, offset int) ([]models.Book, error) {
	stmt := s.builder().
		From(booksTable).
		Select("id", "title", "author_id", "summary", "isbn", "language").
		Order(goqu.I("title").Asc())

	if limit > 0 {
		stmt = stmt.Limit(uint(limit)).Offset(uint(offset))
	}

	query, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building book list query: %w", err)
	}

	var books []models.Book
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	if err := s.attachAuthors(ctx, books); err != nil {
		return nil, err
	}
	if err := s.attachGenres(ctx, books); err != nil {
		return nil, err
	}

	return books, nil
}

// CountBooks returns the total number of book records.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	return s.countAll(ctx, booksTable)
}

// GetBook fetches a book by primary key, with its author and genres.
func (s *Store) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	query, args, err := s.builder().
		From(booksTable).
		Select("id", "title", "author_id", "summary", "isbn", "language").
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building book query: %w", err)
	}

	var book models.Book
	if err := s.db.GetContext(ctx, &book, query, args...); err != nil {
		return nil, fmt.Errorf("fetching book %d: %w", id, notFound(err))
	}

	books := []models.Book{book}
	if err := s.attachAuthors(ctx, books); err != nil {
		return nil, err
	}
	if err := s.attachGenres(ctx, books); err != nil {
		return nil, err
	}

	return &books[0], nil
}

// CreateBook inserts a book and its genre links, filling in the new ID.
func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	if book == nil {
		return fmt.Errorf("book must not be nil")
	}

	query, args, err := s.builder().
		Insert(booksTable).
		Rows(goqu.Record{
			"title":     book.Title,
			"author_id": book.AuthorID,
			"summary":   book.Summary,
			"isbn":      book.ISBN,
			"language":  book.Language,
		}).
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building book insert: %w", err)
	}

	if err := s.db.GetContext(ctx, &book.ID, query, args...); err != nil {
		return fmt.Errorf("inserting book: %w", err)
	}

	return s.replaceGenreLinks(ctx, book.ID, book.GenreIDs())
}

// UpdateBook overwrites a book record and replaces its genre links.
func (s *Store) UpdateBook(ctx context.Context, book *models.Book) error {
	if book == nil {
		return fmt.Errorf("book must not be nil")
	}

	query, args, err := s.builder().
		Update(booksTable).
		Set(goqu.Record{
			"title":     book.Title,
			"author_id": book.AuthorID,
			"summary":   book.Summary,
			"isbn":      book.ISBN,
			"language":  book.Language,
		}).
		Where(goqu.Ex{"id": book.ID}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building book update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating book %d: %w", book.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return s.replaceGenreLinks(ctx, book.ID, book.GenreIDs())
}

// DeleteBook removes a book record. Deletion is blocked while copies of
// the book still exist; staff must retire the copies first.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	instances, err := s.CountInstancesForBook(ctx, id)
	if err != nil {
		return err
	}
	if instances > 0 {
		return ErrBookHasInstances
	}

	linkQuery, linkArgs, err := s.builder().
		Delete(bookGenresTable).
		Where(goqu.Ex{"book_id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building genre link delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, linkQuery, linkArgs...); err != nil {
		return fmt.Errorf("removing genre links for book %d: %w", id, err)
	}

	query, args, err := s.builder().
		Delete(booksTable).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building book delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting book %d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// CountInstancesForBook returns how many copies of the book exist.
func (s *Store) CountInstancesForBook(ctx context.Context, bookID int64) (int, error) {
	query, args, err := s.builder().
		From(instancesTable).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"book_id": bookID}).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building instance count query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("counting instances for book %d: %w", bookID, err)
	}

	return count, nil
}

// replaceGenreLinks rebuilds the book_genres rows for one book.
func (s *Store) replaceGenreLinks(ctx context.Context, bookID int64, genreIDs []int64) error {
	deleteQuery, deleteArgs, err := s.builder().
		Delete(bookGenresTable).
		Where(goqu.Ex{"book_id": bookID}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building genre link delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("clearing genre links for book %d: %w", bookID, err)
	}

	if len(genreIDs) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(genreIDs))
	for _, genreID := range genreIDs {
		rows = append(rows, goqu.Record{"book_id": bookID, "genre_id": genreID})
	}

	insertQuery, insertArgs, err := s.builder().
		Insert(bookGenresTable).
		Rows(rows...).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building genre link insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("inserting genre links for book %d: %w", bookID, err)
	}

	return nil
}

type bookGenreRow struct {
	BookID int64  `db:"book_id"`
	ID     int64  `db:"id"`
	Name   string `db:"name"`
}

// attachAuthors populates Book.Author for every book with an author_id.
func (s *Store) attachAuthors(ctx context.Context, books []models.Book) error {
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		if b.AuthorID != nil {
			ids = append(ids, *b.AuthorID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query, args, err := s.builder().
		From(authorsTable).
		Select("id", "first_name", "last_name", "date_of_birth", "date_of_death").
		Where(goqu.Ex{"id": ids}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building author attach query: %w", err)
	}

	var authors []models.Author
	if err := s.db.SelectContext(ctx, &authors, query, args...); err != nil {
		return fmt.Errorf("fetching authors for books: %w", err)
	}

	byID := make(map[int64]models.Author, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}
	for i := range books {
		if books[i].AuthorID == nil {
			continue
		}
		if author, ok := byID[*books[i].AuthorID]; ok {
			a := author
			books[i].Author = &a
		}
	}

	return nil
}

// attachGenres populates Book.Genres for every book in the slice.
func (s *Store) attachGenres(ctx context.Context, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}

	query, args, err := s.builder().
		From(bookGenresTable).
		Join(goqu.T(genresTable), goqu.On(
			goqu.I(bookGenresTable+".genre_id").Eq(goqu.I(genresTable+".id")),
		)).
		Select(
			goqu.I(bookGenresTable+".book_id"),
			goqu.I(genresTable+".id"),
			goqu.I(genresTable+".name"),
		).
		Where(goqu.Ex{bookGenresTable + ".book_id": ids}).
		Order(goqu.I(genresTable + ".name").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building genre attach query: %w", err)
	}

	var rows []bookGenreRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("fetching genres for books: %w", err)
	}

	byBook := make(map[int64][]models.Genre, len(books))
	for _, row := range rows {
		byBook[row.BookID] = append(byBook[row.BookID], models.Genre{ID: row.ID, Name: row.Name})
	}
	for i := range books {
		books[i].Genres = byBook[books[i].ID]
	}

	return nil
}
