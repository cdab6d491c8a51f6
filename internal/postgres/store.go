// Package postgres implements the catalog store on PostgreSQL. All SQL is
// built with goqu and executed through sqlx over the pgx driver.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	_ "github.com/jackc/pgx/v5/stdlib"                  // driver import
	"github.com/jmoiron/sqlx"
)

const (
	dialectPostgres = "postgres"

	genresTable     = "genres"
	authorsTable    = "authors"
	booksTable      = "books"
	bookGenresTable = "book_genres"
	instancesTable  = "book_instances"
	usersTable      = "users"
)

// ErrNotFound is returned when a referenced primary key does not exist.
var ErrNotFound = errors.New("record not found")

// ErrBookHasInstances is returned by DeleteBook while copies of the book
// still exist; copies must be retired first.
var ErrBookHasInstances = errors.New("book still has instances")

// Store is the catalog store. One instance is shared by all workflows.
type Store struct {
	db *sqlx.DB
}

// Open connects to PostgreSQL and verifies the connection.
func Open(databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	db, err := sqlx.Connect("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an existing sqlx handle, mainly for tests and tooling.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// notFound translates the driver's empty-result error into ErrNotFound so
// callers never depend on database/sql.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
