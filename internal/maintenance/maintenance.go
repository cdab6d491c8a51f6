// Package maintenance implements the staff workflow for creating,
// updating and deleting catalog records. Each entity gets explicit typed
// operations; there is no generic form machinery.
package maintenance

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"library-catalog/internal/authz"
	"library-catalog/internal/models"
)

// isbnMaxLength bounds the ISBN column, 13 characters as printed.
const isbnMaxLength = 13

// FieldError rejects a submitted field value. The submitted record is
// returned to the caller untouched so the form can be re-rendered.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// Store is the slice of the catalog store the workflow writes through.
type Store interface {
	CreateAuthor(ctx context.Context, author *models.Author) error
	UpdateAuthor(ctx context.Context, author *models.Author) error
	DeleteAuthor(ctx context.Context, id int64) error

	CreateBook(ctx context.Context, book *models.Book) error
	UpdateBook(ctx context.Context, book *models.Book) error
	DeleteBook(ctx context.Context, id int64) error

	CreateGenre(ctx context.Context, name string) (*models.Genre, error)
	RenameGenre(ctx context.Context, id int64, name string) error
	DeleteGenre(ctx context.Context, id int64) error

	CreateInstance(ctx context.Context, instance *models.BookInstance) error
	UpdateInstance(ctx context.Context, instance *models.BookInstance) error
	DeleteInstance(ctx context.Context, id uuid.UUID) error
}

// Workflow is the record maintenance workflow. Every operation is gated
// on the staff capability before any state is touched.
type Workflow struct {
	store Store
	caps  authz.Checker
}

// NewWorkflow wires the workflow to a store and a capability checker.
func NewWorkflow(store Store, caps authz.Checker) *Workflow {
	return &Workflow{store: store, caps: caps}
}

func (w *Workflow) authorize(caller *models.User) error {
	if !w.caps.HasCapability(caller, authz.CapMarkReturned) {
		return authz.ErrNotAuthorized
	}
	return nil
}

// CreateAuthor inserts a new author. No death-date default is applied.
func (w *Workflow) CreateAuthor(ctx context.Context, caller *models.User, author *models.Author) error {
	if err := w.authorize(caller); err != nil {
		return err
	}
	if err := validateAuthor(author); err != nil {
		return err
	}

	return w.store.CreateAuthor(ctx, author)
}

// UpdateAuthor overwrites an author record.
func (w *Workflow) UpdateAuthor(ctx context.Context, caller *models.User, author *models.Author) error {
	if err := w.authorize(caller); err != nil {
		return err
	}
	if err := validateAuthor(author); err != nil {
		return err
	}

	return w.store.UpdateAuthor(ctx, author)
}

// DeleteAuthor removes an author record; their books keep their rows with
// the author reference cleared.
func (w *Workflow) DeleteAuthor(ctx context.Context, caller *models.User, id int64) error {
	if err := w.authorize(caller); err != nil {
		return err
	}

	return w.store.DeleteAuthor(ctx, id)
}

// CreateBook inserts a new book record with its genre links.
func (w *Workflow) CreateBook(ctx context.Context, caller *models.User, book *models.Book) error {
	if err := w.authorize(caller); err != nil {
		return err
	}
	if err := validateBook(book); err != nil {
		return err
	}

	return w.store.CreateBook(ctx, book)
}

// UpdateBook overwrites a book record and its genre links.
func (w *Workflow) UpdateBook(ctx context.Context, caller *models.User, book *models.Book) error {
	if err := w.authorize(caller); err != nil {
		return err
	}
	if err := validateBook(book); err != nil {
		return err
	}

	return w.store.UpdateBook(ctx, book)
}

// DeleteBook removes a book record. The store blocks deletion while
// copies exist (postgres.ErrBookHasInstances); the error is surfaced
// unchanged so the caller can tell staff to retire the copies first.
func (w *Workflow) DeleteBook(ctx context.Context, caller *models.User, id int64) error {
	if err := w.authorize(caller); err != nil {
		return err
	}

	return w.store.DeleteBook(ctx, id)
}

// CreateGenre inserts a genre label.
func (w *Workflow) CreateGenre(ctx context.Context, caller *models.User, name string) (*models.Genre, error) {
	if err := w.authorize(caller); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &FieldError{Field: "name", Reason: "must not be empty"}
	}

	return w.store.CreateGenre(ctx, name)
}

// RenameGenre renames a genre label.
func (w *Workflow) RenameGenre(ctx context.Context, caller *models.User, id int64, name string) error {
	if err := w.authorize(caller); err != nil {
		return err
	}
	if name == "" {
		return &FieldError{Field: "name", Reason: "must not be empty"}
	}

	return w.store.RenameGenre(ctx, id, name)
}

// DeleteGenre removes a genre label; books simply lose it.
func (w *Workflow) DeleteGenre(ctx context.Context, caller *models.User, id int64) error {
	if err := w.authorize(caller); err != nil {
		return err
	}

	return w.store.DeleteGenre(ctx, id)
}

// CreateInstance records a newly acquired copy.
func (w *Workflow) CreateInstance(ctx context.Context, caller *models.User, instance *models.BookInstance) error {
	if err := w.authorize(caller); err != nil {
		return err
	}
	if err := validateInstance(instance); err != nil {
		return err
	}

	return w.store.CreateInstance(ctx, instance)
}

// UpdateInstance overwrites a copy's fields.
func (w *Workflow) UpdateInstance(ctx context.Context, caller *models.User, instance *models.BookInstance) error {
	if err := w.authorize(caller); err != nil {
		return err
	}
	if err := validateInstance(instance); err != nil {
		return err
	}

	return w.store.UpdateInstance(ctx, instance)
}

// DeleteInstance retires a copy.
func (w *Workflow) DeleteInstance(ctx context.Context, caller *models.User, id uuid.UUID) error {
	if err := w.authorize(caller); err != nil {
		return err
	}

	return w.store.DeleteInstance(ctx, id)
}

func validateAuthor(author *models.Author) error {
	if author == nil {
		return fmt.Errorf("author must not be nil")
	}
	if author.LastName == "" {
		return &FieldError{Field: "last_name", Reason: "must not be empty"}
	}
	if author.DateOfBirth != nil && author.DateOfDeath != nil &&
		author.DateOfDeath.Before(*author.DateOfBirth) {
		return &FieldError{Field: "date_of_death", Reason: "must not precede date of birth"}
	}
	return nil
}

func validateBook(book *models.Book) error {
	if book == nil {
		return fmt.Errorf("book must not be nil")
	}
	if book.Title == "" {
		return &FieldError{Field: "title", Reason: "must not be empty"}
	}
	if len(book.ISBN) > isbnMaxLength {
		return &FieldError{Field: "isbn", Reason: "must be at most 13 characters"}
	}
	return nil
}

func validateInstance(instance *models.BookInstance) error {
	if instance == nil {
		return fmt.Errorf("instance must not be nil")
	}
	if instance.BookID == 0 {
		return &FieldError{Field: "book_id", Reason: "must reference a book"}
	}
	if instance.Imprint == "" {
		return &FieldError{Field: "imprint", Reason: "must not be empty"}
	}
	if instance.Status != "" && !models.IsValidInstanceStatus(string(instance.Status)) {
		return &FieldError{Field: "status", Reason: "unknown status code"}
	}
	return nil
}
