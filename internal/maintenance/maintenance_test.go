package maintenance_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/internal/authz"
	"library-catalog/internal/maintenance"
	"library-catalog/internal/models"
	"library-catalog/internal/postgres"
)

type fakeStore struct {
	calls int

	deleteBookErr error

	lastAuthor   *models.Author
	lastBook     *models.Book
	lastInstance *models.BookInstance
	lastGenre    string
}

func (f *fakeStore) CreateAuthor(_ context.Context, author *models.Author) error {
	f.calls++
	f.lastAuthor = author
	return nil
}

func (f *fakeStore) UpdateAuthor(_ context.Context, author *models.Author) error {
	f.calls++
	f.lastAuthor = author
	return nil
}

func (f *fakeStore) DeleteAuthor(context.Context, int64) error {
	f.calls++
	return nil
}

func (f *fakeStore) CreateBook(_ context.Context, book *models.Book) error {
	f.calls++
	f.lastBook = book
	return nil
}

func (f *fakeStore) UpdateBook(_ context.Context, book *models.Book) error {
	f.calls++
	f.lastBook = book
	return nil
}

func (f *fakeStore) DeleteBook(context.Context, int64) error {
	f.calls++
	return f.deleteBookErr
}

func (f *fakeStore) CreateGenre(_ context.Context, name string) (*models.Genre, error) {
	f.calls++
	f.lastGenre = name
	return &models.Genre{ID: 1, Name: name}, nil
}

func (f *fakeStore) RenameGenre(_ context.Context, _ int64, name string) error {
	f.calls++
	f.lastGenre = name
	return nil
}

func (f *fakeStore) DeleteGenre(context.Context, int64) error {
	f.calls++
	return nil
}

func (f *fakeStore) CreateInstance(_ context.Context, instance *models.BookInstance) error {
	f.calls++
	f.lastInstance = instance
	return nil
}

func (f *fakeStore) UpdateInstance(_ context.Context, instance *models.BookInstance) error {
	f.calls++
	f.lastInstance = instance
	return nil
}

func (f *fakeStore) DeleteInstance(context.Context, uuid.UUID) error {
	f.calls++
	return nil
}

func librarian() *models.User {
	return &models.User{ID: 1, Role: models.RoleLibrarian, IsActive: true}
}

func patron() *models.User {
	return &models.User{ID: 2, Role: models.RolePatron, IsActive: true}
}

func validAuthor() *models.Author {
	return &models.Author{FirstName: "Ursula", LastName: "Le Guin"}
}

func validBook() *models.Book {
	return &models.Book{Title: "The Dispossessed", Summary: "An ambiguous utopia.", ISBN: "9780060512750"}
}

func validInstance() *models.BookInstance {
	return &models.BookInstance{BookID: 1, Imprint: "Harper, 1974", Status: models.StatusMaintenance}
}

func Test_Workflow_CapabilityGate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(w *maintenance.Workflow) error
	}{
		{"create_author", func(w *maintenance.Workflow) error {
			return w.CreateAuthor(ctx, patron(), validAuthor())
		}},
		{"update_author", func(w *maintenance.Workflow) error {
			return w.UpdateAuthor(ctx, patron(), validAuthor())
		}},
		{"delete_author", func(w *maintenance.Workflow) error {
			return w.DeleteAuthor(ctx, patron(), 1)
		}},
		{"create_book", func(w *maintenance.Workflow) error {
			return w.CreateBook(ctx, patron(), validBook())
		}},
		{"update_book", func(w *maintenance.Workflow) error {
			return w.UpdateBook(ctx, patron(), validBook())
		}},
		{"delete_book", func(w *maintenance.Workflow) error {
			return w.DeleteBook(ctx, patron(), 1)
		}},
		{"create_genre", func(w *maintenance.Workflow) error {
			_, err := w.CreateGenre(ctx, patron(), "Fantasy")
			return err
		}},
		{"rename_genre", func(w *maintenance.Workflow) error {
			return w.RenameGenre(ctx, patron(), 1, "Fantasy")
		}},
		{"delete_genre", func(w *maintenance.Workflow) error {
			return w.DeleteGenre(ctx, patron(), 1)
		}},
		{"create_instance", func(w *maintenance.Workflow) error {
			return w.CreateInstance(ctx, patron(), validInstance())
		}},
		{"update_instance", func(w *maintenance.Workflow) error {
			return w.UpdateInstance(ctx, patron(), validInstance())
		}},
		{"delete_instance", func(w *maintenance.Workflow) error {
			return w.DeleteInstance(ctx, patron(), uuid.New())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_rejects_patron_without_touching_the_store", func(t *testing.T) {
			store := &fakeStore{}
			workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

			err := tt.call(workflow)

			assert.ErrorIs(t, err, authz.ErrNotAuthorized)
			assert.Equal(t, 0, store.calls)
		})
	}
}

func Test_CreateAuthor(t *testing.T) {
	t.Run("valid_author_is_stored_without_a_death_date_default", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		author := validAuthor()
		err := workflow.CreateAuthor(context.Background(), librarian(), author)

		require.NoError(t, err)
		require.NotNil(t, store.lastAuthor)
		assert.Nil(t, store.lastAuthor.DateOfDeath)
	})

	t.Run("empty_last_name_is_rejected", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		err := workflow.CreateAuthor(context.Background(), librarian(), &models.Author{FirstName: "Ursula"})

		var fieldErr *maintenance.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "last_name", fieldErr.Field)
		assert.Equal(t, 0, store.calls)
	})

	t.Run("death_before_birth_is_rejected", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		birth := time.Date(1929, 10, 21, 0, 0, 0, 0, time.UTC)
		death := time.Date(1920, 1, 1, 0, 0, 0, 0, time.UTC)
		author := validAuthor()
		author.DateOfBirth = &birth
		author.DateOfDeath = &death

		err := workflow.CreateAuthor(context.Background(), librarian(), author)

		var fieldErr *maintenance.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "date_of_death", fieldErr.Field)
		assert.Equal(t, 0, store.calls)
	})
}

func Test_CreateBook(t *testing.T) {
	t.Run("valid_book_is_stored", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		err := workflow.CreateBook(context.Background(), librarian(), validBook())

		require.NoError(t, err)
		assert.NotNil(t, store.lastBook)
	})

	t.Run("empty_title_is_rejected", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		book := validBook()
		book.Title = ""
		err := workflow.CreateBook(context.Background(), librarian(), book)

		var fieldErr *maintenance.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "title", fieldErr.Field)
		assert.Equal(t, 0, store.calls)
	})

	t.Run("isbn_longer_than_thirteen_characters_is_rejected", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		book := validBook()
		book.ISBN = strings.Repeat("9", 14)
		err := workflow.CreateBook(context.Background(), librarian(), book)

		var fieldErr *maintenance.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "isbn", fieldErr.Field)
		assert.Equal(t, 0, store.calls)
	})

	t.Run("thirteen_character_isbn_is_accepted", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		book := validBook()
		book.ISBN = strings.Repeat("9", 13)

		require.NoError(t, workflow.CreateBook(context.Background(), librarian(), book))
	})
}

func Test_DeleteBook_SurfacesBlockedDeletion(t *testing.T) {
	store := &fakeStore{deleteBookErr: postgres.ErrBookHasInstances}
	workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

	err := workflow.DeleteBook(context.Background(), librarian(), 1)

	assert.ErrorIs(t, err, postgres.ErrBookHasInstances)
}

func Test_Genres(t *testing.T) {
	t.Run("create_returns_the_stored_genre", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		genre, err := workflow.CreateGenre(context.Background(), librarian(), "Science Fiction")

		require.NoError(t, err)
		assert.Equal(t, "Science Fiction", genre.Name)
	})

	t.Run("empty_name_is_rejected_on_create_and_rename", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		var fieldErr *maintenance.FieldError

		_, err := workflow.CreateGenre(context.Background(), librarian(), "")
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "name", fieldErr.Field)

		err = workflow.RenameGenre(context.Background(), librarian(), 1, "")
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "name", fieldErr.Field)

		assert.Equal(t, 0, store.calls)
	})
}

func Test_CreateInstance(t *testing.T) {
	t.Run("valid_instance_is_stored", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		err := workflow.CreateInstance(context.Background(), librarian(), validInstance())

		require.NoError(t, err)
		assert.NotNil(t, store.lastInstance)
	})

	t.Run("missing_book_reference_is_rejected", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		instance := validInstance()
		instance.BookID = 0
		err := workflow.CreateInstance(context.Background(), librarian(), instance)

		var fieldErr *maintenance.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "book_id", fieldErr.Field)
	})

	t.Run("empty_imprint_is_rejected", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		instance := validInstance()
		instance.Imprint = ""
		err := workflow.CreateInstance(context.Background(), librarian(), instance)

		var fieldErr *maintenance.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "imprint", fieldErr.Field)
	})

	t.Run("unknown_status_code_is_rejected", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		instance := validInstance()
		instance.Status = models.InstanceStatus("x")
		err := workflow.CreateInstance(context.Background(), librarian(), instance)

		var fieldErr *maintenance.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "status", fieldErr.Field)
		assert.Equal(t, 0, store.calls)
	})

	t.Run("empty_status_is_left_for_the_store_default", func(t *testing.T) {
		store := &fakeStore{}
		workflow := maintenance.NewWorkflow(store, authz.NewRoleChecker())

		instance := validInstance()
		instance.Status = ""

		require.NoError(t, workflow.CreateInstance(context.Background(), librarian(), instance))
	})
}
