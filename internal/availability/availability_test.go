package availability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/internal/authz"
	"library-catalog/internal/availability"
	"library-catalog/internal/models"
)

type fakeStore struct {
	books     int
	instances int
	available int
	authors   int

	onLoan     []models.BookInstance
	byBorrower map[int64][]models.BookInstance

	countErr error

	listAllCalls      int
	listBorrowerCalls int
}

func (f *fakeStore) CountBooks(context.Context) (int, error)     { return f.books, f.countErr }
func (f *fakeStore) CountInstances(context.Context) (int, error) { return f.instances, f.countErr }
func (f *fakeStore) CountAvailableInstances(context.Context) (int, error) {
	return f.available, f.countErr
}
func (f *fakeStore) CountAuthors(context.Context) (int, error) { return f.authors, f.countErr }

func (f *fakeStore) ListInstancesOnLoan(context.Context) ([]models.BookInstance, error) {
	f.listAllCalls++
	return f.onLoan, nil
}

func (f *fakeStore) ListInstancesOnLoanByBorrower(_ context.Context, userID int64) ([]models.BookInstance, error) {
	f.listBorrowerCalls++
	return f.byBorrower[userID], nil
}

func librarian() *models.User {
	return &models.User{ID: 1, Role: models.RoleLibrarian, IsActive: true}
}

func patron() *models.User {
	return &models.User{ID: 2, Role: models.RolePatron, IsActive: true}
}

func loanFor(userID int64) models.BookInstance {
	due := models.Today().AddDate(0, 0, 3)
	return models.BookInstance{
		ID:         uuid.New(),
		BookID:     1,
		Imprint:    "First edition",
		Status:     models.StatusOnLoan,
		DueBack:    &due,
		BorrowerID: &userID,
	}
}

func Test_Summary(t *testing.T) {
	t.Run("gathers_all_four_counts", func(t *testing.T) {
		store := &fakeStore{books: 4, instances: 12, available: 5, authors: 3}
		service := availability.NewService(store, authz.NewRoleChecker())

		summary, err := service.Summary(context.Background())

		require.NoError(t, err)
		assert.Equal(t, availability.Summary{
			Books:              4,
			Instances:          12,
			AvailableInstances: 5,
			Authors:            3,
		}, summary)
	})

	t.Run("propagates_store_errors", func(t *testing.T) {
		storeErr := errors.New("connection reset")
		store := &fakeStore{countErr: storeErr}
		service := availability.NewService(store, authz.NewRoleChecker())

		_, err := service.Summary(context.Background())

		assert.ErrorIs(t, err, storeErr)
	})
}

func Test_Counts_PassThrough(t *testing.T) {
	store := &fakeStore{books: 7, instances: 20, available: 9, authors: 6}
	service := availability.NewService(store, authz.NewRoleChecker())
	ctx := context.Background()

	books, err := service.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, books)

	instances, err := service.CountInstances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, instances)

	available, err := service.CountAvailableInstances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, available)

	authors, err := service.CountAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, authors)
}

func Test_ListBorrowedByUser(t *testing.T) {
	t.Run("returns_only_the_users_loans", func(t *testing.T) {
		user := patron()
		store := &fakeStore{
			byBorrower: map[int64][]models.BookInstance{
				user.ID: {loanFor(user.ID), loanFor(user.ID)},
				99:      {loanFor(99)},
			},
		}
		service := availability.NewService(store, authz.NewRoleChecker())

		loans, err := service.ListBorrowedByUser(context.Background(), user)

		require.NoError(t, err)
		assert.Len(t, loans, 2)
		for _, loan := range loans {
			assert.Equal(t, user.ID, *loan.BorrowerID)
		}
	})

	t.Run("anonymous_caller_is_rejected_without_touching_the_store", func(t *testing.T) {
		store := &fakeStore{}
		service := availability.NewService(store, authz.NewRoleChecker())

		_, err := service.ListBorrowedByUser(context.Background(), nil)

		assert.ErrorIs(t, err, authz.ErrNotAuthorized)
		assert.Equal(t, 0, store.listBorrowerCalls)
	})

	t.Run("user_with_no_loans_gets_an_empty_list", func(t *testing.T) {
		store := &fakeStore{byBorrower: map[int64][]models.BookInstance{}}
		service := availability.NewService(store, authz.NewRoleChecker())

		loans, err := service.ListBorrowedByUser(context.Background(), patron())

		require.NoError(t, err)
		assert.Empty(t, loans)
	})
}

func Test_ListAllBorrowed(t *testing.T) {
	t.Run("librarian_sees_every_loan", func(t *testing.T) {
		store := &fakeStore{onLoan: []models.BookInstance{loanFor(2), loanFor(5), loanFor(7)}}
		service := availability.NewService(store, authz.NewRoleChecker())

		loans, err := service.ListAllBorrowed(context.Background(), librarian())

		require.NoError(t, err)
		assert.Len(t, loans, 3)
	})

	t.Run("patron_is_rejected_without_touching_the_store", func(t *testing.T) {
		store := &fakeStore{onLoan: []models.BookInstance{loanFor(2)}}
		service := availability.NewService(store, authz.NewRoleChecker())

		_, err := service.ListAllBorrowed(context.Background(), patron())

		assert.ErrorIs(t, err, authz.ErrNotAuthorized)
		assert.Equal(t, 0, store.listAllCalls)
	})

	t.Run("anonymous_caller_is_rejected", func(t *testing.T) {
		service := availability.NewService(&fakeStore{}, authz.NewRoleChecker())

		_, err := service.ListAllBorrowed(context.Background(), nil)

		assert.ErrorIs(t, err, authz.ErrNotAuthorized)
	})
}
