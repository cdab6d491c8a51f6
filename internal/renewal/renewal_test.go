package renewal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/internal/authz"
	"library-catalog/internal/models"
	"library-catalog/internal/postgres"
	"library-catalog/internal/renewal"
)

type fakeStore struct {
	instance *models.BookInstance
	getErr   error
	setErr   error

	getCalls int
	setCalls int
	setID    uuid.UUID
	setDue   time.Time
}

func (f *fakeStore) GetInstance(_ context.Context, id uuid.UUID) (*models.BookInstance, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	instance := *f.instance
	return &instance, nil
}

func (f *fakeStore) SetInstanceDueBack(_ context.Context, id uuid.UUID, dueBack time.Time) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.setID = id
	f.setDue = dueBack
	due := dueBack
	f.instance.DueBack = &due
	return nil
}

func librarian() *models.User {
	return &models.User{ID: 1, Role: models.RoleLibrarian, IsActive: true}
}

func patron() *models.User {
	return &models.User{ID: 2, Role: models.RolePatron, IsActive: true}
}

func onLoanInstance() *models.BookInstance {
	due := models.Today().AddDate(0, 0, 7)
	return &models.BookInstance{
		ID:      uuid.New(),
		BookID:  1,
		Imprint: "First edition",
		Status:  models.StatusOnLoan,
		DueBack: &due,
	}
}

func Test_Renew_ValidDate_PersistsOnlyDueDate(t *testing.T) {
	store := &fakeStore{instance: onLoanInstance()}
	workflow := renewal.NewWorkflow(store, authz.NewRoleChecker())

	proposed := models.Today().AddDate(0, 0, 10)
	err := workflow.Renew(context.Background(), librarian(), store.instance.ID, proposed)

	require.NoError(t, err)
	assert.Equal(t, 1, store.setCalls)
	assert.Equal(t, store.instance.ID, store.setID)
	assert.True(t, proposed.Equal(store.setDue))
	assert.Equal(t, models.StatusOnLoan, store.instance.Status)
}

func Test_Renew_DateBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		offsetDays int
		wantReason string
	}{
		{"yesterday_is_rejected", -1, "Invalid date - renewal in past"},
		{"today_is_accepted", 0, ""},
		{"ten_days_ahead_is_accepted", 10, ""},
		{"four_weeks_ahead_is_accepted", 28, ""},
		{"twenty_nine_days_ahead_is_rejected", 29, "Invalid date - renewal more than 4 weeks ahead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{instance: onLoanInstance()}
			workflow := renewal.NewWorkflow(store, authz.NewRoleChecker())
			originalDue := *store.instance.DueBack

			proposed := models.Today().AddDate(0, 0, tt.offsetDays)
			err := workflow.Renew(context.Background(), librarian(), store.instance.ID, proposed)

			if tt.wantReason == "" {
				require.NoError(t, err)
				assert.Equal(t, 1, store.setCalls)
				return
			}

			var validationErr *renewal.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantReason, validationErr.Reason)
			assert.Equal(t, 0, store.setCalls, "a rejected renewal must not write")
			assert.True(t, originalDue.Equal(*store.instance.DueBack), "stored due date must be unchanged")
		})
	}
}

func Test_Renew_WithoutCapability_FailsBeforeAnyRead(t *testing.T) {
	store := &fakeStore{instance: onLoanInstance()}
	workflow := renewal.NewWorkflow(store, authz.NewRoleChecker())

	// A perfectly valid date must not rescue an unauthorized caller.
	proposed := models.Today().AddDate(0, 0, 10)
	err := workflow.Renew(context.Background(), patron(), store.instance.ID, proposed)

	assert.ErrorIs(t, err, authz.ErrNotAuthorized)
	assert.Equal(t, 0, store.getCalls)
	assert.Equal(t, 0, store.setCalls)

	err = workflow.Renew(context.Background(), nil, store.instance.ID, proposed)
	assert.ErrorIs(t, err, authz.ErrNotAuthorized)
	assert.Equal(t, 0, store.getCalls)
}

func Test_Renew_UnknownInstance(t *testing.T) {
	store := &fakeStore{instance: onLoanInstance(), getErr: postgres.ErrNotFound}
	workflow := renewal.NewWorkflow(store, authz.NewRoleChecker())

	err := workflow.Renew(context.Background(), librarian(), uuid.New(), models.Today())

	assert.ErrorIs(t, err, postgres.ErrNotFound)
	assert.Equal(t, 0, store.setCalls)
}

func Test_Renew_SameDateTwice_IsPlainOverwrite(t *testing.T) {
	store := &fakeStore{instance: onLoanInstance()}
	workflow := renewal.NewWorkflow(store, authz.NewRoleChecker())

	proposed := models.Today().AddDate(0, 0, 14)

	require.NoError(t, workflow.Renew(context.Background(), librarian(), store.instance.ID, proposed))
	firstDue := store.setDue

	require.NoError(t, workflow.Renew(context.Background(), librarian(), store.instance.ID, proposed))

	assert.Equal(t, 2, store.setCalls)
	assert.True(t, firstDue.Equal(store.setDue))
}

func Test_Renew_TruncatesProposedDateToMidnight(t *testing.T) {
	store := &fakeStore{instance: onLoanInstance()}
	workflow := renewal.NewWorkflow(store, authz.NewRoleChecker())

	proposed := models.Today().AddDate(0, 0, 5).Add(15*time.Hour + 30*time.Minute)
	require.NoError(t, workflow.Renew(context.Background(), librarian(), store.instance.ID, proposed))

	assert.True(t, models.Today().AddDate(0, 0, 5).Equal(store.setDue))
}

func Test_ProposedRenewalDate_IsThreeWeeksOut_AndWithinCap(t *testing.T) {
	workflow := renewal.NewWorkflow(&fakeStore{instance: onLoanInstance()}, authz.NewRoleChecker())

	proposed := workflow.ProposedRenewalDate()

	assert.True(t, models.Today().AddDate(0, 0, 21).Equal(proposed))
	latestAllowed := models.Today().AddDate(0, 0, 28)
	assert.False(t, proposed.After(latestAllowed), "the default must always satisfy the validation cap")
}

func Test_PrepareRenewal(t *testing.T) {
	t.Run("without_capability_fails_before_any_read", func(t *testing.T) {
		store := &fakeStore{instance: onLoanInstance()}
		workflow := renewal.NewWorkflow(store, authz.NewRoleChecker())

		_, _, err := workflow.PrepareRenewal(context.Background(), patron(), store.instance.ID)

		assert.ErrorIs(t, err, authz.ErrNotAuthorized)
		assert.Equal(t, 0, store.getCalls)
	})

	t.Run("returns_instance_and_default_date", func(t *testing.T) {
		store := &fakeStore{instance: onLoanInstance()}
		workflow := renewal.NewWorkflow(store, authz.NewRoleChecker())

		instance, proposed, err := workflow.PrepareRenewal(context.Background(), librarian(), store.instance.ID)

		require.NoError(t, err)
		assert.Equal(t, store.instance.ID, instance.ID)
		assert.True(t, models.Today().AddDate(0, 0, 21).Equal(proposed))
	})

	t.Run("unknown_instance", func(t *testing.T) {
		store := &fakeStore{instance: onLoanInstance(), getErr: postgres.ErrNotFound}
		workflow := renewal.NewWorkflow(store, authz.NewRoleChecker())

		_, _, err := workflow.PrepareRenewal(context.Background(), librarian(), uuid.New())

		assert.ErrorIs(t, err, postgres.ErrNotFound)
	})
}
