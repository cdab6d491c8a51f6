package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"library-catalog/internal/models"
)

// CountInstances returns the total number of book copies.
func (s *Store) CountInstances(ctx context.Context) (int, error) {
	return s.countAll(ctx, instancesTable)
}

// CountAvailableInstances returns the number of copies with status
// Available; every other status is excluded.
func (s *Store) CountAvailableInstances(ctx context.Context) (int, error) {
	query, args, err := s.builder().
		From(instancesTable).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"status": string(models.StatusAvailable)}).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building available count query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("counting available instances: %w", err)
	}

	return count, nil
}

// GetInstance fetches a copy by primary key, with its book title attached.
func (s *Store) GetInstance(ctx context.Context, id uuid.UUID) (*models.BookInstance, error) {
	query, args, err := s.instanceSelect().
		Where(goqu.Ex{instancesTable + ".id": id.String()}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building instance query: %w", err)
	}

	var instance models.BookInstance
	if err := s.db.GetContext(ctx, &instance, query, args...); err != nil {
		return nil, fmt.Errorf("fetching instance %s: %w", id, notFound(err))
	}

	return &instance, nil
}

// ListInstancesForBook returns all copies of one book, imprint order.
func (s *Store) ListInstancesForBook(ctx context.Context, bookID int64) ([]models.BookInstance, error) {
	query, args, err := s.instanceSelect().
		Where(goqu.Ex{instancesTable + ".book_id": bookID}).
		Order(goqu.I(instancesTable + ".imprint").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building book instances query: %w", err)
	}

	var instances []models.BookInstance
	if err := s.db.SelectContext(ctx, &instances, query, args...); err != nil {
		return nil, fmt.Errorf("listing instances for book %d: %w", bookID, err)
	}

	return instances, nil
}

// ListInstancesOnLoan returns every copy currently on loan, soonest due
// first.
func (s *Store) ListInstancesOnLoan(ctx context.Context) ([]models.BookInstance, error) {
	query, args, err := s.instanceSelect().
		Where(goqu.Ex{instancesTable + ".status": string(models.StatusOnLoan)}).
		Order(goqu.I(instancesTable + ".due_back").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building on-loan query: %w", err)
	}

	var instances []models.BookInstance
	if err := s.db.SelectContext(ctx, &instances, query, args...); err != nil {
		return nil, fmt.Errorf("listing instances on loan: %w", err)
	}

	return instances, nil
}

// ListInstancesOnLoanByBorrower returns the copies a user has on loan,
// soonest due first.
func (s *Store) ListInstancesOnLoanByBorrower(ctx context.Context, userID int64) ([]models.BookInstance, error) {
	query, args, err := s.instanceSelect().
		Where(goqu.Ex{
			instancesTable + ".status":      string(models.StatusOnLoan),
			instancesTable + ".borrower_id": userID,
		}).
		Order(goqu.I(instancesTable + ".due_back").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building borrower query: %w", err)
	}

	var instances []models.BookInstance
	if err := s.db.SelectContext(ctx, &instances, query, args...); err != nil {
		return nil, fmt.Errorf("listing instances for borrower %d: %w", userID, err)
	}

	return instances, nil
}

// CreateInstance inserts a new copy. A zero ID is assigned a fresh UUID;
// an unset status defaults to Maintenance, matching how a newly acquired
// copy enters circulation.
func (s *Store) CreateInstance(ctx context.Context, instance *models.BookInstance) error {
	if instance == nil {
		return fmt.Errorf("instance must not be nil")
	}
	if instance.ID == uuid.Nil {
		instance.ID = uuid.New()
	}
	if instance.Status == "" {
		instance.Status = models.StatusMaintenance
	}

	query, args, err := s.builder().
		Insert(instancesTable).
		Rows(goqu.Record{
			"id":          instance.ID.String(),
			"book_id":     instance.BookID,
			"imprint":     instance.Imprint,
			"status":      string(instance.Status),
			"due_back":    instance.DueBack,
			"borrower_id": instance.BorrowerID,
		}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building instance insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting instance: %w", err)
	}

	return nil
}

// UpdateInstance overwrites a copy's mutable fields by primary key.
func (s *Store) UpdateInstance(ctx context.Context, instance *models.BookInstance) error {
	if instance == nil {
		return fmt.Errorf("instance must not be nil")
	}

	query, args, err := s.builder().
		Update(instancesTable).
		Set(goqu.Record{
			"book_id":     instance.BookID,
			"imprint":     instance.Imprint,
			"status":      string(instance.Status),
			"due_back":    instance.DueBack,
			"borrower_id": instance.BorrowerID,
		}).
		Where(goqu.Ex{"id": instance.ID.String()}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building instance update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating instance %s: %w", instance.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetInstanceDueBack overwrites only the due date of one copy. This is a
// single-row UPDATE; concurrent writers are last-writer-wins.
func (s *Store) SetInstanceDueBack(ctx context.Context, id uuid.UUID, dueBack time.Time) error {
	query, args, err := s.builder().
		Update(instancesTable).
		Set(goqu.Record{"due_back": dueBack}).
		Where(goqu.Ex{"id": id.String()}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building due date update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("setting due date for instance %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteInstance retires a copy.
func (s *Store) DeleteInstance(ctx context.Context, id uuid.UUID) error {
	query, args, err := s.builder().
		Delete(instancesTable).
		Where(goqu.Ex{"id": id.String()}).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building instance delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting instance %s: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// instanceSelect is the shared select for copies, joining the book title
// onto each row for display.
func (s *Store) instanceSelect() *goqu.SelectDataset {
	return s.builder().
		From(instancesTable).
		Join(goqu.T(booksTable), goqu.On(
			goqu.I(instancesTable+".book_id").Eq(goqu.I(booksTable+".id")),
		)).
		Select(
			goqu.I(instancesTable+".id"),
			goqu.I(instancesTable+".book_id"),
			goqu.I(instancesTable+".imprint"),
			goqu.I(instancesTable+".status"),
			goqu.I(instancesTable+".due_back"),
			goqu.I(instancesTable+".borrower_id"),
			goqu.I(booksTable+".title").As("book_title"),
		)
}
