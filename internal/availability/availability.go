// Package availability answers read-only questions about the catalog:
// record counts for the home page and the borrowed-copy listings. All
// operations are pure projections over the store.
package availability

import (
	"context"
	"fmt"

	"library-catalog/internal/authz"
	"library-catalog/internal/models"
)

// Store is the slice of the catalog store the service reads from.
type Store interface {
	CountBooks(ctx context.Context) (int, error)
	CountInstances(ctx context.Context) (int, error)
	CountAvailableInstances(ctx context.Context) (int, error)
	CountAuthors(ctx context.Context) (int, error)
	ListInstancesOnLoan(ctx context.Context) ([]models.BookInstance, error)
	ListInstancesOnLoanByBorrower(ctx context.Context, userID int64) ([]models.BookInstance, error)
}

// Summary carries the home page counts.
type Summary struct {
	Books              int
	Instances          int
	AvailableInstances int
	Authors            int
}

// Service is the availability query service.
type Service struct {
	store Store
	caps  authz.Checker
}

// NewService wires the service to a store and a capability checker.
func NewService(store Store, caps authz.Checker) *Service {
	return &Service{store: store, caps: caps}
}

// CountBooks returns the total number of book records.
func (s *Service) CountBooks(ctx context.Context) (int, error) {
	return s.store.CountBooks(ctx)
}

// CountInstances returns the total number of copies.
func (s *Service) CountInstances(ctx context.Context) (int, error) {
	return s.store.CountInstances(ctx)
}

// CountAvailableInstances returns the number of copies with status
// Available.
func (s *Service) CountAvailableInstances(ctx context.Context) (int, error) {
	return s.store.CountAvailableInstances(ctx)
}

// CountAuthors returns the total number of author records.
func (s *Service) CountAuthors(ctx context.Context) (int, error) {
	return s.store.CountAuthors(ctx)
}

// Summary gathers the four home page counts in one call.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	books, err := s.store.CountBooks(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("counting books: %w", err)
	}
	instances, err := s.store.CountInstances(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("counting instances: %w", err)
	}
	available, err := s.store.CountAvailableInstances(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("counting available instances: %w", err)
	}
	authors, err := s.store.CountAuthors(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("counting authors: %w", err)
	}

	return Summary{
		Books:              books,
		Instances:          instances,
		AvailableInstances: available,
		Authors:            authors,
	}, nil
}

// ListBorrowedByUser returns the copies the user has on loan, ordered by
// due date ascending. An absent user is not authorized.
func (s *Service) ListBorrowedByUser(ctx context.Context, user *models.User) ([]models.BookInstance, error) {
	if user == nil {
		return nil, authz.ErrNotAuthorized
	}

	return s.store.ListInstancesOnLoanByBorrower(ctx, user.ID)
}

// ListAllBorrowed returns every copy on loan, ordered by due date
// ascending. The caller must hold the view-all-loans capability.
func (s *Service) ListAllBorrowed(ctx context.Context, caller *models.User) ([]models.BookInstance, error) {
	if !s.caps.HasCapability(caller, authz.CapViewAllLoans) {
		return nil, authz.ErrNotAuthorized
	}

	return s.store.ListInstancesOnLoan(ctx)
}
