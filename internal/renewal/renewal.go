// Package renewal implements the librarian workflow that extends the due
// date of a copy on loan.
package renewal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-catalog/internal/authz"
	"library-catalog/internal/models"
)

const (
	// proposedRenewalWeeks is the UI default offered on a fresh form.
	proposedRenewalWeeks = 3
	// maxRenewalWeeks is the hard validation cap, independent of the
	// default above.
	maxRenewalWeeks = 4
)

// ValidationError rejects a proposed renewal date. The caller should
// re-present the submitted date together with the reason; nothing was
// persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Store is the slice of the catalog store the workflow touches.
type Store interface {
	GetInstance(ctx context.Context, id uuid.UUID) (*models.BookInstance, error)
	SetInstanceDueBack(ctx context.Context, id uuid.UUID, dueBack time.Time) error
}

// Workflow validates and applies renewals.
type Workflow struct {
	store Store
	caps  authz.Checker
}

// NewWorkflow wires the workflow to a store and a capability checker.
func NewWorkflow(store Store, caps authz.Checker) *Workflow {
	return &Workflow{store: store, caps: caps}
}

// ProposedRenewalDate returns the default date offered on a fresh renewal
// form: three weeks from today. It always satisfies the validation cap.
func (w *Workflow) ProposedRenewalDate() time.Time {
	return models.Today().AddDate(0, 0, proposedRenewalWeeks*7)
}

// PrepareRenewal loads the copy for the renewal form and returns it with
// the proposed default date. The caller must hold mark-returned; the
// capability is checked before any state is read.
func (w *Workflow) PrepareRenewal(ctx context.Context, caller *models.User, id uuid.UUID) (*models.BookInstance, time.Time, error) {
	if !w.caps.HasCapability(caller, authz.CapMarkReturned) {
		return nil, time.Time{}, authz.ErrNotAuthorized
	}

	instance, err := w.store.GetInstance(ctx, id)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("loading instance for renewal: %w", err)
	}

	return instance, w.ProposedRenewalDate(), nil
}

// Renew applies a new due date to the copy. The proposed date must fall
// between today and four weeks from today, inclusive. On success only
// due_back changes; status and borrower are untouched. Renewing twice
// with the same valid date is a plain overwrite.
func (w *Workflow) Renew(ctx context.Context, caller *models.User, id uuid.UUID, proposed time.Time) error {
	if !w.caps.HasCapability(caller, authz.CapMarkReturned) {
		return authz.ErrNotAuthorized
	}

	instance, err := w.store.GetInstance(ctx, id)
	if err != nil {
		return fmt.Errorf("loading instance for renewal: %w", err)
	}

	today := models.Today()
	proposed = truncateToDate(proposed)

	if proposed.Before(today) {
		return &ValidationError{Reason: "Invalid date - renewal in past"}
	}
	if proposed.After(today.AddDate(0, 0, maxRenewalWeeks*7)) {
		return &ValidationError{Reason: "Invalid date - renewal more than 4 weeks ahead"}
	}

	if err := w.store.SetInstanceDueBack(ctx, instance.ID, proposed); err != nil {
		return fmt.Errorf("saving renewed due date: %w", err)
	}

	return nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
