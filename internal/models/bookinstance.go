package models

import (
	"time"

	"github.com/google/uuid"
)

// InstanceStatus is the loan status of a single book copy.
type InstanceStatus string

// The status codes are a closed set; the one-letter values are stable and
// stored as-is.
const (
	StatusMaintenance InstanceStatus = "m"
	StatusOnLoan      InstanceStatus = "o"
	StatusAvailable   InstanceStatus = "a"
	StatusReserved    InstanceStatus = "r"
)

var instanceStatusLabels = map[InstanceStatus]string{
	StatusMaintenance: "Maintenance",
	StatusOnLoan:      "On loan",
	StatusAvailable:   "Available",
	StatusReserved:    "Reserved",
}

// IsValidInstanceStatus reports whether s is one of the four known codes.
func IsValidInstanceStatus(s string) bool {
	_, ok := instanceStatusLabels[InstanceStatus(s)]
	return ok
}

// Label returns the human-readable name of the status.
func (s InstanceStatus) Label() string {
	if label, ok := instanceStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// BookInstance is a physical, lendable copy of a Book. DueBack and
// BorrowerID are only meaningful while the copy is on loan.
type BookInstance struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	BookID     int64          `json:"book_id" db:"book_id"`
	Imprint    string         `json:"imprint" db:"imprint"`
	Status     InstanceStatus `json:"status" db:"status"`
	DueBack    *time.Time     `json:"due_back,omitempty" db:"due_back"`
	BorrowerID *int64         `json:"borrower_id,omitempty" db:"borrower_id"`

	// BookTitle is denormalized onto listings by the store for display.
	BookTitle string `json:"book_title,omitempty" db:"book_title"`
}

// IsOverdue reports whether the copy is on loan past its due date.
// Overdue is derived, never stored, and compares at date granularity.
func (bi *BookInstance) IsOverdue() bool {
	if bi.Status != StatusOnLoan || bi.DueBack == nil {
		return false
	}
	today := Today()
	return bi.DueBack.Before(today)
}

// Today returns the current date truncated to midnight local time.
func Today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
