// Package authz holds the capability model: named permissions checked
// before a guarded workflow runs.
package authz

import (
	"errors"

	"library-catalog/internal/models"
)

// Capability is a named permission a caller may or may not hold.
type Capability string

const (
	// CapMarkReturned guards loan management: renewing due dates and
	// maintaining catalog records.
	CapMarkReturned Capability = "mark-returned"
	// CapViewAllLoans guards the listing of every borrowed copy.
	CapViewAllLoans Capability = "view-all-loans"
)

// ErrNotAuthorized is returned by every guarded operation when the caller
// lacks the required capability. The guarded workflow must not have read
// or written any state when this is returned.
var ErrNotAuthorized = errors.New("caller is not authorized")

// Checker answers whether a user holds a capability. Workflows take a
// Checker so the permission gate is testable without a request.
type Checker interface {
	HasCapability(user *models.User, capability Capability) bool
}

// RoleChecker grants capabilities from the user's role: librarians hold
// all staff capabilities, patrons hold none.
type RoleChecker struct{}

// NewRoleChecker returns the role-based capability checker.
func NewRoleChecker() RoleChecker {
	return RoleChecker{}
}

// HasCapability implements Checker. Nil and inactive users hold nothing.
func (RoleChecker) HasCapability(user *models.User, capability Capability) bool {
	if user == nil || !user.IsActive {
		return false
	}

	switch capability {
	case CapMarkReturned, CapViewAllLoans:
		return user.Role == models.RoleLibrarian
	default:
		return false
	}
}
