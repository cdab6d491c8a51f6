package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"library-catalog/internal/authz"
	"library-catalog/internal/models"
)

func Test_RoleChecker_HasCapability(t *testing.T) {
	checker := authz.NewRoleChecker()

	librarian := &models.User{Role: models.RoleLibrarian, IsActive: true}
	patron := &models.User{Role: models.RolePatron, IsActive: true}
	inactiveLibrarian := &models.User{Role: models.RoleLibrarian, IsActive: false}

	tests := []struct {
		name       string
		user       *models.User
		capability authz.Capability
		expected   bool
	}{
		{"librarian_may_mark_returned", librarian, authz.CapMarkReturned, true},
		{"librarian_may_view_all_loans", librarian, authz.CapViewAllLoans, true},
		{"patron_may_not_mark_returned", patron, authz.CapMarkReturned, false},
		{"patron_may_not_view_all_loans", patron, authz.CapViewAllLoans, false},
		{"nil_user_holds_nothing", nil, authz.CapMarkReturned, false},
		{"inactive_librarian_holds_nothing", inactiveLibrarian, authz.CapMarkReturned, false},
		{"unknown_capability_is_never_held", librarian, authz.Capability("launch-rockets"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.HasCapability(tt.user, tt.capability))
		})
	}
}
