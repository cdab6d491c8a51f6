package models

import "time"

// UserRole is the role of a user within the library.
type UserRole string

const (
	RolePatron    UserRole = "patron"    // can browse and see their own loans
	RoleLibrarian UserRole = "librarian" // staff; manages records and loans
)

// User is a library account, either a patron or a librarian.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         UserRole  `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsLibrarian reports whether the user is staff.
func (u *User) IsLibrarian() bool {
	return u.Role == RoleLibrarian
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
