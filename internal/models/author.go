package models

import "time"

// Author represents a book author. Birth and death dates are optional.
type Author struct {
	ID          int64      `json:"id" db:"id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty" db:"date_of_death"`
}

// FullName returns the author's display name, surname first.
func (a *Author) FullName() string {
	return a.LastName + ", " + a.FirstName
}

// Lifespan returns the author's birth and death years as a display string,
// e.g. "1920 - 1992". Unknown dates render as an empty side.
func (a *Author) Lifespan() string {
	birth := ""
	if a.DateOfBirth != nil {
		birth = a.DateOfBirth.Format("2006")
	}
	death := ""
	if a.DateOfDeath != nil {
		death = a.DateOfDeath.Format("2006")
	}
	if birth == "" && death == "" {
		return ""
	}
	return birth + " - " + death
}
