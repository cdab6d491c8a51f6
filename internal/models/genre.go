package models

// Genre is a classification label attached to books (science fiction,
// non-fiction, and so on). Managed by staff only.
type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
