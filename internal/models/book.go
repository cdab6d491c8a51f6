package models

// Book is a bibliographic record. Physical copies are tracked separately
// as BookInstances; the Book itself owns no loan state.
type Book struct {
	ID       int64  `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	AuthorID *int64 `json:"author_id,omitempty" db:"author_id"`
	Summary  string `json:"summary" db:"summary"`
	ISBN     string `json:"isbn" db:"isbn"`
	Language string `json:"language" db:"language"`

	// Author and Genres are populated by the store on reads; only the
	// author_id column and the book_genres join table are persisted.
	Author *Author `json:"author,omitempty" db:"-"`
	Genres []Genre `json:"genres,omitempty" db:"-"`
}

// GenreIDs returns the IDs of the book's genres, used when rebuilding
// join rows on update.
func (b *Book) GenreIDs() []int64 {
	ids := make([]int64, 0, len(b.Genres))
	for _, g := range b.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// DisplayGenres joins the genre names for list pages.
func (b *Book) DisplayGenres() string {
	s := ""
	for i, g := range b.Genres {
		if i > 0 {
			s += ", "
		}
		s += g.Name
	}
	return s
}
