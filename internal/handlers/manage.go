package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"library-catalog/internal/authz"
	"library-catalog/internal/logging"
	"library-catalog/internal/maintenance"
	"library-catalog/internal/middleware"
	"library-catalog/internal/models"
	"library-catalog/internal/postgres"
)

// ManageHandler serves the staff create/update/delete forms for authors,
// books, genres and book copies.
type ManageHandler struct {
	authorFormTemplate     *template.Template
	authorDeleteTemplate   *template.Template
	bookFormTemplate       *template.Template
	bookDeleteTemplate     *template.Template
	genreListTemplate      *template.Template
	genreFormTemplate      *template.Template
	instanceFormTemplate   *template.Template
	instanceDeleteTemplate *template.Template
	store                  *postgres.Store
	records                *maintenance.Workflow
}

// NewManageHandler creates the staff maintenance handler.
func NewManageHandler(store *postgres.Store, records *maintenance.Workflow) *ManageHandler {
	return &ManageHandler{
		authorFormTemplate:     loadTemplate("author_form.html"),
		authorDeleteTemplate:   loadTemplate("author_delete.html"),
		bookFormTemplate:       loadTemplate("book_form.html"),
		bookDeleteTemplate:     loadTemplate("book_delete.html"),
		genreListTemplate:      loadTemplate("genre_list.html"),
		genreFormTemplate:      loadTemplate("genre_form.html"),
		instanceFormTemplate:   loadTemplate("instance_form.html"),
		instanceDeleteTemplate: loadTemplate("instance_delete.html"),
		store:                  store,
		records:                records,
	}
}

// --- authors ---

// ShowNewAuthorForm handles GET /manage/authors/new.
func (h *ManageHandler) ShowNewAuthorForm(w http.ResponseWriter, r *http.Request) {
	h.renderAuthorForm(w, r, &models.Author{}, "")
}

// CreateAuthor handles POST /manage/authors/new.
func (h *ManageHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	author, parseErr := authorFromForm(r)
	if parseErr != "" {
		h.renderAuthorForm(w, r, author, parseErr)
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.CreateAuthor(r.Context(), caller, author); err != nil {
		h.handleRecordError(w, r, err, func(reason string) {
			h.renderAuthorForm(w, r, author, reason)
		})
		return
	}

	http.Redirect(w, r, "/authors/"+strconv.FormatInt(author.ID, 10), http.StatusSeeOther)
}

// ShowEditAuthorForm handles GET /manage/authors/{id}/edit.
func (h *ManageHandler) ShowEditAuthorForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	author, err := h.store.GetAuthor(r.Context(), id)
	if err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	h.renderAuthorForm(w, r, author, "")
}

// UpdateAuthor handles POST /manage/authors/{id}/edit.
func (h *ManageHandler) UpdateAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	author, parseErr := authorFromForm(r)
	author.ID = id
	if parseErr != "" {
		h.renderAuthorForm(w, r, author, parseErr)
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.UpdateAuthor(r.Context(), caller, author); err != nil {
		h.handleRecordError(w, r, err, func(reason string) {
			h.renderAuthorForm(w, r, author, reason)
		})
		return
	}

	http.Redirect(w, r, "/authors/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// ShowDeleteAuthor handles GET /manage/authors/{id}/delete.
func (h *ManageHandler) ShowDeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	author, err := h.store.GetAuthor(r.Context(), id)
	if err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	books, err := h.store.ListBooksByAuthor(r.Context(), id)
	if err != nil {
		logging.L().WithError(err).Error("listing author books")
		http.Error(w, "error loading author", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Author"] = author
	data["Books"] = books
	render(w, h.authorDeleteTemplate, data)
}

// DeleteAuthor handles POST /manage/authors/{id}/delete and redirects to
// the author listing.
func (h *ManageHandler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.DeleteAuthor(r.Context(), caller, id); err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	http.Redirect(w, r, "/authors", http.StatusSeeOther)
}

// --- books ---

// ShowNewBookForm handles GET /manage/books/new.
func (h *ManageHandler) ShowNewBookForm(w http.ResponseWriter, r *http.Request) {
	h.renderBookForm(w, r, &models.Book{}, "")
}

// CreateBook handles POST /manage/books/new.
func (h *ManageHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	book, parseErr := bookFromForm(r)
	if parseErr != "" {
		h.renderBookForm(w, r, book, parseErr)
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.CreateBook(r.Context(), caller, book); err != nil {
		h.handleRecordError(w, r, err, func(reason string) {
			h.renderBookForm(w, r, book, reason)
		})
		return
	}

	http.Redirect(w, r, "/books/"+strconv.FormatInt(book.ID, 10), http.StatusSeeOther)
}

// ShowEditBookForm handles GET /manage/books/{id}/edit.
func (h *ManageHandler) ShowEditBookForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	book, err := h.store.GetBook(r.Context(), id)
	if err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	h.renderBookForm(w, r, book, "")
}

// UpdateBook handles POST /manage/books/{id}/edit.
func (h *ManageHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	book, parseErr := bookFromForm(r)
	book.ID = id
	if parseErr != "" {
		h.renderBookForm(w, r, book, parseErr)
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.UpdateBook(r.Context(), caller, book); err != nil {
		h.handleRecordError(w, r, err, func(reason string) {
			h.renderBookForm(w, r, book, reason)
		})
		return
	}

	http.Redirect(w, r, "/books/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// ShowDeleteBook handles GET /manage/books/{id}/delete.
func (h *ManageHandler) ShowDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	h.renderDeleteBook(w, r, id, "")
}

// DeleteBook handles POST /manage/books/{id}/delete. Deletion is blocked
// while copies exist; the confirm page is re-rendered with the reason.
func (h *ManageHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.DeleteBook(r.Context(), caller, id); err != nil {
		if errors.Is(err, postgres.ErrBookHasInstances) {
			h.renderDeleteBook(w, r, id, "This book still has copies; retire them before deleting the record.")
			return
		}
		h.handleRecordError(w, r, err, nil)
		return
	}

	http.Redirect(w, r, "/books", http.StatusSeeOther)
}

// --- genres ---

// ListGenres handles GET /manage/genres.
func (h *ManageHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.store.ListGenres(r.Context())
	if err != nil {
		logging.L().WithError(err).Error("listing genres")
		http.Error(w, "error listing genres", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Genres"] = genres
	data["Error"] = nil
	render(w, h.genreListTemplate, data)
}

// CreateGenre handles POST /manage/genres.
func (h *ManageHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	if _, err := h.records.CreateGenre(r.Context(), caller, r.FormValue("name")); err != nil {
		var fieldErr *maintenance.FieldError
		if errors.As(err, &fieldErr) {
			genres, listErr := h.store.ListGenres(r.Context())
			if listErr != nil {
				http.Error(w, "error listing genres", http.StatusInternalServerError)
				return
			}
			sess := middleware.GetSessionFromContext(r.Context())
			data := NewTemplateData(sess)
			data["Genres"] = genres
			data["Error"] = fieldErr.Reason
			render(w, h.genreListTemplate, data)
			return
		}
		h.handleRecordError(w, r, err, nil)
		return
	}

	http.Redirect(w, r, "/manage/genres", http.StatusSeeOther)
}

// ShowEditGenreForm handles GET /manage/genres/{id}/edit.
func (h *ManageHandler) ShowEditGenreForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	genre, err := h.store.GetGenre(r.Context(), id)
	if err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Genre"] = genre
	data["Error"] = nil
	render(w, h.genreFormTemplate, data)
}

// RenameGenre handles POST /manage/genres/{id}/edit.
func (h *ManageHandler) RenameGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	caller := middleware.UserFromContext(r.Context())
	name := r.FormValue("name")

	if err := h.records.RenameGenre(r.Context(), caller, id, name); err != nil {
		var fieldErr *maintenance.FieldError
		if errors.As(err, &fieldErr) {
			sess := middleware.GetSessionFromContext(r.Context())
			data := NewTemplateData(sess)
			data["Genre"] = &models.Genre{ID: id, Name: name}
			data["Error"] = fieldErr.Reason
			render(w, h.genreFormTemplate, data)
			return
		}
		h.handleRecordError(w, r, err, nil)
		return
	}

	http.Redirect(w, r, "/manage/genres", http.StatusSeeOther)
}

// DeleteGenre handles POST /manage/genres/{id}/delete.
func (h *ManageHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.DeleteGenre(r.Context(), caller, id); err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	http.Redirect(w, r, "/manage/genres", http.StatusSeeOther)
}

// --- book copies ---

// ShowNewInstanceForm handles GET /manage/instances/new. A book query
// parameter preselects the book.
func (h *ManageHandler) ShowNewInstanceForm(w http.ResponseWriter, r *http.Request) {
	instance := &models.BookInstance{Status: models.StatusMaintenance}
	if b := r.URL.Query().Get("book"); b != "" {
		if bookID, err := strconv.ParseInt(b, 10, 64); err == nil {
			instance.BookID = bookID
		}
	}
	h.renderInstanceForm(w, r, instance, "")
}

// CreateInstance handles POST /manage/instances/new.
func (h *ManageHandler) CreateInstance(w http.ResponseWriter, r *http.Request) {
	instance, parseErr := instanceFromForm(r, uuid.Nil)
	if parseErr != "" {
		h.renderInstanceForm(w, r, instance, parseErr)
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.CreateInstance(r.Context(), caller, instance); err != nil {
		h.handleRecordError(w, r, err, func(reason string) {
			h.renderInstanceForm(w, r, instance, reason)
		})
		return
	}

	http.Redirect(w, r, "/books/"+strconv.FormatInt(instance.BookID, 10), http.StatusSeeOther)
}

// ShowEditInstanceForm handles GET /manage/instances/{id}/edit.
func (h *ManageHandler) ShowEditInstanceForm(w http.ResponseWriter, r *http.Request) {
	id, ok := instanceIDParam(w, r)
	if !ok {
		return
	}

	instance, err := h.store.GetInstance(r.Context(), id)
	if err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	h.renderInstanceForm(w, r, instance, "")
}

// UpdateInstance handles POST /manage/instances/{id}/edit.
func (h *ManageHandler) UpdateInstance(w http.ResponseWriter, r *http.Request) {
	id, ok := instanceIDParam(w, r)
	if !ok {
		return
	}

	instance, parseErr := instanceFromForm(r, id)
	if parseErr != "" {
		h.renderInstanceForm(w, r, instance, parseErr)
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.UpdateInstance(r.Context(), caller, instance); err != nil {
		h.handleRecordError(w, r, err, func(reason string) {
			h.renderInstanceForm(w, r, instance, reason)
		})
		return
	}

	http.Redirect(w, r, "/books/"+strconv.FormatInt(instance.BookID, 10), http.StatusSeeOther)
}

// ShowDeleteInstance handles GET /manage/instances/{id}/delete.
func (h *ManageHandler) ShowDeleteInstance(w http.ResponseWriter, r *http.Request) {
	id, ok := instanceIDParam(w, r)
	if !ok {
		return
	}

	instance, err := h.store.GetInstance(r.Context(), id)
	if err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Instance"] = instance
	render(w, h.instanceDeleteTemplate, data)
}

// DeleteInstance handles POST /manage/instances/{id}/delete.
func (h *ManageHandler) DeleteInstance(w http.ResponseWriter, r *http.Request) {
	id, ok := instanceIDParam(w, r)
	if !ok {
		return
	}

	caller := middleware.UserFromContext(r.Context())
	if err := h.records.DeleteInstance(r.Context(), caller, id); err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	http.Redirect(w, r, "/books", http.StatusSeeOther)
}

// --- shared helpers ---

func (h *ManageHandler) renderAuthorForm(w http.ResponseWriter, r *http.Request, author *models.Author, errMsg string) {
	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Author"] = author
	data["Error"] = errMsg
	if errMsg == "" {
		data["Error"] = nil
	}
	render(w, h.authorFormTemplate, data)
}

func (h *ManageHandler) renderBookForm(w http.ResponseWriter, r *http.Request, book *models.Book, errMsg string) {
	authors, err := h.store.ListAuthors(r.Context(), 0, 0)
	if err != nil {
		logging.L().WithError(err).Error("listing authors for book form")
		http.Error(w, "error loading form", http.StatusInternalServerError)
		return
	}
	genres, err := h.store.ListGenres(r.Context())
	if err != nil {
		logging.L().WithError(err).Error("listing genres for book form")
		http.Error(w, "error loading form", http.StatusInternalServerError)
		return
	}

	selected := make(map[int64]bool, len(book.Genres))
	for _, g := range book.Genres {
		selected[g.ID] = true
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Book"] = book
	data["Authors"] = authors
	data["Genres"] = genres
	data["SelectedGenres"] = selected
	data["Error"] = errMsg
	if errMsg == "" {
		data["Error"] = nil
	}
	render(w, h.bookFormTemplate, data)
}

func (h *ManageHandler) renderDeleteBook(w http.ResponseWriter, r *http.Request, id int64, errMsg string) {
	book, err := h.store.GetBook(r.Context(), id)
	if err != nil {
		h.handleRecordError(w, r, err, nil)
		return
	}

	instances, err := h.store.ListInstancesForBook(r.Context(), id)
	if err != nil {
		logging.L().WithError(err).Error("listing book instances")
		http.Error(w, "error loading book", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Book"] = book
	data["Instances"] = instances
	data["Error"] = errMsg
	if errMsg == "" {
		data["Error"] = nil
	}
	render(w, h.bookDeleteTemplate, data)
}

func (h *ManageHandler) renderInstanceForm(w http.ResponseWriter, r *http.Request, instance *models.BookInstance, errMsg string) {
	books, err := h.store.ListBooks(r.Context(), 0, 0)
	if err != nil {
		logging.L().WithError(err).Error("listing books for instance form")
		http.Error(w, "error loading form", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Instance"] = instance
	data["Books"] = books
	data["Statuses"] = []models.InstanceStatus{
		models.StatusMaintenance,
		models.StatusOnLoan,
		models.StatusAvailable,
		models.StatusReserved,
	}
	data["Error"] = errMsg
	if errMsg == "" {
		data["Error"] = nil
	}
	render(w, h.instanceFormTemplate, data)
}

// handleRecordError maps workflow errors onto responses. When the error
// is a field validation failure and reRender is given, the submitted form
// is re-presented with the reason.
func (h *ManageHandler) handleRecordError(w http.ResponseWriter, r *http.Request, err error, reRender func(reason string)) {
	var fieldErr *maintenance.FieldError
	switch {
	case errors.As(err, &fieldErr) && reRender != nil:
		reRender(fieldErr.Reason)
	case errors.Is(err, authz.ErrNotAuthorized):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, postgres.ErrNotFound):
		http.NotFound(w, r)
	default:
		logging.L().WithError(err).Error("record maintenance failed")
		http.Error(w, "operation failed", http.StatusInternalServerError)
	}
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func instanceIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

// authorFromForm parses the author form; the returned string is a parse
// error message, empty on success.
func authorFromForm(r *http.Request) (*models.Author, string) {
	author := &models.Author{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
	}

	birth, err := parseDateField(r.FormValue("date_of_birth"))
	if err != nil {
		return author, "Enter a valid date of birth"
	}
	author.DateOfBirth = birth

	death, err := parseDateField(r.FormValue("date_of_death"))
	if err != nil {
		return author, "Enter a valid date of death"
	}
	author.DateOfDeath = death

	return author, ""
}

// bookFromForm parses the book form.
func bookFromForm(r *http.Request) (*models.Book, string) {
	book := &models.Book{
		Title:    r.FormValue("title"),
		Summary:  r.FormValue("summary"),
		ISBN:     r.FormValue("isbn"),
		Language: r.FormValue("language"),
	}

	if a := r.FormValue("author_id"); a != "" {
		authorID, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return book, "Select a valid author"
		}
		book.AuthorID = &authorID
	}

	if err := r.ParseForm(); err != nil {
		return book, "Invalid form submission"
	}
	for _, g := range r.Form["genre_ids"] {
		genreID, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			return book, "Select valid genres"
		}
		book.Genres = append(book.Genres, models.Genre{ID: genreID})
	}

	return book, ""
}

// instanceFromForm parses the book copy form.
func instanceFromForm(r *http.Request, id uuid.UUID) (*models.BookInstance, string) {
	instance := &models.BookInstance{
		ID:      id,
		Imprint: r.FormValue("imprint"),
		Status:  models.InstanceStatus(r.FormValue("status")),
	}

	bookID, err := strconv.ParseInt(r.FormValue("book_id"), 10, 64)
	if err != nil {
		return instance, "Select a valid book"
	}
	instance.BookID = bookID

	dueBack, err := parseDateField(r.FormValue("due_back"))
	if err != nil {
		return instance, "Enter a valid due date"
	}
	instance.DueBack = dueBack

	if b := r.FormValue("borrower_id"); b != "" {
		borrowerID, err := strconv.ParseInt(b, 10, 64)
		if err != nil {
			return instance, "Enter a valid borrower"
		}
		instance.BorrowerID = &borrowerID
	}

	return instance, ""
}
