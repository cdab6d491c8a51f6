package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"library-catalog/internal/logging"
	"library-catalog/internal/middleware"
	"library-catalog/internal/postgres"
)

// BooksHandler serves the public book listing and detail pages.
type BooksHandler struct {
	listTemplate   *template.Template
	detailTemplate *template.Template
	store          *postgres.Store
}

// NewBooksHandler creates the public books handler.
func NewBooksHandler(store *postgres.Store) *BooksHandler {
	return &BooksHandler{
		listTemplate:   loadTemplate("books_list.html"),
		detailTemplate: loadTemplate("book_detail.html"),
		store:          store,
	}
}

// ListBooks handles GET /books.
func (h *BooksHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	books, err := h.store.ListBooks(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		logging.L().WithError(err).Error("listing books")
		http.Error(w, "error listing books", http.StatusInternalServerError)
		return
	}

	count, err := h.store.CountBooks(r.Context())
	if err != nil {
		logging.L().WithError(err).Error("counting books")
		http.Error(w, "error listing books", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Books"] = books
	data["CurrentPage"] = page
	data["TotalPages"] = totalPages(count)

	render(w, h.listTemplate, data)
}

// ShowBook handles GET /books/{id}.
func (h *BooksHandler) ShowBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	book, err := h.store.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logging.L().WithError(err).Error("fetching book")
		http.Error(w, "error fetching book", http.StatusInternalServerError)
		return
	}

	instances, err := h.store.ListInstancesForBook(r.Context(), id)
	if err != nil {
		logging.L().WithError(err).Error("listing book instances")
		http.Error(w, "error fetching book", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Book"] = book
	data["Instances"] = instances

	render(w, h.detailTemplate, data)
}
