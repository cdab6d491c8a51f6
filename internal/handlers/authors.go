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

// AuthorsHandler serves the public author listing and detail pages.
type AuthorsHandler struct {
	listTemplate   *template.Template
	detailTemplate *template.Template
	store          *postgres.Store
}

// NewAuthorsHandler creates the public authors handler.
func NewAuthorsHandler(store *postgres.Store) *AuthorsHandler {
	return &AuthorsHandler{
		listTemplate:   loadTemplate("authors_list.html"),
		detailTemplate: loadTemplate("author_detail.html"),
		store:          store,
	}
}

// ListAuthors handles GET /authors.
func (h *AuthorsHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	authors, err := h.store.ListAuthors(r.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		logging.L().WithError(err).Error("listing authors")
		http.Error(w, "error listing authors", http.StatusInternalServerError)
		return
	}

	count, err := h.store.CountAuthors(r.Context())
	if err != nil {
		logging.L().WithError(err).Error("counting authors")
		http.Error(w, "error listing authors", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Authors"] = authors
	data["CurrentPage"] = page
	data["TotalPages"] = totalPages(count)

	render(w, h.listTemplate, data)
}

// ShowAuthor handles GET /authors/{id}.
func (h *AuthorsHandler) ShowAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	author, err := h.store.GetAuthor(r.Context(), id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logging.L().WithError(err).Error("fetching author")
		http.Error(w, "error fetching author", http.StatusInternalServerError)
		return
	}

	books, err := h.store.ListBooksByAuthor(r.Context(), id)
	if err != nil {
		logging.L().WithError(err).Error("listing author books")
		http.Error(w, "error fetching author", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Author"] = author
	data["Books"] = books

	render(w, h.detailTemplate, data)
}
