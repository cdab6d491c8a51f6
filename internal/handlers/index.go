package handlers

import (
	"html/template"
	"net/http"

	"library-catalog/internal/availability"
	"library-catalog/internal/logging"
	"library-catalog/internal/middleware"
)

// IndexHandler serves the home page with the catalog summary counts.
type IndexHandler struct {
	homeTemplate *template.Template
	avail        *availability.Service
}

// NewIndexHandler creates the home page handler.
func NewIndexHandler(avail *availability.Service) *IndexHandler {
	return &IndexHandler{
		homeTemplate: loadTemplate("home.html"),
		avail:        avail,
	}
}

// ServeHTTP handles GET /.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	summary, err := h.avail.Summary(r.Context())
	if err != nil {
		logging.L().WithError(err).Error("loading catalog summary")
		http.Error(w, "error loading catalog summary", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["NumBooks"] = summary.Books
	data["NumInstances"] = summary.Instances
	data["NumAvailable"] = summary.AvailableInstances
	data["NumAuthors"] = summary.Authors

	render(w, h.homeTemplate, data)
}
