package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"library-catalog/internal/authz"
	"library-catalog/internal/availability"
	"library-catalog/internal/logging"
	"library-catalog/internal/middleware"
	"library-catalog/internal/postgres"
	"library-catalog/internal/renewal"
)

// dateInputFormat is the wire format of HTML date inputs.
const dateInputFormat = "2006-01-02"

// LoansHandler serves the borrowed listings and the renewal form.
type LoansHandler struct {
	myLoansTemplate  *template.Template
	allLoansTemplate *template.Template
	renewTemplate    *template.Template
	avail            *availability.Service
	renewals         *renewal.Workflow
}

// NewLoansHandler creates the loans handler.
func NewLoansHandler(avail *availability.Service, renewals *renewal.Workflow) *LoansHandler {
	return &LoansHandler{
		myLoansTemplate:  loadTemplate("borrowed_user.html"),
		allLoansTemplate: loadTemplate("borrowed_all.html"),
		renewTemplate:    loadTemplate("renew_form.html"),
		avail:            avail,
		renewals:         renewals,
	}
}

// ShowMyLoans handles GET /loans/my.
func (h *LoansHandler) ShowMyLoans(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	instances, err := h.avail.ListBorrowedByUser(r.Context(), caller)
	if err != nil {
		if errors.Is(err, authz.ErrNotAuthorized) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		logging.L().WithError(err).Error("listing user loans")
		http.Error(w, "error listing loans", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Instances"] = instances

	render(w, h.myLoansTemplate, data)
}

// ShowAllLoans handles GET /loans/all, the all-borrowed view renewal
// redirects to.
func (h *LoansHandler) ShowAllLoans(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())

	instances, err := h.avail.ListAllBorrowed(r.Context(), caller)
	if err != nil {
		if errors.Is(err, authz.ErrNotAuthorized) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		logging.L().WithError(err).Error("listing all loans")
		http.Error(w, "error listing loans", http.StatusInternalServerError)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Instances"] = instances

	render(w, h.allLoansTemplate, data)
}

// ShowRenewForm handles GET /loans/renew/{id}: the renewal form with the
// proposed default date filled in.
func (h *LoansHandler) ShowRenewForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	caller := middleware.UserFromContext(r.Context())

	instance, proposed, err := h.renewals.PrepareRenewal(r.Context(), caller, id)
	if err != nil {
		h.renderRenewalFailure(w, r, err)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Instance"] = instance
	data["RenewalDate"] = proposed.Format(dateInputFormat)
	data["Error"] = nil

	render(w, h.renewTemplate, data)
}

// HandleRenew handles POST /loans/renew/{id}. A validation failure
// re-renders the form with the submitted date unchanged; success
// redirects to the all-borrowed view.
func (h *LoansHandler) HandleRenew(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	caller := middleware.UserFromContext(r.Context())
	submitted := r.FormValue("renewal_date")

	proposed, err := parseDateField(submitted)
	if err != nil || proposed == nil {
		h.renderRenewError(w, r, id, submitted, "Enter a valid date")
		return
	}

	if err := h.renewals.Renew(r.Context(), caller, id, *proposed); err != nil {
		var validationErr *renewal.ValidationError
		if errors.As(err, &validationErr) {
			h.renderRenewError(w, r, id, submitted, validationErr.Reason)
			return
		}
		h.renderRenewalFailure(w, r, err)
		return
	}

	http.Redirect(w, r, "/loans/all", http.StatusSeeOther)
}

// renderRenewError re-presents the renewal form with the submitted input
// and the validation reason.
func (h *LoansHandler) renderRenewError(w http.ResponseWriter, r *http.Request, id uuid.UUID, submitted, reason string) {
	user := middleware.UserFromContext(r.Context())

	instance, _, err := h.renewals.PrepareRenewal(r.Context(), user, id)
	if err != nil {
		h.renderRenewalFailure(w, r, err)
		return
	}

	sess := middleware.GetSessionFromContext(r.Context())
	data := NewTemplateData(sess)
	data["Instance"] = instance
	data["RenewalDate"] = submitted
	data["Error"] = reason

	render(w, h.renewTemplate, data)
}

// renderRenewalFailure maps workflow errors onto HTTP statuses.
func (h *LoansHandler) renderRenewalFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authz.ErrNotAuthorized):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, postgres.ErrNotFound):
		http.NotFound(w, r)
	default:
		logging.L().WithError(err).Error("renewal failed")
		http.Error(w, "renewal failed", http.StatusInternalServerError)
	}
}
