package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"library-catalog/internal/logging"
	"library-catalog/internal/session"
)

const templateDir = "web/templates/"

// pageSize is the number of rows per list page.
const pageSize = 10

// TemplateData carries the data shared by all templates.
type TemplateData map[string]interface{}

// NewTemplateData builds template data with the logged-in user attached.
func NewTemplateData(sess *session.Session) TemplateData {
	data := make(TemplateData)

	if sess != nil {
		data["User"] = sess.User
		data["IsLoggedIn"] = true
		data["IsLibrarian"] = sess.User.IsLibrarian()
	} else {
		data["User"] = nil
		data["IsLoggedIn"] = false
		data["IsLibrarian"] = false
	}

	return data
}

// Set stores a value in the template data.
func (t TemplateData) Set(key string, value interface{}) TemplateData {
	t[key] = value
	return t
}

// templateFuncs are the helpers available to every page template.
var templateFuncs = template.FuncMap{
	"deref": func(p *int64) int64 {
		if p == nil {
			return 0
		}
		return *p
	},
}

// loadTemplate parses one page template, logging a failure instead of
// aborting startup; serving then reports the missing template.
func loadTemplate(name string) *template.Template {
	tmpl, err := template.New(name).Funcs(templateFuncs).ParseFiles(templateDir + name)
	if err != nil {
		logging.L().WithError(err).Errorf("loading template %s", name)
		return nil
	}
	return tmpl
}

// render executes a page template.
func render(w http.ResponseWriter, tmpl *template.Template, data TemplateData) {
	if tmpl == nil {
		http.Error(w, "template not loaded", http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		logging.L().WithError(err).Error("rendering template")
		http.Error(w, "error rendering page", http.StatusInternalServerError)
	}
}

// pageParam reads the 1-based page number from the query string.
func pageParam(r *http.Request) int {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}

// parseDateField parses an optional yyyy-mm-dd form field.
func parseDateField(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// totalPages derives the page count for a listing.
func totalPages(count int) int {
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}
