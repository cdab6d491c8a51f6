package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"library-catalog/internal/logging"
	"library-catalog/internal/middleware"
	"library-catalog/internal/models"
	"library-catalog/internal/postgres"
	"library-catalog/internal/session"
)

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	loginTemplate    *template.Template
	registerTemplate *template.Template
	store            *postgres.Store
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(store *postgres.Store) *AuthHandler {
	return &AuthHandler{
		loginTemplate:    loadTemplate("login.html"),
		registerTemplate: loadTemplate("register.html"),
		store:            store,
	}
}

// ShowLoginPage handles GET /login.
func (h *AuthHandler) ShowLoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, h.loginTemplate, TemplateData{"Error": nil})
}

// HandleLogin handles POST /login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderLoginError(w, "Email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, postgres.ErrNotFound) {
			logging.L().WithError(err).Error("looking up user for login")
		}
		h.renderLoginError(w, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		h.renderLoginError(w, "Invalid email or password")
		return
	}

	if !user.IsActive {
		h.renderLoginError(w, "This account is disabled")
		return
	}

	sess, err := session.GetManager().CreateSession(user)
	if err != nil {
		logging.L().WithError(err).Error("creating session")
		h.renderLoginError(w, "Could not log in, try again")
		return
	}

	session.SetSessionCookie(w, sess.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowRegisterPage handles GET /register.
func (h *AuthHandler) ShowRegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, h.registerTemplate, TemplateData{"Error": nil})
}

// HandleRegister handles POST /register. New accounts are patrons;
// librarian accounts are provisioned with the create_librarian tool.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	firstName := r.FormValue("first_name")
	lastName := r.FormValue("last_name")

	if email == "" || password == "" {
		h.renderRegisterError(w, "Email and password are required")
		return
	}
	if len(password) < 8 {
		h.renderRegisterError(w, "Password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logging.L().WithError(err).Error("hashing password")
		h.renderRegisterError(w, "Could not register, try again")
		return
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RolePatron,
		IsActive:     true,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		logging.L().WithError(err).Error("creating user")
		h.renderRegisterError(w, "Could not register, the email may already be in use")
		return
	}

	sess, err := session.GetManager().CreateSession(user)
	if err != nil {
		logging.L().WithError(err).Error("creating session")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	session.SetSessionCookie(w, sess.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout handles POST /logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.GetSessionFromContext(r.Context()); sess != nil {
		session.GetManager().DeleteSession(sess.ID)
	}
	session.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, msg string) {
	render(w, h.loginTemplate, TemplateData{"Error": msg})
}

func (h *AuthHandler) renderRegisterError(w http.ResponseWriter, msg string) {
	render(w, h.registerTemplate, TemplateData{"Error": msg})
}
