package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"library-catalog/internal/authz"
	"library-catalog/internal/availability"
	"library-catalog/internal/handlers"
	"library-catalog/internal/logging"
	"library-catalog/internal/maintenance"
	authmw "library-catalog/internal/middleware"
	"library-catalog/internal/postgres"
	"library-catalog/internal/renewal"
	"library-catalog/internal/session"
)

func main() {
	envErr := godotenv.Load()

	logging.Init()
	log := logging.L()

	if envErr != nil {
		log.Info("no .env file, using system environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	store, err := postgres.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.WithError(err).Fatal("connecting to the catalog store")
	}
	defer store.Close()
	log.Info("catalog store connected")

	session.Init()
	log.Info("session manager initialized")

	caps := authz.NewRoleChecker()
	avail := availability.NewService(store, caps)
	renewals := renewal.NewWorkflow(store, caps)
	records := maintenance.NewWorkflow(store, caps)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(authmw.SessionMiddleware)

	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	indexHandler := handlers.NewIndexHandler(avail)
	booksHandler := handlers.NewBooksHandler(store)
	authorsHandler := handlers.NewAuthorsHandler(store)
	authHandler := handlers.NewAuthHandler(store)
	loansHandler := handlers.NewLoansHandler(avail, renewals)
	manageHandler := handlers.NewManageHandler(store, records)

	// Home page with the catalog summary - public
	r.Get("/", indexHandler.ServeHTTP)

	// Authentication
	r.Get("/login", authHandler.ShowLoginPage)
	r.Post("/login", authHandler.HandleLogin)
	r.Get("/register", authHandler.ShowRegisterPage)
	r.Post("/register", authHandler.HandleRegister)
	r.Post("/logout", authHandler.HandleLogout)

	// Public catalog
	r.Route("/books", func(r chi.Router) {
		r.Get("/", booksHandler.ListBooks)
		r.Get("/{id}", booksHandler.ShowBook)
	})
	r.Route("/authors", func(r chi.Router) {
		r.Get("/", authorsHandler.ListAuthors)
		r.Get("/{id}", authorsHandler.ShowAuthor)
	})

	// Loans
	r.Route("/loans", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth)
			r.Get("/my", loansHandler.ShowMyLoans)
		})

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireCapability(caps, authz.CapViewAllLoans))
			r.Get("/all", loansHandler.ShowAllLoans)
		})

		// The renewal workflow must not be reachable without the
		// mark-returned capability.
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireCapability(caps, authz.CapMarkReturned))
			r.Get("/renew/{id}", loansHandler.ShowRenewForm)
			r.Post("/renew/{id}", loansHandler.HandleRenew)
		})
	})

	// Staff record maintenance
	r.Route("/manage", func(r chi.Router) {
		r.Use(authmw.RequireCapability(caps, authz.CapMarkReturned))

		r.Get("/authors/new", manageHandler.ShowNewAuthorForm)
		r.Post("/authors/new", manageHandler.CreateAuthor)
		r.Get("/authors/{id}/edit", manageHandler.ShowEditAuthorForm)
		r.Post("/authors/{id}/edit", manageHandler.UpdateAuthor)
		r.Get("/authors/{id}/delete", manageHandler.ShowDeleteAuthor)
		r.Post("/authors/{id}/delete", manageHandler.DeleteAuthor)

		r.Get("/books/new", manageHandler.ShowNewBookForm)
		r.Post("/books/new", manageHandler.CreateBook)
		r.Get("/books/{id}/edit", manageHandler.ShowEditBookForm)
		r.Post("/books/{id}/edit", manageHandler.UpdateBook)
		r.Get("/books/{id}/delete", manageHandler.ShowDeleteBook)
		r.Post("/books/{id}/delete", manageHandler.DeleteBook)

		r.Get("/genres", manageHandler.ListGenres)
		r.Post("/genres", manageHandler.CreateGenre)
		r.Get("/genres/{id}/edit", manageHandler.ShowEditGenreForm)
		r.Post("/genres/{id}/edit", manageHandler.RenameGenre)
		r.Post("/genres/{id}/delete", manageHandler.DeleteGenre)

		r.Get("/instances/new", manageHandler.ShowNewInstanceForm)
		r.Post("/instances/new", manageHandler.CreateInstance)
		r.Get("/instances/{id}/edit", manageHandler.ShowEditInstanceForm)
		r.Post("/instances/{id}/edit", manageHandler.UpdateInstance)
		r.Get("/instances/{id}/delete", manageHandler.ShowDeleteInstance)
		r.Post("/instances/{id}/delete", manageHandler.DeleteInstance)
	})

	log.Infof("server listening on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
