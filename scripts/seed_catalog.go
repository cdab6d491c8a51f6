package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"library-catalog/internal/models"
	"library-catalog/internal/postgres"
)

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	return &t
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}

	store, err := postgres.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("connecting to the catalog store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	log.Println("seeding genres...")
	genreNames := []string{"Fantasy", "Science Fiction", "Classic", "Non-fiction", "Poetry"}
	genres := make(map[string]*models.Genre, len(genreNames))
	for _, name := range genreNames {
		genre, err := store.CreateGenre(ctx, name)
		if err != nil {
			log.Fatalf("seeding genre %s: %v", name, err)
		}
		genres[name] = genre
	}

	log.Println("seeding authors...")
	authors := []*models.Author{
		{FirstName: "Ursula K.", LastName: "Le Guin", DateOfBirth: date(1929, time.October, 21), DateOfDeath: date(2018, time.January, 22)},
		{FirstName: "George", LastName: "Orwell", DateOfBirth: date(1903, time.June, 25), DateOfDeath: date(1950, time.January, 21)},
		{FirstName: "Octavia E.", LastName: "Butler", DateOfBirth: date(1947, time.June, 22), DateOfDeath: date(2006, time.February, 24)},
		{FirstName: "N. K.", LastName: "Jemisin", DateOfBirth: date(1972, time.September, 19)},
	}
	for _, author := range authors {
		if err := store.CreateAuthor(ctx, author); err != nil {
			log.Fatalf("seeding author %s: %v", author.LastName, err)
		}
	}

	log.Println("seeding books...")
	books := []*models.Book{
		{
			Title:    "A Wizard of Earthsea",
			AuthorID: &authors[0].ID,
			Summary:  "Ged, a young mage, unleashes a shadow upon the world and must hunt it to its end.",
			ISBN:     "9780547722023",
			Language: "English",
			Genres:   []models.Genre{*genres["Fantasy"]},
		},
		{
			Title:    "Nineteen Eighty-Four",
			AuthorID: &authors[1].ID,
			Summary:  "Winston Smith rewrites history for the Ministry of Truth and dreams of rebellion.",
			ISBN:     "9780451524935",
			Language: "English",
			Genres:   []models.Genre{*genres["Classic"], *genres["Science Fiction"]},
		},
		{
			Title:    "Kindred",
			AuthorID: &authors[2].ID,
			Summary:  "Dana is pulled back through time to the antebellum South, again and again.",
			ISBN:     "9780807083697",
			Language: "English",
			Genres:   []models.Genre{*genres["Science Fiction"]},
		},
		{
			Title:    "The Fifth Season",
			AuthorID: &authors[3].ID,
			Summary:  "The world ends for the last time as the Stillness breaks apart.",
			ISBN:     "9780316229296",
			Language: "English",
			Genres:   []models.Genre{*genres["Fantasy"], *genres["Science Fiction"]},
		},
	}
	for _, book := range books {
		if err := store.CreateBook(ctx, book); err != nil {
			log.Fatalf("seeding book %s: %v", book.Title, err)
		}
	}

	log.Println("seeding book copies...")
	for _, book := range books {
		copies := []*models.BookInstance{
			{BookID: book.ID, Imprint: "First edition hardback", Status: models.StatusAvailable},
			{BookID: book.ID, Imprint: "Paperback reprint", Status: models.StatusAvailable},
			{BookID: book.ID, Imprint: "Library binding", Status: models.StatusMaintenance},
		}
		for _, instance := range copies {
			if err := store.CreateInstance(ctx, instance); err != nil {
				log.Fatalf("seeding copy of %s: %v", book.Title, err)
			}
		}
	}

	log.Println("catalog seeded")
}
