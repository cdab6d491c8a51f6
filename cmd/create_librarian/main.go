package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"library-catalog/internal/models"
	"library-catalog/internal/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}

	email := flag.String("email", "librarian@library.local", "librarian email")
	password := flag.String("password", "", "librarian password (required)")
	firstName := flag.String("first-name", "Head", "first name")
	lastName := flag.String("last-name", "Librarian", "last name")
	flag.Parse()

	if *password == "" {
		log.Fatal("the -password flag is required")
	}

	store, err := postgres.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("connecting to the catalog store: %v", err)
	}
	defer store.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	user := &models.User{
		Email:        *email,
		PasswordHash: string(hash),
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         models.RoleLibrarian,
		IsActive:     true,
	}

	if err := store.CreateUser(context.Background(), user); err != nil {
		log.Fatalf("creating librarian account: %v", err)
	}

	fmt.Println("=== Librarian account created ===")
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Role:  %s\n", user.Role)
	fmt.Println("\nYou can now log in to the staff pages.")
}
