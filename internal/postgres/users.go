package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"library-catalog/internal/models"
)

// CreateUser inserts a user account and fills in its assigned ID.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user must not be nil")
	}
	if user.Email == "" {
		return fmt.Errorf("user email must not be empty")
	}

	query, args, err := s.builder().
		Insert(usersTable).
		Rows(goqu.Record{
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"role":          string(user.Role),
			"is_active":     user.IsActive,
		}).
		Returning("id").
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building user insert: %w", err)
	}

	if err := s.db.GetContext(ctx, &user.ID, query, args...); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetUser fetches a user by primary key.
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query, args, err := s.userSelect().
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	var user models.User
	if err := s.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, fmt.Errorf("fetching user %d: %w", id, notFound(err))
	}

	return &user, nil
}

// GetUserByEmail fetches a user by email, for login.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("user email must not be empty")
	}

	query, args, err := s.userSelect().
		Where(goqu.Ex{"email": email}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	var user models.User
	if err := s.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", email, notFound(err))
	}

	return &user, nil
}

func (s *Store) userSelect() *goqu.SelectDataset {
	return s.builder().
		From(usersTable).
		Select("id", "email", "password_hash", "first_name", "last_name", "role", "is_active", "created_at")
}
