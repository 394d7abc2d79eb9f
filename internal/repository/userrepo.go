// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/placeshare/placeshare/internal/model"
)

// UserRepository provides access to user accounts.
type UserRepository interface {
	// Create inserts a new user. Returns errs.ErrAlreadyExists on a taken email.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by normalized email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns all users. Password hashes are not loaded.
	List(ctx context.Context) ([]model.User, error)
}
