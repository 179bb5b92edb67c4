// Package users declares the credential store: user accounts keyed by a
// unique, lowercased email.
package users

import (
	"context"

	"github.com/dmitrijs2005/firewatch/internal/server/models"
)

type Repository interface {
	// Create inserts an account and returns its id. A duplicate email yields
	// common.ErrorDuplicateEmail and leaves the store unchanged.
	Create(ctx context.Context, name, email, passwordHash string) (string, error)

	// GetUserByEmail returns the full record including the password hash, or
	// common.ErrorNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetProfileByID returns the account without its password hash, or
	// common.ErrorNotFound.
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
}
