// Package users is the credential store: lookups by email and inserts of new
// identities, backed by PostgreSQL or SQLite.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the narrow read/write contract the authentication service
// needs from storage.
//
// GetUserByEmail matches email exactly, using the column collation of the
// backend (case-sensitive for both PostgreSQL TEXT and SQLite BINARY). It
// returns common.ErrorNotFound when no row matches.
//
// Create inserts user and returns it with store-populated fields set. A
// uniqueness violation on email or user id yields common.ErrorAlreadyExists.
// Any other failure is a wrapped driver error.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
