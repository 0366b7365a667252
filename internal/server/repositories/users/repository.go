// Package users contains the user repository for the server's PostgreSQL
// storage.
package users

import (
	"context"

	"github.com/carechain/carechain/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
