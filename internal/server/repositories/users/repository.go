// Package users declares and implements the user repository of the auth server.
package users

import (
	"context"

	"github.com/dmitrijs2005/foodfinder/internal/server/models"
)

type Repository interface {
	// Create inserts user. A taken email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail yields common.ErrorNotFound for unknown emails.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID yields common.ErrorNotFound for unknown ids.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
