// Package users declares the user repository used by the notifier.
package users

import (
	"context"

	"github.com/y2k2/globa/internal/server/models"
)

type Repository interface {
	// FindByID returns common.ErrorNotFound when the user does not exist.
	FindByID(ctx context.Context, userID int64) (*models.User, error)
}
