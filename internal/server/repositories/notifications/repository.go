// Package notifications persists in-app notifications.
package notifications

import (
	"context"

	"github.com/y2k2/globa/internal/server/models"
)

type Repository interface {
	// Create inserts n and fills in its ID and CreatedAt.
	Create(ctx context.Context, n *models.Notification) error
	// ListByToUser returns the recipient's notifications, newest first.
	ListByToUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error)
}
