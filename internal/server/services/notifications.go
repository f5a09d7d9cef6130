package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/y2k2/globa/internal/server/models"
	"github.com/y2k2/globa/internal/server/repositories/repomanager"
)

const (
	DefaultNotificationCount = 10
	MaxNotificationCount     = 100
)

type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager) *NotificationService {
	return &NotificationService{db: db, repomanager: m}
}

// List returns one page of the user's notifications, newest first. Pages are
// 1-based; a non-positive count selects the default page size.
func (s *NotificationService) List(ctx context.Context, userID int64, count, page int) ([]models.Notification, error) {
	if count <= 0 {
		count = DefaultNotificationCount
	}
	count = min(count, MaxNotificationCount)
	page = max(page, 1)

	items, err := s.repomanager.Notifications(s.db).ListByToUser(ctx, userID, count, (page-1)*count)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}
