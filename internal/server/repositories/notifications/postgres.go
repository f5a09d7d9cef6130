package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/y2k2/globa/internal/dbx"
	"github.com/y2k2/globa/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) error {
	query :=
		`INSERT INTO notifications (type_id, from_user_id, to_user_id, folder_id, record_id, is_read)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING notification_id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		n.Type.String(), n.FromUserID, n.ToUserID, nullInt(n.FolderID), nullInt(n.RecordID), n.IsRead,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByToUser(ctx context.Context, userID int64, limit, offset int) ([]models.Notification, error) {
	query :=
		`SELECT notification_id, type_id, from_user_id, to_user_id, folder_id, record_id, is_read, created_at
		 FROM notifications
		 WHERE to_user_id = $1
		 ORDER BY created_at DESC, notification_id DESC
		 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Notification{}
	for rows.Next() {
		var (
			n        models.Notification
			typeID   string
			folderID sql.NullInt64
			recordID sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &typeID, &n.FromUserID, &n.ToUserID, &folderID, &recordID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if typeID != "" {
			n.Type = models.NotificationType([]rune(typeID)[0])
		}
		if folderID.Valid {
			n.FolderID = &folderID.Int64
		}
		if recordID.Valid {
			n.RecordID = &recordID.Int64
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
