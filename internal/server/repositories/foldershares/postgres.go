package foldershares

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

func (r *PostgresRepository) FindAllByFolderID(ctx context.Context, folderID int64) ([]models.FolderShare, error) {
	query :=
		`SELECT fs.folder_share_id, fs.folder_id, fs.owner_id, fs.created_at,
		        u.user_id, u.name, u.notification_token, u.upload_nofi, u.share_nofi, u.created_at
		 FROM folder_shares fs
		 JOIN users u ON u.user_id = fs.target_user_id
		 WHERE fs.folder_id = $1
		 ORDER BY fs.folder_share_id`

	rows, err := r.db.QueryContext(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.FolderShare
	for rows.Next() {
		var (
			s     models.FolderShare
			token sql.NullString
		)
		err := rows.Scan(&s.ID, &s.FolderID, &s.OwnerID, &s.CreatedAt,
			&s.TargetUser.ID, &s.TargetUser.Name, &token,
			&s.TargetUser.UploadNotify, &s.TargetUser.ShareNotify, &s.TargetUser.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if token.Valid {
			s.TargetUser.NotificationToken = &token.String
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
