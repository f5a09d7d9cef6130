package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/y2k2/globa/internal/common"
	"github.com/y2k2/globa/internal/dbx"
	"github.com/y2k2/globa/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	query :=
		`SELECT user_id, name, notification_token, upload_nofi, share_nofi, created_at FROM users
		 WHERE user_id = $1
		 `

	user := &models.User{}
	var token sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&user.ID, &user.Name, &token, &user.UploadNotify, &user.ShareNotify, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if token.Valid {
		user.NotificationToken = &token.String
	}
	return user, nil
}
