package records

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

func (r *PostgresRepository) FindByID(ctx context.Context, recordID int64) (*models.Record, error) {
	query :=
		`SELECT record_id, folder_id, user_id, title, storage_key, created_at FROM records
		 WHERE record_id = $1
		 `

	record := &models.Record{}
	var key sql.NullString
	err := r.db.QueryRowContext(ctx, query, recordID).
		Scan(&record.ID, &record.FolderID, &record.UserID, &record.Title, &key, &record.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if key.Valid {
		record.StorageKey = &key.String
	}
	return record, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, recordID int64) error {
	query := `DELETE FROM records WHERE record_id = $1`
	if _, err := r.db.ExecContext(ctx, query, recordID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
