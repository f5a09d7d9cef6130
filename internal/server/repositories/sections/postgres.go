package sections

import (
	"context"
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

func (r *PostgresRepository) FindAllByRecordID(ctx context.Context, recordID int64) ([]models.Section, error) {
	query :=
		`SELECT section_id, record_id, title, start_time, end_time FROM sections
		 WHERE record_id = $1
		 ORDER BY start_time, section_id`

	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Section
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.ID, &s.RecordID, &s.Title, &s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByRecordID(ctx context.Context, recordID int64) error {
	query := `DELETE FROM sections WHERE record_id = $1`
	if _, err := r.db.ExecContext(ctx, query, recordID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
