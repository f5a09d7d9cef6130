package analyses

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

func (r *PostgresRepository) FindAllBySectionID(ctx context.Context, sectionID int64) ([]models.Analysis, error) {
	query :=
		`SELECT analysis_id, section_id, content FROM analyses
		 WHERE section_id = $1
		 ORDER BY analysis_id`

	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Analysis
	for rows.Next() {
		var a models.Analysis
		if err := rows.Scan(&a.ID, &a.SectionID, &a.Content); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByRecordID(ctx context.Context, recordID int64) error {
	query :=
		`DELETE FROM analyses
		 WHERE section_id IN (SELECT section_id FROM sections WHERE record_id = $1)`

	if _, err := r.db.ExecContext(ctx, query, recordID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
