package keywords

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

func (r *PostgresRepository) FindAllByRecordID(ctx context.Context, recordID int64) ([]models.Keyword, error) {
	query :=
		`SELECT keyword_id, record_id, word, importance FROM keywords
		 WHERE record_id = $1
		 ORDER BY importance DESC, keyword_id`

	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Keyword
	for rows.Next() {
		var k models.Keyword
		if err := rows.Scan(&k.ID, &k.RecordID, &k.Word, &k.Importance); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByRecordID(ctx context.Context, recordID int64) error {
	query := `DELETE FROM keywords WHERE record_id = $1`
	if _, err := r.db.ExecContext(ctx, query, recordID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
