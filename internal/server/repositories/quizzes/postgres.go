package quizzes

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

func (r *PostgresRepository) FindAllByRecordID(ctx context.Context, recordID int64) ([]models.Quiz, error) {
	query :=
		`SELECT quiz_id, record_id, question, answer FROM quizzes
		 WHERE record_id = $1
		 ORDER BY quiz_id`

	rows, err := r.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Quiz
	for rows.Next() {
		var q models.Quiz
		if err := rows.Scan(&q.ID, &q.RecordID, &q.Question, &q.Answer); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByRecordID(ctx context.Context, recordID int64) error {
	query := `DELETE FROM quizzes WHERE record_id = $1`
	if _, err := r.db.ExecContext(ctx, query, recordID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
