// Package quizzes stores the question/answer pairs generated for a record.
package quizzes

import (
	"context"

	"github.com/y2k2/globa/internal/server/models"
)

type Repository interface {
	FindAllByRecordID(ctx context.Context, recordID int64) ([]models.Quiz, error)
	DeleteByRecordID(ctx context.Context, recordID int64) error
}
