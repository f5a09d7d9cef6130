// Package keywords stores the weighted keywords extracted from a record.
package keywords

import (
	"context"

	"github.com/y2k2/globa/internal/server/models"
)

type Repository interface {
	FindAllByRecordID(ctx context.Context, recordID int64) ([]models.Keyword, error)
	DeleteByRecordID(ctx context.Context, recordID int64) error
}
