// Package sections stores the time-ranged subdivisions of a record.
package sections

import (
	"context"

	"github.com/y2k2/globa/internal/server/models"
)

type Repository interface {
	FindAllByRecordID(ctx context.Context, recordID int64) ([]models.Section, error)
	DeleteByRecordID(ctx context.Context, recordID int64) error
}
