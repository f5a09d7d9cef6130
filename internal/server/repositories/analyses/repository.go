// Package analyses stores the per-section analysis output.
package analyses

import (
	"context"

	"github.com/y2k2/globa/internal/server/models"
)

type Repository interface {
	FindAllBySectionID(ctx context.Context, sectionID int64) ([]models.Analysis, error)
	// DeleteByRecordID removes every analysis attached to any section of the record.
	DeleteByRecordID(ctx context.Context, recordID int64) error
}
