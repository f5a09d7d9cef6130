// Package records declares the record repository.
package records

import (
	"context"

	"github.com/y2k2/globa/internal/server/models"
)

type Repository interface {
	// FindByID returns common.ErrorNotFound when the record does not exist.
	FindByID(ctx context.Context, recordID int64) (*models.Record, error)
	// Delete removes the record. Its artifacts must be deleted first.
	Delete(ctx context.Context, recordID int64) error
}
