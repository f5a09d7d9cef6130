// Package foldershares reads folder access grants.
package foldershares

import (
	"context"

	"github.com/y2k2/globa/internal/server/models"
)

type Repository interface {
	// FindAllByFolderID returns the folder's grants with the target users loaded.
	FindAllByFolderID(ctx context.Context, folderID int64) ([]models.FolderShare, error)
}
