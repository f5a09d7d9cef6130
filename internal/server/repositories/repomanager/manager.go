package repomanager

import (
	"context"
	"database/sql"

	"github.com/y2k2/globa/internal/dbx"
	"github.com/y2k2/globa/internal/server/repositories/analyses"
	"github.com/y2k2/globa/internal/server/repositories/foldershares"
	"github.com/y2k2/globa/internal/server/repositories/keywords"
	"github.com/y2k2/globa/internal/server/repositories/notifications"
	"github.com/y2k2/globa/internal/server/repositories/quizzes"
	"github.com/y2k2/globa/internal/server/repositories/records"
	"github.com/y2k2/globa/internal/server/repositories/sections"
	"github.com/y2k2/globa/internal/server/repositories/users"
)

// RepositoryManager binds repositories to either a *sql.DB or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
	Sections(db dbx.DBTX) sections.Repository
	Quizzes(db dbx.DBTX) quizzes.Repository
	Analyses(db dbx.DBTX) analyses.Repository
	Keywords(db dbx.DBTX) keywords.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	FolderShares(db dbx.DBTX) foldershares.Repository
}
