// Package services contains the server-side business logic: reconciling
// processed uploads, dispatching push notifications and listing in-app
// notifications.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/y2k2/globa/internal/common"
	"github.com/y2k2/globa/internal/dbx"
	"github.com/y2k2/globa/internal/logging"
	"github.com/y2k2/globa/internal/server/events"
	"github.com/y2k2/globa/internal/server/models"
	"github.com/y2k2/globa/internal/server/repositories/repomanager"
	"github.com/y2k2/globa/internal/server/storage"
)

// ArtifactState describes what was found for one category of a record.
type ArtifactState int

const (
	ArtifactAbsent ArtifactState = iota
	ArtifactEmpty
	ArtifactPresent
)

func (s ArtifactState) String() string {
	switch s {
	case ArtifactPresent:
		return "present"
	case ArtifactEmpty:
		return "empty"
	default:
		return "absent"
	}
}

func stateOf(n int) ArtifactState {
	if n > 0 {
		return ArtifactPresent
	}
	return ArtifactEmpty
}

// Checklist is the per-category outcome of reconciling one record.
type Checklist struct {
	Record   ArtifactState
	Sections ArtifactState
	Quizzes  ArtifactState
	Analyses ArtifactState
	Keywords ArtifactState
}

// Valid reports whether the record and every artifact category are present.
func (c Checklist) Valid() bool {
	return c.Record == ArtifactPresent &&
		c.Sections == ArtifactPresent &&
		c.Quizzes == ArtifactPresent &&
		c.Analyses == ArtifactPresent &&
		c.Keywords == ArtifactPresent
}

type reconcileOutcome int

const (
	outcomeUserMissing reconcileOutcome = iota
	outcomeRolledBack
	outcomeFinalized
)

type reconcileResult struct {
	outcome   reconcileOutcome
	user      *models.User
	record    *models.Record
	checklist Checklist
}

// CompletionService reacts to pipeline outcomes for uploaded records.
//
// Events for the same record must not be handled concurrently. The consumer
// guarantees this by keying messages with the record id and reading each
// partition from a single worker.
type CompletionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	dispatcher  *Dispatcher
	store       storage.ObjectStore
	logger      logging.Logger
}

func NewCompletionService(db *sql.DB, m repomanager.RepositoryManager, d *Dispatcher, store storage.ObjectStore, logger logging.Logger) *CompletionService {
	return &CompletionService{
		db:          db,
		repomanager: m,
		dispatcher:  d,
		store:       store,
		logger:      logger.With("module", "completion"),
	}
}

// Succeeded validates the artifacts of a processed record in one transaction.
// A complete record gets a notification row, and after commit the folder's
// share targets and the uploader are notified. An incomplete record has all
// of its artifacts and the record itself deleted, and the uploader receives a
// failure push after commit.
//
// Only database errors are returned; push and storage failures are logged.
// Redelivery of an already finalized event notifies again.
func (s *CompletionService) Succeeded(ctx context.Context, ev events.Event) error {
	var res reconcileResult
	err := dbx.WithTx(ctx, s.db, dbx.ReadCommitted(), func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		res, err = s.reconcile(ctx, tx, ev)
		return err
	})
	if err != nil {
		return fmt.Errorf("reconcile record %d: %w", ev.RecordID, err)
	}

	switch res.outcome {
	case outcomeRolledBack:
		s.cleanupObject(ctx, res.record)
		r := s.dispatcher.NotifyUser(ctx, titleUploadFailed, bodyUploadFailed, res.user)
		s.logger.Info(ctx, "record rolled back",
			"userId", ev.UserID, "recordId", ev.RecordID,
			"record", res.checklist.Record.String(),
			"sections", res.checklist.Sections.String(),
			"quizzes", res.checklist.Quizzes.String(),
			"analyses", res.checklist.Analyses.String(),
			"keywords", res.checklist.Keywords.String(),
			"pushSent", r.Sent)
	case outcomeFinalized:
		shared := s.dispatcher.NotifyFolderShares(ctx, shareBody(res.record.Title), res.user.ID, res.record.FolderID)
		direct := s.dispatcher.NotifyUser(ctx, titleUploadSucceeded, successBody(res.record.Title), res.user)
		s.logger.Info(ctx, "record finalized",
			"userId", ev.UserID, "recordId", ev.RecordID,
			"sharePushSent", shared.Sent, "pushSent", direct.Sent)
	}
	return nil
}

func (s *CompletionService) reconcile(ctx context.Context, tx dbx.DBTX, ev events.Event) (reconcileResult, error) {
	user, err := s.repomanager.Users(tx).FindByID(ctx, ev.UserID)
	if errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "User not found", "userId", ev.UserID, "recordId", ev.RecordID)
		return reconcileResult{outcome: outcomeUserMissing}, nil
	}
	if err != nil {
		return reconcileResult{}, err
	}

	res := reconcileResult{user: user}
	cl := &res.checklist

	record, err := s.repomanager.Records(tx).FindByID(ctx, ev.RecordID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		s.logger.Warn(ctx, "Record not found", "userId", ev.UserID, "recordId", ev.RecordID)
		cl.Record = ArtifactAbsent
	case err != nil:
		return reconcileResult{}, err
	default:
		res.record = record
		cl.Record = ArtifactPresent
	}

	sections, err := s.repomanager.Sections(tx).FindAllByRecordID(ctx, ev.RecordID)
	if err != nil {
		return reconcileResult{}, err
	}
	if cl.Sections = stateOf(len(sections)); cl.Sections != ArtifactPresent {
		s.logger.Warn(ctx, "Sections not found", "userId", ev.UserID, "recordId", ev.RecordID)
	}

	quizzes, err := s.repomanager.Quizzes(tx).FindAllByRecordID(ctx, ev.RecordID)
	if err != nil {
		return reconcileResult{}, err
	}
	if cl.Quizzes = stateOf(len(quizzes)); cl.Quizzes != ArtifactPresent {
		s.logger.Warn(ctx, "Quizzes not found", "userId", ev.UserID, "recordId", ev.RecordID)
	}

	analysisRepo := s.repomanager.Analyses(tx)
	analyses := 0
	for _, section := range sections {
		found, err := analysisRepo.FindAllBySectionID(ctx, section.ID)
		if err != nil {
			return reconcileResult{}, err
		}
		analyses += len(found)
	}
	if cl.Analyses = stateOf(analyses); cl.Analyses != ArtifactPresent {
		s.logger.Warn(ctx, "Analyses not found", "userId", ev.UserID, "recordId", ev.RecordID)
	}

	keywords, err := s.repomanager.Keywords(tx).FindAllByRecordID(ctx, ev.RecordID)
	if err != nil {
		return reconcileResult{}, err
	}
	if cl.Keywords = stateOf(len(keywords)); cl.Keywords != ArtifactPresent {
		s.logger.Warn(ctx, "Keywords not found", "userId", ev.UserID, "recordId", ev.RecordID)
	}

	if !cl.Valid() {
		if err := s.rollbackArtifacts(ctx, tx, ev.RecordID, res.record != nil); err != nil {
			return reconcileResult{}, err
		}
		res.outcome = outcomeRolledBack
		return res, nil
	}

	n := &models.Notification{
		Type:       models.NotificationUploadSucceeded,
		FromUserID: user.ID,
		ToUserID:   user.ID,
		FolderID:   &record.FolderID,
		RecordID:   &record.ID,
	}
	if err := s.repomanager.Notifications(tx).Create(ctx, n); err != nil {
		return reconcileResult{}, err
	}
	res.outcome = outcomeFinalized
	return res, nil
}

// rollbackArtifacts deletes children before parents: analyses reference
// sections, everything else references the record.
func (s *CompletionService) rollbackArtifacts(ctx context.Context, tx dbx.DBTX, recordID int64, deleteRecord bool) error {
	if err := s.repomanager.Quizzes(tx).DeleteByRecordID(ctx, recordID); err != nil {
		return err
	}
	if err := s.repomanager.Analyses(tx).DeleteByRecordID(ctx, recordID); err != nil {
		return err
	}
	if err := s.repomanager.Sections(tx).DeleteByRecordID(ctx, recordID); err != nil {
		return err
	}
	if err := s.repomanager.Keywords(tx).DeleteByRecordID(ctx, recordID); err != nil {
		return err
	}
	if deleteRecord {
		return s.repomanager.Records(tx).Delete(ctx, recordID)
	}
	return nil
}

func (s *CompletionService) cleanupObject(ctx context.Context, record *models.Record) {
	if record == nil || record.StorageKey == nil || *record.StorageKey == "" {
		return
	}
	if err := s.store.Delete(ctx, *record.StorageKey); err != nil {
		s.logger.Warn(ctx, "uploaded object cleanup failed", "recordId", record.ID, "key", *record.StorageKey, "error", err)
	}
}

// Failed handles an explicit failure reported by the pipeline. Nothing is
// written; the uploader is told to retry later.
func (s *CompletionService) Failed(ctx context.Context, ev events.Event) error {
	s.logger.Error(ctx, "Upload processing failed", "userId", ev.UserID, "recordId", ev.RecordID, "message", ev.Message)

	user, err := s.repomanager.Users(s.db).FindByID(ctx, ev.UserID)
	if errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "User not found", "userId", ev.UserID, "recordId", ev.RecordID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user %d: %w", ev.UserID, err)
	}

	s.dispatcher.NotifyUser(ctx, titleUploadFailed, bodyUploadFailed, user)
	return nil
}
