package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/y2k2/globa/internal/logging"
	"github.com/y2k2/globa/internal/server/models"
	"github.com/y2k2/globa/internal/server/push"
	"github.com/y2k2/globa/internal/server/repositories/repomanager"
)

const (
	titleUploadFailed    = "업로드 실패"
	bodyUploadFailed     = "업로드 실패하였습니다.\n나중에 다시 시도해주세요."
	titleUploadSucceeded = "업로드 성공"
	titleNewUpload       = "새로운 업로드"
)

func successBody(recordTitle string) string {
	return fmt.Sprintf("%s의 업로드 성공하였습니다.", recordTitle)
}

func shareBody(recordTitle string) string {
	return fmt.Sprintf("%s이(가) 업로드 되었습니다.", recordTitle)
}

// Dispatcher turns domain events into push messages. It never returns an
// error; every outcome is reported as a push.Result and logged here.
type Dispatcher struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gateway     push.Gateway
	logger      logging.Logger
}

func NewDispatcher(db *sql.DB, m repomanager.RepositoryManager, gateway push.Gateway, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		db:          db,
		repomanager: m,
		gateway:     gateway,
		logger:      logger.With("module", "dispatcher"),
	}
}

// NotifyUser sends at most one message to user. Users who opted out of upload
// notifications or have no registered device are skipped.
func (d *Dispatcher) NotifyUser(ctx context.Context, title, body string, user *models.User) push.Result {
	if user == nil || !user.UploadNotify || !user.HasDevice() {
		return push.Result{Skipped: true}
	}

	err := d.gateway.Send(ctx, push.Message{Token: user.Token(), Title: title, Body: body})
	if err != nil {
		d.logger.Error(ctx, "push send failed", "userId", user.ID, "error", err)
		return push.Result{Failed: 1, Err: err}
	}
	return push.Result{Sent: 1}
}

// NotifyFolderShares sends one batch addressed to every user the folder is
// shared with, except fromUserID. Recipients must have share notifications on
// and a registered device. No batch is submitted when nobody qualifies.
func (d *Dispatcher) NotifyFolderShares(ctx context.Context, body string, fromUserID, folderID int64) push.Result {
	shares, err := d.repomanager.FolderShares(d.db).FindAllByFolderID(ctx, folderID)
	if err != nil {
		d.logger.Error(ctx, "folder share lookup failed", "folderId", folderID, "error", err)
		return push.Result{Err: err}
	}

	msgs := make([]push.Message, 0, len(shares))
	for _, s := range shares {
		u := s.TargetUser
		if u.ID == fromUserID || !u.ShareNotify || !u.HasDevice() {
			continue
		}
		msgs = append(msgs, push.Message{Token: u.Token(), Title: titleNewUpload, Body: body})
	}
	if len(msgs) == 0 {
		return push.Result{Skipped: true}
	}

	res, err := d.gateway.SendBatch(ctx, msgs)
	if err != nil {
		d.logger.Debug(ctx, "push batch failed", "folderId", folderID, "recipients", len(msgs), "error", err)
		return push.Result{Sent: res.SuccessCount, Failed: len(msgs) - res.SuccessCount, Err: err}
	}
	if res.FailureCount > 0 {
		d.logger.Debug(ctx, "push batch partially failed", "folderId", folderID, "failed", res.FailureCount)
	}
	return push.Result{Sent: res.SuccessCount, Failed: res.FailureCount}
}
