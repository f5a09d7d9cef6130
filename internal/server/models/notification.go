package models

import "time"

// NotificationType is the single-character code stored in notifications.type_id.
type NotificationType rune

// NotificationUploadSucceeded marks a finished upload. The rest of the
// taxonomy is owned by the API service.
const NotificationUploadSucceeded NotificationType = '6'

func (t NotificationType) String() string {
	return string(rune(t))
}

// Notification is a persisted in-app event.
type Notification struct {
	ID         int64
	Type       NotificationType
	FromUserID int64
	ToUserID   int64
	FolderID   *int64
	RecordID   *int64
	IsRead     bool
	CreatedAt  time.Time
}
