// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account that can own folders, upload records and receive pushes.
type User struct {
	ID   int64
	Name string
	// NotificationToken is the device push token; nil when no device is registered.
	NotificationToken *string
	// UploadNotify opts the user into pushes about their own uploads.
	UploadNotify bool
	// ShareNotify opts the user into pushes about uploads to folders shared with them.
	ShareNotify bool
	CreatedAt   time.Time
}

// HasDevice reports whether the user registered a non-empty push token.
func (u *User) HasDevice() bool {
	return u.NotificationToken != nil && *u.NotificationToken != ""
}

// Token returns the device token or "".
func (u *User) Token() string {
	if u.NotificationToken == nil {
		return ""
	}
	return *u.NotificationToken
}
