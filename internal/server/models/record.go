package models

import "time"

type Folder struct {
	ID        int64
	OwnerID   int64
	Title     string
	CreatedAt time.Time
}

// FolderShare grants TargetUser access to a folder.
type FolderShare struct {
	ID         int64
	FolderID   int64
	OwnerID    int64
	TargetUser User
	CreatedAt  time.Time
}

// Record is one uploaded recording. All derived artifacts hang off it.
type Record struct {
	ID       int64
	FolderID int64
	UserID   int64
	Title    string
	// StorageKey is the object-storage key of the uploaded audio, if any.
	StorageKey *string
	CreatedAt  time.Time
}
