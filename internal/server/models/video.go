package models

import "time"

// Video describes an uploaded recording. The bytes live in object storage
// under StorageKey; OwnerID is empty for anonymous uploads.
type Video struct {
	ID          string
	OwnerID     string
	StorageKey  string
	ContentType string
	FileName    string
	SizeBytes   int64
	CreatedAt   time.Time
}
