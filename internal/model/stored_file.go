package model

import "time"

// StoredFile represents one persisted upload.
// It carries JSON tags for the API but no database tags; repositories map columns explicitly.
// Filename and ContentType are client-supplied and untrusted; StoragePath is the only
// handle used to read the blob back.
type StoredFile struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"-"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
