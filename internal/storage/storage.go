package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains blob storage abstractions for uploaded files.
// Backends map an untrusted client name onto a location inside one managed root
// and stream bytes in and out without buffering whole payloads in memory.

var (
	// ErrStorageInit reports an unusable storage root.
	ErrStorageInit = errors.New("storage root unusable")
	// ErrUnsafePath reports a name or path that would escape the managed root.
	ErrUnsafePath = errors.New("unsafe path")
	// ErrNotFound reports that no regular blob exists at a path.
	ErrNotFound = errors.New("blob not found")
)

// PutObjectOptions define optional parameters for storing blobs.
// Size is the declared number of bytes, or -1 if unknown.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored blob.
// Path is the canonical handle accepted by Get.
type ObjectInfo struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a blob store rooted at one managed location.
// Implementations are safe for concurrent use by multiple goroutines.
type Storage interface {
	// Put streams r into the blob addressed by the sanitized form of name, replacing any
	// previous blob at the same location, and returns its canonical path.
	Put(ctx context.Context, name string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens the blob at a canonical path previously returned by Put.
	// The caller must close the returned reader.
	Get(ctx context.Context, path string) (io.ReadCloser, ObjectInfo, error)
}

// contextReader aborts a stream once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
