package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrUnavailable = errors.New("object unavailable")
)

// ObjectInfo is the metadata known about a stored file before streaming it.
type ObjectInfo struct {
	Name        string
	Size        int64 // -1 when unknown
	ContentType string
	ModTime     time.Time
}

// Source reads files from one storage backend.
type Source interface {
	// Stat returns metadata without reading the body.
	// Remote sources perform a HEAD-style probe.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// Open returns the file body. The caller must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// cancelOnClose releases a request context once the body has been consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
