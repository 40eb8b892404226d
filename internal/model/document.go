package model

import (
	"fmt"
	"time"
)

// DocumentStatus is the workflow state of a document.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusDone       DocumentStatus = "done"
	DocumentStatusCancelled  DocumentStatus = "cancelled"
	DocumentStatusArchived   DocumentStatus = "archived"
)

func ParseDocumentStatus(s string) (DocumentStatus, error) {
	status := DocumentStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown document status %q", s)
	}
	return status, nil
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing, DocumentStatusDone,
		DocumentStatusCancelled, DocumentStatusArchived:
		return true
	}
	return false
}

type Document struct {
	ID                string         `db:"id"`
	Title             string         `db:"title"`
	Content           string         `db:"content"` // Markdown, optional frontmatter
	Status            DocumentStatus `db:"status"`
	Published         bool           `db:"published"`
	Private           bool           `db:"private"`
	PasswordProtected bool           `db:"password_protected"`
	PasswordHash      string         `db:"password_hash"`
	LegacyFileURL     string         `db:"legacy_file_url"` // Single file reference from before multi-file support
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`

	// Loaded from child tables
	Files         []FileRef `db:"-"`
	AssignedUsers UserSet   `db:"-"`
}

// FileRef points at one downloadable file of a document.
// URL is a path relative to the uploads dir, a site upload URL,
// an s3://bucket/key reference, or a remote http(s) URL.
type FileRef struct {
	DocumentID string `db:"document_id"`
	Index      int    `db:"position"`
	URL        string `db:"url"`
	Name       string `db:"name"`
}

// IsArchived reports the terminal archived state.
func (d *Document) IsArchived() bool {
	return d.Status == DocumentStatusArchived
}

// FileList returns the ordered files, falling back to the legacy single reference.
func (d *Document) FileList() []FileRef {
	if len(d.Files) > 0 {
		return d.Files
	}
	if d.LegacyFileURL != "" {
		return []FileRef{{DocumentID: d.ID, Index: 0, URL: d.LegacyFileURL}}
	}
	return nil
}

// File returns the file at index, or false when the index is out of range.
func (d *Document) File(index int) (FileRef, bool) {
	files := d.FileList()
	if index < 0 || index >= len(files) {
		return FileRef{}, false
	}
	return files[index], true
}
