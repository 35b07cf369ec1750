// Package builds records finalized output archives. Each build stores the
// archive in blob storage and a build record, with the manifest of emitted
// entries, in PostgreSQL.
package builds

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/internal/documents"
)

// ContentType is the media type of stored archives.
const ContentType = "application/zip"

// Build is a finalized archive and its manifest.
type Build struct {
	ID            uuid.UUID       `json:"id"`
	Address       string          `json:"address"`
	Filename      string          `json:"filename"`
	StorageKey    string          `json:"storage_key"`
	SizeBytes     int64           `json:"size_bytes"`
	DocumentCount int             `json:"document_count"`
	EntryCount    int             `json:"entry_count"`
	SkippedCount  int             `json:"skipped_count"`
	SkipPolicy    string          `json:"skip_policy"`
	CreatedBy     *string         `json:"created_by"`
	Manifest      []archive.Entry `json:"manifest"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FinalizeCommand carries a reviewed document set into a build. CreatedBy is
// the authenticated subject, empty when authentication is disabled.
type FinalizeCommand struct {
	Address   string
	Documents []documents.Document
	CreatedBy string
}

// Artifact is the result of a successful finalize: the recorded build and the
// archive bytes for immediate download.
type Artifact struct {
	Build *Build
	Data  []byte
}
