// Package documents provides the source documents reviewed during a
// classification session and the loader that extracts them from an uploaded
// zip archive.
package documents

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/voidsort/internal/classifications"
)

// Document is one PDF extracted from the input archive. ID, Name, and Content
// are fixed at load time; Classification is assigned by the review session.
// Content is shared by reference with the archive builder and never modified.
type Document struct {
	ID             uuid.UUID                      `json:"id"`
	Name           string                         `json:"name"`
	SizeBytes      int64                          `json:"size_bytes"`
	PageCount      *int                           `json:"page_count"`
	Content        []byte                         `json:"-"`
	Classification classifications.Classification `json:"classification,omitzero"`
}

// Classified reports whether the document carries a valid classification.
func (d Document) Classified() bool {
	return !d.Classification.IsZero() && d.Classification.Validate() == nil
}

// Classifications returns the classification of each document in order.
func Classifications(docs []Document) []classifications.Classification {
	out := make([]classifications.Classification, len(docs))
	for i, d := range docs {
		out[i] = d.Classification
	}
	return out
}
