package builds

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/voidsort/pkg/query"
	"github.com/JaimeStill/voidsort/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "builds", "b").
	Project("id", "ID").
	Project("address", "Address").
	Project("filename", "Filename").
	Project("storage_key", "StorageKey").
	Project("size_bytes", "SizeBytes").
	Project("document_count", "DocumentCount").
	Project("entry_count", "EntryCount").
	Project("skipped_count", "SkippedCount").
	Project("skip_policy", "SkipPolicy").
	Project("created_by", "CreatedBy").
	Project("manifest", "Manifest").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for build queries.
// Address and Filename use case-insensitive contains matching; CreatedBy and
// SkipPolicy match exactly.
type Filters struct {
	Address    *string `json:"address,omitempty"`
	Filename   *string `json:"filename,omitempty"`
	CreatedBy  *string `json:"created_by,omitempty"`
	SkipPolicy *string `json:"skip_policy,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Address", f.Address).
		WhereContains("Filename", f.Filename).
		WhereEquals("CreatedBy", f.CreatedBy).
		WhereEquals("SkipPolicy", f.SkipPolicy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if a := values.Get("address"); a != "" {
		f.Address = &a
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}
	if cb := values.Get("created_by"); cb != "" {
		f.CreatedBy = &cb
	}
	if sp := values.Get("skip_policy"); sp != "" {
		f.SkipPolicy = &sp
	}

	return f
}

func scanBuild(s repository.Scanner) (Build, error) {
	var (
		b        Build
		manifest []byte
	)

	err := s.Scan(
		&b.ID,
		&b.Address,
		&b.Filename,
		&b.StorageKey,
		&b.SizeBytes,
		&b.DocumentCount,
		&b.EntryCount,
		&b.SkippedCount,
		&b.SkipPolicy,
		&b.CreatedBy,
		&manifest,
		&b.CreatedAt,
	)
	if err != nil {
		return b, err
	}

	if len(manifest) > 0 {
		if err := json.Unmarshal(manifest, &b.Manifest); err != nil {
			return b, fmt.Errorf("decode manifest: %w", err)
		}
	}
	return b, nil
}
