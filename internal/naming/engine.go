// Package naming assigns target filenames to classified documents and keeps
// emitted names unique within each destination folder.
//
// The Engine owns the template table and per-kind numbering. Numbering is always
// recomputed from the complete, ordered classification list, so it never depends
// on how often an operator changed their mind during review. The Uniquifier
// resolves collisions for kinds that produce the same literal name.
package naming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JaimeStill/voidsort/internal/classifications"
)

// Template placeholders.
const (
	PlaceholderAddress     = "{ADDR}"
	PlaceholderDescription = "{DESC}"
	PlaceholderNumber      = "{N}"
)

// ErrNoTemplate indicates a classification kind has no naming template.
var ErrNoTemplate = errors.New("no naming template for kind")

// Template maps one kind to a filename format. Numbered templates receive the
// 1-based sequence number of the document among documents of the same kind.
type Template struct {
	Kind     classifications.Kind
	Format   string
	Numbered bool
}

// DefaultTemplates returns the standard void naming convention.
func DefaultTemplates() []Template {
	return []Template{
		{Kind: classifications.KindChecklist, Format: "{ADDR} - VOID INSPECTION CHECKLIST.pdf"},
		{Kind: classifications.KindMTW, Format: "{ADDR} - VOID AC GOLD MTW ({N}).pdf", Numbered: true},
		{Kind: classifications.KindRecharge, Format: "{ADDR} - VOID RECHARGEABLE WORKS.pdf"},
		{Kind: classifications.KindBMD, Format: "{ADDR} - VOID BMD WORKS ({N}).pdf", Numbered: true},
		{Kind: classifications.KindWorkOrder, Format: "{ADDR} - VOID {DESC} REQUEST.pdf"},
	}
}

// Engine renders filenames from a fixed template table.
type Engine struct {
	templates map[classifications.Kind]Template
}

// NewEngine creates an Engine over templates. With no templates the default
// table is used. Later templates for the same kind replace earlier ones.
func NewEngine(templates ...Template) *Engine {
	if len(templates) == 0 {
		templates = DefaultTemplates()
	}

	e := &Engine{templates: make(map[classifications.Kind]Template, len(templates))}
	for _, t := range templates {
		e.templates[t.Kind] = t
	}
	return e
}

// Name renders the filename for a single classification. address must already
// be normalized; n is ignored for kinds without numbering.
func (e *Engine) Name(address string, c classifications.Classification, n int) (string, error) {
	t, ok := e.templates[c.Kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoTemplate, c.Kind)
	}

	r := strings.NewReplacer(
		PlaceholderAddress, address,
		PlaceholderDescription, classifications.Normalize(c.Description),
		PlaceholderNumber, strconv.Itoa(n),
	)
	return r.Replace(t.Format), nil
}

// Assign computes the target filename of every classification in document
// order. Skipped, unclassified, and untemplated entries yield "". Numbered kinds
// count only entries of the same kind, starting at 1.
func (e *Engine) Assign(address string, cs []classifications.Classification) []string {
	names := make([]string, len(cs))
	counters := make(map[classifications.Kind]int)

	for i, c := range cs {
		if c.IsZero() || c.Skipped() || c.Validate() != nil {
			continue
		}

		t, ok := e.templates[c.Kind]
		if !ok {
			continue
		}

		n := 0
		if t.Numbered {
			counters[c.Kind]++
			n = counters[c.Kind]
		}

		names[i], _ = e.Name(address, c, n)
	}

	return names
}
