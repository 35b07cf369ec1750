// Package archive turns a reviewed document set into the renamed, folder-sorted
// output archive.
package archive

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/documents"
	"github.com/JaimeStill/voidsort/internal/naming"
	"github.com/JaimeStill/voidsort/internal/routing"
)

// SkipPolicy controls how skipped and unclassified documents reach the output.
type SkipPolicy string

const (
	// SkipOmit leaves skipped documents out of the archive.
	SkipOmit SkipPolicy = "omit"
	// SkipPlaceholder keeps skipped documents under a placeholder name.
	SkipPlaceholder SkipPolicy = "placeholder"
)

// DefaultPlaceholder is the name stem given to skipped documents under
// SkipPlaceholder.
const DefaultPlaceholder = "UNCLASSIFIED"

// ParseSkipPolicy resolves a policy by name. Empty selects SkipOmit.
func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch p := SkipPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return SkipOmit, nil
	case SkipOmit, SkipPlaceholder:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSkipPolicy, s)
	}
}

// Options configures a Builder.
type Options struct {
	SkipPolicy  SkipPolicy
	Placeholder string
}

// Entry is one file of the output archive. Content references the source
// document bytes.
type Entry struct {
	DocumentID uuid.UUID            `json:"document_id" msgpack:"document_id"`
	Source     string               `json:"source" msgpack:"source"`
	Kind       classifications.Kind `json:"kind" msgpack:"kind"`
	Folder     string               `json:"folder" msgpack:"folder"`
	Name       string               `json:"name" msgpack:"name"`
	Content    []byte               `json:"-" msgpack:"-"`
}

// Path returns the entry's location inside the archive.
func (e Entry) Path() string {
	if e.Folder == routing.FolderRoot {
		return e.Name
	}
	return path.Join(e.Folder, e.Name)
}

// Plan is the computed output of a build.
type Plan struct {
	Address  string  `json:"address" msgpack:"address"`
	Filename string  `json:"filename" msgpack:"filename"`
	Entries  []Entry `json:"entries" msgpack:"entries"`
	Skipped  int     `json:"skipped" msgpack:"skipped"`
}

// Folder groups the entry names emitted into one folder.
type Folder struct {
	Name  string   `json:"name" msgpack:"name"`
	Files []string `json:"files" msgpack:"files"`
}

// Tree returns the plan grouped by folder. The root comes first, then folders
// in the order they first receive an entry.
func (p Plan) Tree() []Folder {
	root := Folder{Name: routing.FolderRoot}
	var folders []Folder
	index := make(map[string]int)

	for _, e := range p.Entries {
		if e.Folder == routing.FolderRoot {
			root.Files = append(root.Files, e.Name)
			continue
		}
		i, ok := index[e.Folder]
		if !ok {
			i = len(folders)
			index[e.Folder] = i
			folders = append(folders, Folder{Name: e.Folder})
		}
		folders[i].Files = append(folders[i].Files, e.Name)
	}

	if len(root.Files) == 0 {
		return folders
	}
	return append([]Folder{root}, folders...)
}

// Builder computes output plans. It is safe for concurrent use; each Build
// owns its own Uniquifier.
type Builder struct {
	engine *naming.Engine
	router *routing.Router
	opts   Options
}

// NewBuilder creates a Builder. Nil collaborators fall back to the default
// naming and routing tables.
func NewBuilder(engine *naming.Engine, router *routing.Router, opts Options) *Builder {
	if engine == nil {
		engine = naming.NewEngine()
	}
	if router == nil {
		router = routing.New(nil)
	}
	if opts.SkipPolicy == "" {
		opts.SkipPolicy = SkipOmit
	}
	opts.Placeholder = classifications.Normalize(opts.Placeholder)
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}

	return &Builder{engine: engine, router: router, opts: opts}
}

// SkipPolicy returns the configured skip policy.
func (b *Builder) SkipPolicy() SkipPolicy {
	return b.opts.SkipPolicy
}

// Build names, routes, and uniquifies every document in order. Documents
// without a name (skipped or unclassified) are omitted or given the
// placeholder name according to the skip policy.
func (b *Builder) Build(address string, docs []documents.Document) (Plan, error) {
	addr := classifications.Normalize(address)
	if addr == "" {
		return Plan{}, ErrAddressRequired
	}

	names := b.engine.Assign(addr, documents.Classifications(docs))
	u := naming.NewUniquifier()

	plan := Plan{
		Address:  addr,
		Filename: Filename(addr),
		Entries:  make([]Entry, 0, len(docs)),
	}

	for i, doc := range docs {
		name := names[i]
		if name == "" {
			plan.Skipped++
			if b.opts.SkipPolicy != SkipPlaceholder {
				continue
			}
			name = b.placeholder(addr)
		}

		folder := b.router.Route(name)
		plan.Entries = append(plan.Entries, Entry{
			DocumentID: doc.ID,
			Source:     doc.Name,
			Kind:       doc.Classification.Kind,
			Folder:     folder,
			Name:       u.Resolve(folder, name),
			Content:    doc.Content,
		})
	}

	return plan, nil
}

func (b *Builder) placeholder(addr string) string {
	return fmt.Sprintf("%s - VOID %s.pdf", addr, b.opts.Placeholder)
}

// Filename returns the download name of the output archive for address.
func Filename(address string) string {
	return fmt.Sprintf("%s - VOID RENAMED.zip", classifications.Normalize(address))
}
