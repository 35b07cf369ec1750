// Package routing decides the destination folder of a renamed document from
// keyword rules over its target filename.
package routing

import "strings"

// Router evaluates an immutable copy of a rule table.
type Router struct {
	table Table
}

// New creates a Router over a copy of table. A nil table uses DefaultTable
// without contractor markers.
func New(table Table) *Router {
	if table == nil {
		table = DefaultTable()
	}

	cp := make(Table, len(table))
	copy(cp, table)
	return &Router{table: cp}
}

// Route returns the folder for name, or FolderRoot when no rule matches.
func (r *Router) Route(name string) string {
	folder, _ := r.Match(name)
	return folder
}

// Match returns the folder and the name of the first matching rule. The rule
// name is empty when the name routes to the root by default.
func (r *Router) Match(name string) (folder, rule string) {
	upper := strings.ToUpper(name)
	for _, rl := range r.table {
		if rl.Match != nil && rl.Match(upper) {
			return rl.Folder, rl.Name
		}
	}
	return FolderRoot, ""
}

// Folders returns the distinct non-root folders the router can emit.
func (r *Router) Folders() []string {
	return r.table.Folders()
}
