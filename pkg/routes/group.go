// Package routes declares HTTP routes as data so domain handlers can describe
// their endpoints and the API layer can register them on a ServeMux.
package routes

import "net/http"

// Group organizes routes under a common prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Walk calls fn with the full method pattern of every route in the group and
// its children, in declaration order.
func (g Group) Walk(fn func(pattern string, handler http.HandlerFunc)) {
	g.walk("", fn)
}

func (g Group) walk(parent string, fn func(string, http.HandlerFunc)) {
	prefix := parent + g.Prefix
	for _, route := range g.Routes {
		fn(route.Method+" "+prefix+route.Pattern, route.Handler)
	}
	for _, child := range g.Children {
		child.walk(prefix, fn)
	}
}

// Register adds all routes from the given groups to the mux and returns the
// registered patterns.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		group.Walk(func(pattern string, handler http.HandlerFunc) {
			mux.HandleFunc(pattern, handler)
			patterns = append(patterns, pattern)
		})
	}
	return patterns
}
