package routing

import "strings"

// Predicate tests an uppercased filename.
type Predicate func(name string) bool

// Contains matches names containing any of the given substrings. Substrings are
// uppercased once at construction. With no substrings it matches nothing.
func Contains(subs ...string) Predicate {
	upper := make([]string, 0, len(subs))
	for _, s := range subs {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			upper = append(upper, s)
		}
	}

	return func(name string) bool {
		for _, s := range upper {
			if strings.Contains(name, s) {
				return true
			}
		}
		return false
	}
}

// AnyOf matches when at least one predicate matches.
func AnyOf(ps ...Predicate) Predicate {
	return func(name string) bool {
		for _, p := range ps {
			if p(name) {
				return true
			}
		}
		return false
	}
}

// AllOf matches when every predicate matches. With no predicates it matches
// nothing.
func AllOf(ps ...Predicate) Predicate {
	return func(name string) bool {
		if len(ps) == 0 {
			return false
		}
		for _, p := range ps {
			if !p(name) {
				return false
			}
		}
		return true
	}
}
