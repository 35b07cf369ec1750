package naming

import (
	"fmt"
	"strings"
)

// Uniquifier tracks names emitted into each destination folder and resolves
// duplicates by appending " (2)", " (3)", ... to the stem. One Uniquifier
// covers one archive build; it is not safe for concurrent use.
type Uniquifier struct {
	scopes map[string]map[string]struct{}
}

// NewUniquifier creates an empty Uniquifier.
func NewUniquifier() *Uniquifier {
	return &Uniquifier{
		scopes: make(map[string]map[string]struct{}),
	}
}

// Resolve reserves and returns name within folder, or the first free
// " (n)" variant when name is already taken there. Folders are independent
// scopes: the same literal name may be reserved once in each folder.
func (u *Uniquifier) Resolve(folder, name string) string {
	scope, ok := u.scopes[folder]
	if !ok {
		scope = make(map[string]struct{})
		u.scopes[folder] = scope
	}

	if _, taken := scope[name]; !taken {
		scope[name] = struct{}{}
		return name
	}

	stem, ext := splitExt(name)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, taken := scope[candidate]; !taken {
			scope[candidate] = struct{}{}
			return candidate
		}
	}
}

func splitExt(name string) (stem, ext string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i:]
	}
	return name, ""
}
