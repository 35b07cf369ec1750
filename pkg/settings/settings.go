// Package settings applies environment variable overrides and file overlays
// to configuration structs.
//
// Every Env helper is a no-op when the variable name is empty or the variable
// is unset, and values that fail to parse leave the destination unchanged.
// Validation of the final value belongs to the owning config's validate step.
package settings

import (
	"os"
	"strconv"
	"strings"
)

// String sets *dst from the variable name.
func String(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

// Int sets *dst from the variable name when it holds a base-10 integer.
func Int(dst *int, name string) {
	if v, ok := lookup(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Bool sets *dst from the variable name when strconv.ParseBool accepts it.
func Bool(dst *bool, name string) {
	if v, ok := lookup(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// List sets *dst from a comma-separated variable, dropping blank items.
func List(dst *[]string, name string) {
	if v, ok := lookup(name); ok {
		*dst = Split(v)
	}
}

// Split splits a comma-separated list, trimming items and dropping blanks.
func Split(v string) []string {
	var out []string
	for s := range strings.SplitSeq(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Overlay sets *dst to v unless v is the zero value.
func Overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// Default sets *dst to v when *dst is the zero value.
func Default[T comparable](dst *T, v T) {
	var zero T
	if *dst == zero {
		*dst = v
	}
}

// OverlayList sets *dst to v when v is non-empty.
func OverlayList[T any](dst *[]T, v []T) {
	if len(v) > 0 {
		*dst = v
	}
}

func lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}
