// Package formatting converts between byte counts and human-readable sizes
// such as "25MB". Units are binary: "MB", "MiB", and "M" all mean 1<<20.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// prefixes are the binary unit prefixes in ascending order; index i scales by 1<<(10*(i+1)).
const prefixes = "KMGTPE"

// FormatBytes renders n with the largest unit that keeps the value at or
// above 1, using precision decimal places. Plain bytes are never fractional.
func FormatBytes(n int64, precision int) string {
	size := float64(n)
	i := -1
	for math.Abs(size) >= 1024 && i < len(prefixes)-1 {
		size /= 1024
		i++
	}

	if i < 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + prefixes[i:i+1] + "B"
}

// ParseBytes parses sizes such as "1024", "25MB", "25 mb", "64MiB", "2G", or
// "1.5KB". A bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	num, unit := s, ""
	if end := strings.IndexFunc(s, notNumeric); end >= 0 {
		num, unit = s[:end], strings.TrimSpace(s[end:])
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	shift, err := unitShift(unit)
	if err != nil {
		return 0, err
	}

	n := value * math.Exp2(float64(shift))
	if n >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size %q overflows int64", s)
	}
	return int64(n), nil
}

func notNumeric(r rune) bool {
	return (r < '0' || r > '9') && r != '.'
}

func unitShift(unit string) (int, error) {
	u := strings.ToUpper(unit)
	if u == "" || u == "B" {
		return 0, nil
	}

	p := strings.TrimSuffix(u, "IB")
	if p == u {
		p = strings.TrimSuffix(u, "B")
	}

	if i := strings.Index(prefixes, p); len(p) == 1 && i >= 0 {
		return 10 * (i + 1), nil
	}
	return 0, fmt.Errorf("unknown byte size unit %q", unit)
}
