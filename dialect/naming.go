package dialect

import (
	"fmt"
	"strings"

	"github.com/syssam/sqlrecord"
)

// Quote wraps name in the left and right delimiters, adding only the side
// that is missing.
func Quote(name, left, right string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", sqlrecord.NewConfigurationError("identifier", "name cannot be empty")
	}
	hasLeft := strings.HasPrefix(name, left)
	hasRight := strings.HasSuffix(name, right)
	// A lone symmetric delimiter counts as the left side only.
	if left == right && name == left {
		hasRight = false
	}
	var b strings.Builder
	b.Grow(len(name) + len(left) + len(right))
	if !hasLeft {
		b.WriteString(left)
	}
	b.WriteString(name)
	if !hasRight {
		b.WriteString(right)
	}
	return b.String(), nil
}

// NamedParameter derives a parameter token from a field path using only its
// last segment, replacing spaces with underscores and adding prefix when
// missing.
func NamedParameter(name, prefix string) (string, error) {
	if name == "" {
		return "", sqlrecord.NewConfigurationError("parameter", "name cannot be empty")
	}
	seg := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		seg = name[i+1:]
	}
	seg = strings.ReplaceAll(seg, " ", "_")
	if seg == "" || seg == prefix {
		return "", sqlrecord.NewConfigurationError("parameter", fmt.Sprintf("name %q has no usable segment", name))
	}
	if strings.HasPrefix(seg, prefix) {
		return seg, nil
	}
	return prefix + seg, nil
}

// TerminateStatement ensures s ends with a statement separator.
func TerminateStatement(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(s, ";") {
		return s
	}
	return s + ";"
}

// AppendStatement terminates first and appends next as a second statement of
// the same batch.
func AppendStatement(first, next string) string {
	return TerminateStatement(first) + " " + next
}

// trimStatement strips surrounding whitespace and trailing separators so the
// statement can be nested as a derived table.
func trimStatement(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ";"))
}
