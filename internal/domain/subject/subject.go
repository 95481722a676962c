// Package subject derives the stable storage key of a pitcher from the
// upload filename and the name found in the file.
package subject

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"
)

// ErrInvalidPrefix is returned by Validate for a prefix that cannot be used
// verbatim in a storage key.
var ErrInvalidPrefix = errors.New("invalid filename prefix")

// Unknown is used when a name sanitizes to nothing.
const Unknown = "Unknown"

// PrefixLen is the number of filename characters kept in the key.
const PrefixLen = 7

// Identity is the (filename prefix, extracted name) pair of one upload.
type Identity struct {
	Prefix string
	Name   string
}

// New builds an Identity from an upload filename and an extracted name.
func New(filename, name string) Identity {
	return Identity{Prefix: Prefix(filename), Name: strings.TrimSpace(name)}
}

// Key returns `<prefix>_<sanitized name>`. The prefix is used verbatim, so
// distinct valid prefixes always give distinct keys; call Validate first.
func (id Identity) Key() string {
	return id.Prefix + "_" + Sanitize(id.Name)
}

// Validate rejects an empty prefix and one holding characters outside
// letters, digits, '_', '-', '.' and '・', or a "..".
func (id Identity) Validate() error {
	if id.Prefix == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	}
	if strings.Contains(id.Prefix, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, id.Prefix)
	}
	for _, r := range id.Prefix {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '.', r == '・':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidPrefix, id.Prefix)
		}
	}
	return nil
}

// Prefix returns the first PrefixLen characters of the base filename.
func Prefix(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	r := []rune(base)
	if len(r) > PrefixLen {
		r = r[:PrefixLen]
	}
	return string(r)
}

// Sanitize keeps letters, digits, '_', '-' and '・', collapses whitespace
// runs into a single '_' and drops everything else.
func Sanitize(s string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '・':
		default:
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return Unknown
	}
	return b.String()
}
