// Package columns maps device headers onto canonical field names.
package columns

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolution is the outcome of resolving a header list.
type Resolution struct {
	// Mapping holds canonical field -> header index.
	Mapping map[string]int
	// Unresolved lists canonical fields no header matched, in table order.
	Unresolved []string
	// Dropped lists headers that matched a field already taken by a higher-priority alias.
	Dropped []string
}

// Index returns the column index for field.
func (r Resolution) Index(field string) (int, bool) {
	i, ok := r.Mapping[field]
	return i, ok
}

// Resolver applies an alias table to header lists.
type Resolver struct {
	table    AliasTable
	required []string
}

// NewResolver creates a Resolver with the default alias table and date and
// category required.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		table:    DefaultAliases(),
		required: []string{FieldDate, FieldCategory},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the alias table in use.
func (r *Resolver) Table() AliasTable { return r.table }

// NormalizeHeader trims h and folds it to NFKC, so full-width letters,
// digits and brackets compare equal to their ASCII forms.
func NormalizeHeader(h string) string {
	return strings.TrimSpace(norm.NFKC.String(h))
}

// Resolve is a pure mapping from headers to canonical fields. Matching is
// exact and case-sensitive after NormalizeHeader. For each field the aliases
// are tried in order and the first present alias wins.
func (r *Resolver) Resolve(headers []string) Resolution {
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		h = NormalizeHeader(h)
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	res := Resolution{Mapping: make(map[string]int, len(r.table))}
	claimed := make(map[int]bool, len(headers))
	for _, e := range r.table {
		won := false
		for _, alias := range e.Aliases {
			i, ok := pos[NormalizeHeader(alias)]
			if !ok || claimed[i] {
				continue
			}
			if !won {
				res.Mapping[e.Field] = i
				claimed[i] = true
				won = true
				continue
			}
			res.Dropped = append(res.Dropped, headers[i])
		}
		if !won {
			res.Unresolved = append(res.Unresolved, e.Field)
		}
	}
	return res
}

// Check resolves headers and returns a *SchemaError when a required field is
// unresolved.
func (r *Resolver) Check(headers []string) (Resolution, error) {
	res := r.Resolve(headers)
	var missing []string
	for _, f := range r.required {
		if slices.Contains(res.Unresolved, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return res, &SchemaError{Missing: missing, Observed: append([]string(nil), headers...)}
	}
	return res, nil
}
