package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/atlekbai/aggregate_sql/internal/schema"
)

// Well-known bind parameter names.
const (
	IDParameter       = "id"
	IDsParameter      = "ids"
	RootIDParameter   = "rootId"
	VersionParameter  = "___oldOptimisticLockingVersion"
	parameterPrefix   = ":"
	ascendingKeyword  = "ASC"
	descendingKeyword = "DESC"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return descendingKeyword
	}
	return ascendingKeyword
}

// ParseDirection accepts "asc" and "desc" in any case. An empty direction is ascending.
func ParseDirection(s string) (Direction, error) {
	switch s = strings.TrimSpace(s); {
	case s == "", strings.EqualFold(s, ascendingKeyword):
		return Asc, nil
	case strings.EqualFold(s, descendingKeyword):
		return Desc, nil
	default:
		return Asc, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidArgument, s)
	}
}

// Order sorts by one property path (or raw column name) in one direction.
type Order struct {
	Property  string
	Direction Direction
}

// Sort is an ordered list of sort keys. A nil Sort is unsorted.
type Sort []Order

// SortBy returns an ascending sort over the given properties.
func SortBy(properties ...string) Sort {
	s := make(Sort, 0, len(properties))
	for _, p := range properties {
		s = append(s, Order{Property: p, Direction: Asc})
	}
	return s
}

// Page is a zero-based page window.
type Page struct {
	Number uint64
	Size   uint64
}

func (p Page) Offset() uint64 { return p.Number * p.Size }

// ParentIdentifier lists the columns of a (possibly composite) foreign key
// pointing at the parent row.
type ParentIdentifier []schema.Ident

// IdentifierOf starts a parent identifier with one part.
func IdentifierOf(part schema.Ident) ParentIdentifier { return ParentIdentifier{part} }

// WithPart returns a copy of the identifier extended by another part.
func (pi ParentIdentifier) WithPart(part schema.Ident) ParentIdentifier {
	out := make(ParentIdentifier, 0, len(pi)+1)
	out = append(out, pi...)
	return append(out, part)
}

var nonWordRe = regexp.MustCompile(`\W`)

// BindParameterName derives a bind parameter name from a column: every
// character outside [A-Za-z0-9_] is dropped and the case is kept.
func BindParameterName(column schema.Ident) string {
	return nonWordRe.ReplaceAllString(column.Name, "")
}

func bindMarker(name string) string { return parameterPrefix + name }

var bindMarkerRe = regexp.MustCompile(`(?:^|[\s(,])` + parameterPrefix + `(\w+)`)

// ParameterNames lists the distinct bind parameters of a rendered statement in
// order of first appearance.
func ParameterNames(sql string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range bindMarkerRe.FindAllStringSubmatch(sql, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
