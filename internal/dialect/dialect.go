package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/atlekbai/aggregate_sql/internal/schema"
)

// Dialect names.
const (
	ANSI      = "ansi"
	Postgres  = "postgres"
	MySQL     = "mysql"
	SQLServer = "sqlserver"
	Plain     = "plain"
)

var ErrUnknownDialect = errors.New("unknown dialect")

// LetterCasing is applied to derived identifiers before quoting.
type LetterCasing int

const (
	AsIs LetterCasing = iota
	UpperCase
	LowerCase
)

func (c LetterCasing) apply(s string) string {
	switch c {
	case UpperCase:
		return strings.ToUpper(s)
	case LowerCase:
		return strings.ToLower(s)
	default:
		return s
	}
}

// Quoting wraps identifiers. A zero Quoting leaves identifiers untouched.
type Quoting struct {
	Open  string
	Close string
}

func (q Quoting) enabled() bool { return q.Open != "" }

// quote wraps name, doubling every embedded closing quote.
func (q Quoting) quote(name string) string {
	return q.Open + strings.ReplaceAll(name, q.Close, q.Close+q.Close) + q.Close
}

// Dialect is the fixed set of rendering rules that vary between databases.
type Dialect struct {
	Name    string
	Quoting Quoting
	Casing  LetterCasing
	// Paginate renders the clause that skips offset rows and keeps at most limit rows.
	Paginate func(offset, limit uint64) string
}

// Quote renders an identifier according to its style.
func (d Dialect) Quote(id schema.Ident) string {
	if id.Style == schema.Unquoted || !d.Quoting.enabled() {
		return id.Name
	}
	name := id.Name
	if id.Style == schema.Derived {
		name = d.Casing.apply(name)
	}
	return d.Quoting.quote(name)
}

// Pagination renders the pagination clause for a page window.
func (d Dialect) Pagination(offset, limit uint64) string {
	if d.Paginate == nil {
		return limitOffset(offset, limit)
	}
	return d.Paginate(offset, limit)
}

func limitOffset(offset, limit uint64) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}

func offsetFetch(next string) func(offset, limit uint64) string {
	return func(offset, limit uint64) string {
		return fmt.Sprintf("OFFSET %d ROWS FETCH %s %d ROWS ONLY", offset, next, limit)
	}
}

var registry = map[string]Dialect{
	ANSI: {
		Name:     ANSI,
		Quoting:  Quoting{Open: `"`, Close: `"`},
		Casing:   UpperCase,
		Paginate: offsetFetch("FIRST"),
	},
	Postgres: {
		Name:     Postgres,
		Quoting:  Quoting{Open: `"`, Close: `"`},
		Casing:   LowerCase,
		Paginate: limitOffset,
	},
	MySQL: {
		Name:     MySQL,
		Quoting:  Quoting{Open: "`", Close: "`"},
		Casing:   AsIs,
		Paginate: limitOffset,
	},
	SQLServer: {
		Name:     SQLServer,
		Quoting:  Quoting{Open: "[", Close: "]"},
		Casing:   AsIs,
		Paginate: offsetFetch("NEXT"),
	},
	Plain: {
		Name:     Plain,
		Paginate: limitOffset,
	},
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	d, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
	return d, nil
}

// LookupAll resolves every name, failing on the first unknown one.
func LookupAll(names []string) ([]Dialect, error) {
	out := make([]Dialect, 0, len(names))
	for _, name := range names {
		d, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Names returns the registered dialect names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
