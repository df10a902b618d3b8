package schema

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// NamingStrategy derives table and column names for entities and properties that
// do not declare explicit ones.
type NamingStrategy struct {
	TablePrefix  string
	ColumnPrefix string
	PluralTables bool
}

// TableName returns the table of an entity.
func (ns NamingStrategy) TableName(e *Entity) Ident {
	if e.Table != "" {
		return QuotedIdent(e.Table)
	}
	name := ToDBName(e.Name)
	if ns.PluralTables {
		name = inflection.Plural(name)
	}
	return DerivedIdent(ns.TablePrefix + name)
}

// ColumnName returns the column of a scalar property.
func (ns NamingStrategy) ColumnName(p *Property) Ident {
	if p.Column != "" {
		return QuotedIdent(p.Column)
	}
	return DerivedIdent(ns.ColumnPrefix + ToDBName(p.Name))
}

// ReverseColumnName returns the back-reference column that nested rows use to
// point at a row of anchor.
func (ns NamingStrategy) ReverseColumnName(anchor *Entity) Ident {
	return ns.TableName(anchor)
}

// KeyColumnName returns the key (or index) column of a map or ordered collection
// whose rows point at anchor.
func (ns NamingStrategy) KeyColumnName(anchor *Entity) Ident {
	return ns.ReverseColumnName(anchor).Transform(func(s string) string { return s + "_key" })
}

var commonInitialisms = []string{"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SSH", "TLS", "TTL", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM", "XML", "XSRF", "XSS"}

// initialismReplacer rewrites "ID" as "Id" so initialisms snake-case as one word.
var initialismReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(commonInitialisms))
	for _, in := range commonInitialisms {
		pairs = append(pairs, in, in[:1]+strings.ToLower(in[1:]))
	}
	return strings.NewReplacer(pairs...)
}()

// ToDBName converts a camel case name into snake case. Runs of capitals stay
// together: userID becomes user_id and HTTPServer http_server.
func ToDBName(name string) string {
	if name == "" {
		return ""
	}

	var (
		value     = []rune(initialismReplacer.Replace(name))
		buf       strings.Builder
		lastUpper bool
		curUpper  = unicode.IsUpper(value[0])
		lastIndex = len(value) - 1
	)
	buf.Grow(len(name) + 4)

	for i, r := range value[:lastIndex] {
		nextUpper := unicode.IsUpper(value[i+1])
		if curUpper {
			inRun := lastUpper && (nextUpper || unicode.IsDigit(value[i+1]))
			if !inRun && i > 0 && value[i-1] != '_' && value[i+1] != '_' {
				buf.WriteByte('_')
			}
			buf.WriteRune(unicode.ToLower(r))
		} else {
			buf.WriteRune(r)
		}
		lastUpper = curUpper
		curUpper = nextUpper
	}

	final := value[lastIndex]
	if curUpper {
		if !lastUpper && lastIndex > 0 && value[lastIndex-1] != '_' {
			buf.WriteByte('_')
		}
		final = unicode.ToLower(final)
	}
	buf.WriteRune(final)

	return buf.String()
}
