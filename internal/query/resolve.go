package query

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/aggregate_sql/internal/aggregate"
	"github.com/atlekbai/aggregate_sql/internal/dialect"
	"github.com/atlekbai/aggregate_sql/internal/schema"
)

// Table is a table reference, optionally aliased.
type Table struct {
	Name  schema.Ident
	Alias schema.Ident
}

// Reference is the identifier that qualifies columns of the table.
func (t Table) Reference() schema.Ident {
	if !t.Alias.IsZero() {
		return t.Alias
	}
	return t.Name
}

// Column is a column of a table reference, optionally aliased in the result set.
type Column struct {
	Table Table
	Name  schema.Ident
	Alias schema.Ident
}

// tableOf returns the table that stores p under the alias of its table owner.
func tableOf(p *aggregate.Path) Table {
	t := Table{Name: p.TableName()}
	if alias, ok := p.TableAlias(); ok {
		t.Alias = alias
	}
	return t
}

// columnOf returns the column selected for p. Nothing is selected for paths
// through collections or maps, nor for entities that carry their own id.
func columnOf(p *aggregate.Path) (Column, bool) {
	if p.IsMultiValued() {
		return Column{}, false
	}

	var name schema.Ident
	switch p.Kind() {
	case schema.KindScalar:
		name, _ = p.ColumnName()
	case schema.KindReference:
		if p.IsRoot() || p.HasID() {
			return Column{}, false
		}
		name = p.ReverseColumnName()
	default:
		return Column{}, false
	}

	alias, _ := p.ColumnAlias()
	return Column{Table: tableOf(p), Name: name, Alias: alias}, true
}

// renderer turns tables and columns into dialect-specific SQL fragments.
type renderer struct {
	dialect dialect.Dialect
}

func (r renderer) qi(id schema.Ident) string { return r.dialect.Quote(id) }

// from renders "table" or "table AS alias".
func (r renderer) from(t Table) string {
	if t.Alias.IsZero() {
		return r.qi(t.Name)
	}
	return r.qi(t.Name) + " AS " + r.qi(t.Alias)
}

// ref renders the qualified column name.
func (r renderer) ref(c Column) string {
	return r.qi(c.Table.Reference()) + "." + r.qi(c.Name)
}

// selected renders "table.column AS alias".
func (r renderer) selected(c Column) string {
	alias := c.Alias
	if alias.IsZero() {
		alias = c.Name
	}
	return r.ref(c) + " AS " + r.qi(alias)
}

// Condition builders. Every predicate carries named bind markers rather than
// positional arguments, so none of them produce squirrel args.

func (r renderer) equalsParam(c Column, param string) sq.Sqlizer {
	return sq.Expr(r.ref(c) + " = " + bindMarker(param))
}

func (r renderer) inParam(c Column, param string) sq.Sqlizer {
	return sq.Expr(r.ref(c) + " IN (" + bindMarker(param) + ")")
}

func (r renderer) isNotNull(c Column) sq.Sqlizer {
	return sq.Expr(r.ref(c) + " IS NOT NULL")
}

func (r renderer) inSubselect(c Column, sub string) sq.Sqlizer {
	return sq.Expr(r.ref(c) + " IN (" + sub + ")")
}

// render drops the (always empty) argument list of a finished builder.
func render(b sq.Sqlizer) (string, error) {
	sql, _, err := b.ToSql()
	return sql, err
}
