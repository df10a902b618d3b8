package aggregate

import (
	"strings"

	"github.com/atlekbai/aggregate_sql/internal/schema"
)

// TableAlias returns the alias under which the table of p is joined. The root
// table is used directly and has no alias.
func (p *Path) TableAlias() (schema.Ident, bool) {
	owner := p.TableOwner()
	if owner.IsRoot() {
		return schema.Ident{}, false
	}
	return schema.QuotedIdent(strings.ReplaceAll(owner.String(), pathSeparator, aliasSeparator)), true
}

// ColumnAlias returns the result-set alias of the column selected for p: the
// column of a scalar path, or the back-reference column of an entity without
// identifier.
func (p *Path) ColumnAlias() (schema.Ident, bool) {
	column, ok := p.selectedColumn()
	if !ok {
		return schema.Ident{}, false
	}
	return p.prefixWithTableAlias(column), true
}

func (p *Path) selectedColumn() (schema.Ident, bool) {
	if !p.IsEntity() {
		return p.ColumnName()
	}
	if p.IsRoot() || p.HasID() {
		return schema.Ident{}, false
	}
	return p.ReverseColumnName(), true
}

func (p *Path) prefixWithTableAlias(column schema.Ident) schema.Ident {
	alias, ok := p.TableAlias()
	if !ok {
		return column
	}
	return column.Transform(func(name string) string {
		return alias.Name + aliasSeparator + name
	})
}
