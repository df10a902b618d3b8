package query

import (
	"github.com/atlekbai/aggregate_sql/internal/aggregate"
)

const leftOuterJoin = "LEFT OUTER JOIN "

// Join connects the table of a single-valued reference to the row it belongs to:
// JoinColumn is the back-reference column of Table, ParentID the identifier it
// points at.
type Join struct {
	Table      Table
	JoinColumn Column
	ParentID   Column
}

// joinOf returns the join that loads p together with its root, if any. Scalars,
// the root and everything reached through a collection or map are not joined.
func joinOf(p *aggregate.Path) (Join, bool) {
	if !p.IsEntity() || p.IsRoot() || p.IsMultiValued() {
		return Join{}, false
	}

	table := tableOf(p)
	parent := p.IDDefiningParent()
	parentID, _ := parent.IDColumnName()

	return Join{
		Table:      table,
		JoinColumn: Column{Table: table, Name: p.ReverseColumnName()},
		ParentID:   Column{Table: tableOf(parent), Name: parentID},
	}, true
}

// joinsFor returns the joins of every single-valued reference chain in
// breadth-first order, so parents are joined before their descendants.
func joinsFor(m *aggregate.Model) []Join {
	var joins []Join
	for _, p := range m.Paths() {
		if j, ok := joinOf(p); ok {
			joins = append(joins, j)
		}
	}
	return joins
}

func (r renderer) joinClause(j Join) string {
	return leftOuterJoin + r.from(j.Table) + " ON " + r.ref(j.JoinColumn) + " = " + r.ref(j.ParentID)
}
