package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/aggregate_sql/internal/schema"
)

// Insert renders the insert of a root row. The id is left to the database and
// read-only columns are never written; excluded removes further columns, matched
// by name whatever their quoting style.
func (g *Generator) Insert(excluded []schema.Ident) (string, error) {
	skip := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		skip[id.Name] = true
	}

	cols := make([]string, 0, len(g.writable))
	params := make([]string, 0, len(g.writable))
	for _, c := range g.writable {
		if skip[c.Name] {
			continue
		}
		cols = append(cols, g.r.qi(c))
		params = append(params, bindMarker(BindParameterName(c)))
	}

	qb := sq.Insert(g.r.qi(g.table.Name)).
		Columns(strings.Join(cols, ", ")).
		Values(sq.Expr(strings.Join(params, ", ")))
	return render(qb)
}

// Update renders the update of a root row identified by its id column.
func (g *Generator) Update() (string, error) {
	qb, err := g.update()
	if err != nil {
		return "", err
	}
	return render(qb)
}

// UpdateWithVersion renders Update guarded by the previous optimistic locking
// version. A stale version matches no row.
func (g *Generator) UpdateWithVersion() (string, error) {
	if g.version == nil {
		return "", fmt.Errorf("%w: %s declares no version property", ErrUnsupported, g.model.RootEntity().Name)
	}
	qb, err := g.update()
	if err != nil {
		return "", err
	}
	return render(qb.Where(g.r.equalsParam(*g.version, VersionParameter)))
}

func (g *Generator) update() (sq.UpdateBuilder, error) {
	if len(g.writable) == 0 {
		return sq.UpdateBuilder{}, fmt.Errorf("%w: %s has no updatable columns", ErrUnsupported, g.model.RootEntity().Name)
	}

	qb := sq.Update(g.r.qi(g.table.Name))
	for _, c := range g.writable {
		qb = qb.Set(g.r.qi(c), sq.Expr(bindMarker(BindParameterName(c))))
	}
	return qb.Where(g.r.equalsParam(g.id, BindParameterName(g.id.Name))), nil
}

// DeleteByID deletes the root row with id :id.
func (g *Generator) DeleteByID() (string, error) {
	return render(sq.Delete(g.r.qi(g.table.Name)).Where(g.r.equalsParam(g.id, IDParameter)))
}

// DeleteByIDs deletes the root rows whose id is in :ids.
func (g *Generator) DeleteByIDs() (string, error) {
	return render(sq.Delete(g.r.qi(g.table.Name)).Where(g.r.inParam(g.id, IDsParameter)))
}
