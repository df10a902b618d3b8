package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/aggregate_sql/internal/aggregate"
)

// rootCondition restricts a back-reference column that points at the root row.
type rootCondition func(Column) sq.Sqlizer

// DeleteByPath deletes the rows stored for path that belong to the root with id :rootId.
func (g *Generator) DeleteByPath(path string) (string, error) {
	p, err := g.deletable(path)
	if err != nil {
		return "", err
	}
	if p.IsRoot() {
		return "", &aggregate.InvalidPathError{Root: g.model.RootEntity().Name, Path: path}
	}
	return g.cascade(p, func(c Column) sq.Sqlizer { return g.r.equalsParam(c, RootIDParameter) })
}

// DeleteAllByPath deletes the rows stored for path under any root. The root path
// deletes every root row.
func (g *Generator) DeleteAllByPath(path string) (string, error) {
	p, err := g.deletable(path)
	if err != nil {
		return "", err
	}
	if p.IsRoot() {
		return render(sq.Delete(g.r.qi(g.table.Name)))
	}
	return g.cascade(p, g.r.isNotNull)
}

func (g *Generator) deletable(path string) (*aggregate.Path, error) {
	p, err := g.model.Resolve(path)
	if err != nil {
		return nil, err
	}
	if !p.IsEntity() {
		return nil, fmt.Errorf("%w: %q is a scalar property", ErrInvalidArgument, path)
	}
	return p, nil
}

// cascade filters the table of p by its back-reference column. Below the first
// level the filter becomes a chain of IN sub-selects, one per ancestor that
// declares an id; ancestors without an id share the back-reference of their
// anchor and add no level.
func (g *Generator) cascade(p *aggregate.Path, cond rootCondition) (string, error) {
	table := Table{Name: p.TableName()}
	filter := Column{Table: table, Name: p.ReverseColumnName()}

	where := cond(filter)
	if p.Len() > 1 {
		var err error
		if where, err = g.subselectCondition(p, cond, filter); err != nil {
			return "", err
		}
	}
	return render(sq.Delete(g.r.qi(table.Name)).Where(where))
}

func (g *Generator) subselectCondition(p *aggregate.Path, cond rootCondition, filter Column) (sq.Sqlizer, error) {
	parent := p.Parent()

	if !parent.HasID() {
		if parent.Len() > 1 {
			return g.subselectCondition(parent, cond, filter)
		}
		return cond(filter), nil
	}

	parentTable := Table{Name: parent.TableName()}
	idName, _ := parent.IDColumnName()
	parentID := Column{Table: parentTable, Name: idName}
	parentRef := Column{Table: parentTable, Name: parent.ReverseColumnName()}

	inner := cond(parentRef)
	if parent.Len() > 1 {
		var err error
		if inner, err = g.subselectCondition(parent, cond, parentRef); err != nil {
			return nil, err
		}
	}

	sub, err := render(sq.Select(g.r.ref(parentID)).From(g.r.from(parentTable)).Where(inner))
	if err != nil {
		return nil, err
	}
	return g.r.inSubselect(filter, sub), nil
}
