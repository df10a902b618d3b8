package query

// Join returns the join that fetches path with its root, or nil when path is not
// loaded through a join.
func (g *Generator) Join(path string) (*Join, error) {
	p, err := g.model.Resolve(path)
	if err != nil {
		return nil, err
	}
	j, ok := joinOf(p)
	if !ok {
		return nil, nil
	}
	return &j, nil
}

// Column returns the column selected for path, or nil when nothing is selected for it.
func (g *Generator) Column(path string) (*Column, error) {
	p, err := g.model.Resolve(path)
	if err != nil {
		return nil, err
	}
	c, ok := columnOf(p)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Table returns the table reference that stores path.
func (g *Generator) Table(path string) (Table, error) {
	p, err := g.model.Resolve(path)
	if err != nil {
		return Table{}, err
	}
	return tableOf(p), nil
}

// Joins returns the joins shared by every select statement.
func (g *Generator) Joins() []Join { return append([]Join(nil), g.joins...) }

// Columns returns the selected columns in result-set order.
func (g *Generator) Columns() []Column { return append([]Column(nil), g.selected...) }

// RenderTable renders t as it appears in a FROM or JOIN clause.
func (g *Generator) RenderTable(t Table) string { return g.r.from(t) }

// RenderColumn renders c as it appears in a select list.
func (g *Generator) RenderColumn(c Column) string { return g.r.selected(c) }

// RenderJoin renders j as a LEFT OUTER JOIN clause.
func (g *Generator) RenderJoin(j Join) string { return g.r.joinClause(j) }
