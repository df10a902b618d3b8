package query

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/atlekbai/aggregate_sql/internal/aggregate"
	"github.com/atlekbai/aggregate_sql/internal/dialect"
	"github.com/atlekbai/aggregate_sql/internal/schema"
)

const countAll = "COUNT(*)"

// rawSortKeyRe accepts the unaliased column or property names allowed as sort keys.
var rawSortKeyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Generator renders the statements of one aggregate root in one dialect.
// Joins, selected columns and write columns are resolved once by NewGenerator;
// every method is a pure function of its arguments, so a Generator can be
// shared between goroutines.
type Generator struct {
	model    *aggregate.Model
	r        renderer
	table    Table
	id       Column
	version  *Column
	selected []Column
	joins    []Join
	// writable holds the root's own scalar columns minus the id and read-only ones, sorted by name.
	writable []schema.Ident
}

// NewGenerator returns a generator for the aggregate described by model.
func NewGenerator(model *aggregate.Model, d dialect.Dialect) *Generator {
	root := model.Root()
	table := tableOf(root)
	idName, _ := root.IDColumnName()

	g := &Generator{
		model: model,
		r:     renderer{dialect: d},
		table: table,
		id:    Column{Table: table, Name: idName},
		joins: joinsFor(model),
	}

	for _, p := range model.Paths() {
		if c, ok := columnOf(p); ok {
			g.selected = append(g.selected, c)
		}
	}

	entity := model.RootEntity()
	naming := model.Naming()
	if v := entity.VersionProperty(); v != nil {
		g.version = &Column{Table: table, Name: naming.ColumnName(v)}
	}
	for i := range entity.Properties {
		prop := &entity.Properties[i]
		if prop.IsEntity() || prop.ID || prop.ReadOnly {
			continue
		}
		g.writable = append(g.writable, naming.ColumnName(prop))
	}
	sort.Slice(g.writable, func(i, j int) bool { return g.writable[i].Name < g.writable[j].Name })

	return g
}

func (g *Generator) Model() *aggregate.Model { return g.model }

func (g *Generator) Dialect() dialect.Dialect { return g.r.dialect }

// selectBase is the SELECT ... FROM root LEFT OUTER JOIN ... shared by all finders.
func (g *Generator) selectBase(extra ...Column) sq.SelectBuilder {
	cols := make([]string, 0, len(g.selected)+len(extra))
	for _, c := range g.selected {
		cols = append(cols, g.r.selected(c))
	}
	for _, c := range extra {
		cols = append(cols, g.r.selected(c))
	}

	qb := sq.Select(cols...).From(g.r.from(g.table))
	for _, j := range g.joins {
		qb = qb.JoinClause(g.r.joinClause(j))
	}
	return qb
}

// FindOne selects the aggregate whose id equals :id.
func (g *Generator) FindOne() (string, error) {
	return render(g.selectBase().Where(g.r.equalsParam(g.id, IDParameter)))
}

// FindAllInList selects the aggregates whose id is in :ids.
func (g *Generator) FindAllInList() (string, error) {
	return render(g.selectBase().Where(g.r.inParam(g.id, IDsParameter)))
}

// FindAll selects every aggregate. A nil sort and a nil page add no clauses.
func (g *Generator) FindAll(s Sort, page *Page) (string, error) {
	qb := g.selectBase()

	orders, err := g.orderBy(s)
	if err != nil {
		return "", err
	}
	if len(orders) > 0 {
		qb = qb.OrderBy(orders...)
	}

	if page != nil {
		if page.Size == 0 {
			return "", fmt.Errorf("%w: page size must be positive", ErrInvalidArgument)
		}
		if page.Number > math.MaxUint64/page.Size {
			return "", fmt.Errorf("%w: page %d of size %d overflows the offset", ErrInvalidArgument, page.Number, page.Size)
		}
		qb = qb.Suffix(g.r.dialect.Pagination(page.Offset(), page.Size))
	}

	return render(qb)
}

// orderBy resolves each sort key to the alias of the column it names. Keys that
// are not selectable scalar paths are emitted as given, provided they are plain
// dotted names.
func (g *Generator) orderBy(s Sort) ([]string, error) {
	out := make([]string, 0, len(s))
	for _, o := range s {
		if o.Property == "" {
			return nil, fmt.Errorf("%w: empty sort property", ErrInvalidArgument)
		}
		key, ok := g.sortAlias(o.Property)
		if !ok {
			if !rawSortKeyRe.MatchString(o.Property) {
				return nil, fmt.Errorf("%w: sort property %q is not a plain name", ErrInvalidArgument, o.Property)
			}
			key = o.Property
		}
		out = append(out, key+" "+o.Direction.String())
	}
	return out, nil
}

func (g *Generator) sortAlias(property string) (string, bool) {
	p, err := g.model.Resolve(property)
	if err != nil || p.IsEntity() {
		return "", false
	}
	c, ok := columnOf(p)
	if !ok {
		return "", false
	}
	return g.r.qi(c.Alias), true
}

// FindAllByProperty selects the aggregates owned by the parent row identified by
// parent. keyColumn, when non-zero, is selected as well and used as the sole
// ordering if ordered is set.
func (g *Generator) FindAllByProperty(parent ParentIdentifier, keyColumn schema.Ident, ordered bool) (string, error) {
	if len(parent) == 0 {
		return "", fmt.Errorf("%w: parent identifier has no parts", ErrInvalidArgument)
	}
	if ordered && keyColumn.IsZero() {
		return "", fmt.Errorf("%w: ordered lookup requires a key column", ErrInvalidArgument)
	}

	var extra []Column
	if !keyColumn.IsZero() {
		extra = append(extra, Column{Table: g.table, Name: keyColumn})
	}

	qb := g.selectBase(extra...)
	for _, part := range parent {
		qb = qb.Where(g.r.equalsParam(Column{Table: g.table, Name: part}, BindParameterName(part)))
	}
	if ordered {
		qb = qb.OrderBy(g.r.qi(keyColumn))
	}
	return render(qb)
}

// Exists counts the root rows with id :id.
func (g *Generator) Exists() (string, error) {
	return render(sq.Select(countAll).From(g.r.from(g.table)).Where(g.r.equalsParam(g.id, IDParameter)))
}

// Count counts all root rows.
func (g *Generator) Count() (string, error) {
	return render(sq.Select(countAll).From(g.r.from(g.table)))
}
