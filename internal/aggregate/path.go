package aggregate

import (
	"github.com/atlekbai/aggregate_sql/internal/schema"
)

// Path describes one position of the aggregate tree.
type Path struct {
	model *Model
	node  *node
}

func (p *Path) String() string { return p.node.path }

// Len is the number of property steps; the root has length zero.
func (p *Path) Len() int { return p.node.depth }

func (p *Path) IsRoot() bool { return p.node.parent == noParent }

// Parent returns the enclosing path, or nil for the root.
func (p *Path) Parent() *Path {
	if p.IsRoot() {
		return nil
	}
	return p.model.at(p.node.parent)
}

// Property returns the leaf property, or nil for the root.
func (p *Path) Property() *schema.Property { return p.node.property }

// Kind is the reference kind of the leaf. The root counts as a single reference.
func (p *Path) Kind() schema.PropertyKind {
	if p.IsRoot() {
		return schema.KindReference
	}
	return p.node.property.Kind
}

// IsEntity reports whether the leaf is a nested entity rather than a scalar.
func (p *Path) IsEntity() bool { return p.Kind() != schema.KindScalar }

// Entity is the leaf entity of an entity path or the owning entity of a scalar path.
func (p *Path) Entity() *schema.Entity { return p.node.entity }

// HasID reports whether the leaf entity declares its own identifier.
func (p *Path) HasID() bool { return p.IsEntity() && p.node.entity.HasID() }

// IsMultiValued reports whether the leaf or any step before it is a collection or map.
func (p *Path) IsMultiValued() bool { return p.node.multiValued }

// Anchor returns the nearest entity path, p included, that declares an identifier.
func (p *Path) Anchor() *Path { return p.model.at(p.node.anchor) }

// IDDefiningParent returns the anchor of the parent: the row that the
// back-reference column of p points at. It is nil for the root.
func (p *Path) IDDefiningParent() *Path {
	if p.IsRoot() {
		return nil
	}
	return p.Parent().Anchor()
}

// TableOwner returns the entity path whose table stores p.
func (p *Path) TableOwner() *Path {
	if p.IsEntity() {
		return p
	}
	return p.Parent()
}

// TableName is the table of the table owner.
func (p *Path) TableName() schema.Ident {
	return p.model.naming.TableName(p.TableOwner().Entity())
}

// ColumnName returns the column of a scalar path.
func (p *Path) ColumnName() (schema.Ident, bool) {
	if p.IsEntity() {
		return schema.Ident{}, false
	}
	return p.model.naming.ColumnName(p.node.property), true
}

// IDColumnName returns the identifier column of the leaf entity.
func (p *Path) IDColumnName() (schema.Ident, bool) {
	id := p.Entity().IDProperty()
	if id == nil {
		return schema.Ident{}, false
	}
	return p.model.naming.ColumnName(id), true
}

// ReverseColumnName returns the back-reference column of a nested entity.
// It is named after the table of IDDefiningParent.
func (p *Path) ReverseColumnName() schema.Ident {
	if p.IsRoot() {
		return schema.Ident{}
	}
	return p.model.naming.ReverseColumnName(p.IDDefiningParent().Entity())
}

// KeyColumnName returns the key column of a map or ordered collection path.
func (p *Path) KeyColumnName() (schema.Ident, bool) {
	if p.IsRoot() {
		return schema.Ident{}, false
	}
	prop := p.node.property
	if prop.Kind != schema.KindMap && !(prop.Kind == schema.KindCollection && prop.Ordered) {
		return schema.Ident{}, false
	}
	return p.model.naming.KeyColumnName(p.IDDefiningParent().Entity()), true
}
