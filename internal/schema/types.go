package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// IdentStyle controls how a dialect renders an identifier.
type IdentStyle int

const (
	// Quoted identifiers are quoted by quoting dialects with their case preserved.
	Quoted IdentStyle = iota
	// Derived identifiers come from a naming strategy; quoting dialects apply
	// their letter casing before quoting.
	Derived
	// Unquoted identifiers are emitted verbatim by every dialect.
	Unquoted
)

// Ident is a SQL identifier together with its rendering style.
type Ident struct {
	Name  string
	Style IdentStyle
}

func QuotedIdent(name string) Ident   { return Ident{Name: name, Style: Quoted} }
func DerivedIdent(name string) Ident  { return Ident{Name: name, Style: Derived} }
func UnquotedIdent(name string) Ident { return Ident{Name: name, Style: Unquoted} }

// IsZero reports whether the identifier is absent.
func (i Ident) IsZero() bool { return i.Name == "" }

// Transform returns a new identifier with the same style and a rewritten name.
func (i Ident) Transform(fn func(string) string) Ident {
	return Ident{Name: fn(i.Name), Style: i.Style}
}

func (i Ident) String() string { return i.Name }

// PropertyKind is the closed set of property shapes.
type PropertyKind int

const (
	KindScalar PropertyKind = iota
	KindReference
	KindCollection
	KindMap
)

var kindNames = map[PropertyKind]string{
	KindScalar:     "scalar",
	KindReference:  "reference",
	KindCollection: "collection",
	KindMap:        "map",
}

func (k PropertyKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("PropertyKind(%d)", int(k))
}

// ParsePropertyKind parses the textual form used in metadata files and tables.
func ParsePropertyKind(s string) (PropertyKind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown property kind %q: %w", s, ErrInvalidMetadata)
}

func (k *PropertyKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePropertyKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Property belongs to exactly one entity.
type Property struct {
	Name string       `yaml:"name"`
	Kind PropertyKind `yaml:"kind"`
	// Column overrides the naming strategy; it is rendered as a quoted identifier.
	Column string `yaml:"column,omitempty"`
	// Target names the nested entity of reference, collection and map properties.
	Target   string `yaml:"target,omitempty"`
	ID       bool   `yaml:"id,omitempty"`
	Version  bool   `yaml:"version,omitempty"`
	ReadOnly bool   `yaml:"read_only,omitempty"`
	// Ordered marks list-like collections whose elements carry an index column.
	Ordered bool `yaml:"ordered,omitempty"`
}

// IsEntity reports whether the property points at a nested entity.
func (p *Property) IsEntity() bool { return p.Kind != KindScalar }

// IsMultiValued reports whether the property holds many nested entities.
func (p *Property) IsMultiValued() bool {
	return p.Kind == KindCollection || p.Kind == KindMap
}

// Entity is a named relation.
type Entity struct {
	Name string `yaml:"name"`
	// Table overrides the naming strategy; it is rendered as a quoted identifier.
	Table      string     `yaml:"table,omitempty"`
	Root       bool       `yaml:"root,omitempty"`
	Properties []Property `yaml:"properties"`
}

// Property returns the property with the given name or nil.
func (e *Entity) Property(name string) *Property {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i]
		}
	}
	return nil
}

// IDProperty returns the identifier property or nil when the entity has none.
func (e *Entity) IDProperty() *Property {
	for i := range e.Properties {
		if e.Properties[i].ID {
			return &e.Properties[i]
		}
	}
	return nil
}

// VersionProperty returns the optimistic locking property or nil.
func (e *Entity) VersionProperty() *Property {
	for i := range e.Properties {
		if e.Properties[i].Version {
			return &e.Properties[i]
		}
	}
	return nil
}

func (e *Entity) HasID() bool { return e.IDProperty() != nil }

// validate checks the entity in isolation; reference targets are checked by the cache.
func (e *Entity) validate() error {
	if e.Name == "" {
		return fmt.Errorf("entity without name: %w", ErrInvalidMetadata)
	}
	seen := make(map[string]bool, len(e.Properties))
	ids, versions := 0, 0
	for _, p := range e.Properties {
		if p.Name == "" {
			return fmt.Errorf("entity %s: property without name: %w", e.Name, ErrInvalidMetadata)
		}
		if seen[p.Name] {
			return fmt.Errorf("entity %s: duplicate property %q: %w", e.Name, p.Name, ErrInvalidMetadata)
		}
		seen[p.Name] = true

		if p.IsEntity() {
			if p.Target == "" {
				return fmt.Errorf("entity %s: %s property %q has no target: %w", e.Name, p.Kind, p.Name, ErrInvalidMetadata)
			}
			if p.ID || p.Version || p.ReadOnly {
				return fmt.Errorf("entity %s: %s property %q cannot be id, version or read-only: %w", e.Name, p.Kind, p.Name, ErrInvalidMetadata)
			}
		}
		if p.ID {
			ids++
		}
		if p.Version {
			versions++
		}
	}
	if ids > 1 {
		return fmt.Errorf("entity %s declares %d id properties: %w", e.Name, ids, ErrInvalidMetadata)
	}
	if versions > 1 {
		return fmt.Errorf("entity %s declares %d version properties: %w", e.Name, versions, ErrInvalidMetadata)
	}
	return nil
}
