package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrInvalidMetadata marks entity descriptions that cannot be used.
var ErrInvalidMetadata = errors.New("invalid metadata")

const loadQuery = `
SELECT
	e.name, e.table_name, e.is_root,
	p.name, p.kind, p.column_name, p.target,
	p.is_id, p.is_version, p.is_read_only, p.is_ordered
FROM metadata.entities e
LEFT JOIN metadata.properties p ON p.entity_name = e.name
ORDER BY e.name, p.position
`

// Cache holds an immutable snapshot of entity metadata. Load and LoadFile swap
// the snapshot atomically; entities handed out are never mutated afterwards.
type Cache struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

func NewCache() *Cache {
	return &Cache{entities: make(map[string]*Entity)}
}

// NewCacheFromEntities builds a cache from in-memory definitions.
func NewCacheFromEntities(entities ...*Entity) (*Cache, error) {
	c := NewCache()
	if err := c.replace(entities); err != nil {
		return nil, err
	}
	return c, nil
}

type metadataFile struct {
	Entities []*Entity `yaml:"entities"`
}

// LoadFile reads entity metadata from a YAML file.
func (c *Cache) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("schema cache read %s: %w", path, err)
	}
	var f metadataFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("schema cache decode %s: %w", path, err)
	}
	return c.replace(f.Entities)
}

// Load reads entity metadata from the metadata tables.
func (c *Cache) Load(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, loadQuery)
	if err != nil {
		return fmt.Errorf("schema cache load: %w", err)
	}
	defer rows.Close()

	var (
		ordered []*Entity
		byName  = make(map[string]*Entity)
	)

	for rows.Next() {
		var (
			eName       string
			eTable      *string
			eIsRoot     bool
			pName       *string
			pKind       *string
			pColumn     *string
			pTarget     *string
			pIsID       *bool
			pIsVersion  *bool
			pIsReadOnly *bool
			pIsOrdered  *bool
		)

		err := rows.Scan(
			&eName, &eTable, &eIsRoot,
			&pName, &pKind, &pColumn, &pTarget,
			&pIsID, &pIsVersion, &pIsReadOnly, &pIsOrdered,
		)
		if err != nil {
			return fmt.Errorf("schema cache scan: %w", err)
		}

		e, exists := byName[eName]
		if !exists {
			e = &Entity{Name: eName, Table: deref(eTable), Root: eIsRoot}
			byName[eName] = e
			ordered = append(ordered, e)
		}

		if pName == nil {
			continue
		}
		kind := KindScalar
		if pKind != nil {
			if kind, err = ParsePropertyKind(*pKind); err != nil {
				return fmt.Errorf("schema cache %s.%s: %w", eName, *pName, err)
			}
		}
		e.Properties = append(e.Properties, Property{
			Name:     *pName,
			Kind:     kind,
			Column:   deref(pColumn),
			Target:   deref(pTarget),
			ID:       derefBool(pIsID),
			Version:  derefBool(pIsVersion),
			ReadOnly: derefBool(pIsReadOnly),
			Ordered:  derefBool(pIsOrdered),
		})
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("schema cache rows: %w", err)
	}

	return c.replace(ordered)
}

func (c *Cache) replace(list []*Entity) error {
	entities := make(map[string]*Entity, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		if err := e.validate(); err != nil {
			return err
		}
		if _, dup := entities[e.Name]; dup {
			return fmt.Errorf("duplicate entity %q: %w", e.Name, ErrInvalidMetadata)
		}
		entities[e.Name] = e
	}
	for _, e := range entities {
		for _, p := range e.Properties {
			if p.IsEntity() && entities[p.Target] == nil {
				return fmt.Errorf("entity %s: property %q references unknown entity %q: %w",
					e.Name, p.Name, p.Target, ErrInvalidMetadata)
			}
		}
	}

	c.mu.Lock()
	c.entities = entities
	c.mu.Unlock()

	return nil
}

func (c *Cache) Get(name string) *Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entities[name]
}

// Roots returns the names of all aggregate roots, sorted.
func (c *Cache) Roots() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var roots []string
	for name, e := range c.entities {
		if e.Root {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	return roots
}

// EntityCount returns the number of loaded entities.
func (c *Cache) EntityCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entities)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
