// Package aggregate resolves property paths over the entity tree owned by an
// aggregate root.
//
// A Model is an arena of path positions computed once, breadth first, when the
// model is built. Every position stores the index of its parent and of its
// anchor (the nearest entity on the path, itself included, that declares an
// identifier), so callers never re-walk the tree to answer those questions.
package aggregate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atlekbai/aggregate_sql/internal/schema"
)

var (
	ErrInvalidPath     = errors.New("invalid path")
	ErrCyclicAggregate = errors.New("cyclic aggregate")
	ErrRootWithoutID   = errors.New("aggregate root declares no identifier")
	ErrUnknownEntity   = errors.New("unknown entity")
)

// InvalidPathError reports a dotted path that does not exist below the root.
type InvalidPathError struct {
	Root    string
	Path    string
	Segment string
}

func (e *InvalidPathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("invalid path %q on %s", e.Path, e.Root)
	}
	return fmt.Sprintf("invalid path %q on %s: no property %q", e.Path, e.Root, e.Segment)
}

func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }

const (
	pathSeparator  = "."
	aliasSeparator = "_"
	noParent       = -1
)

// Model is the immutable path tree of one aggregate root.
type Model struct {
	root   *schema.Entity
	naming schema.NamingStrategy
	nodes  []node
	byPath map[string]int
}

type node struct {
	index       int
	parent      int
	anchor      int
	depth       int
	property    *schema.Property
	entity      *schema.Entity // target entity for entity steps, owning entity for scalars
	path        string
	multiValued bool
}

// New builds the path model of the aggregate rooted at rootName.
func New(cache *schema.Cache, rootName string, naming schema.NamingStrategy) (*Model, error) {
	root := cache.Get(rootName)
	if root == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, rootName)
	}
	if !root.HasID() {
		return nil, fmt.Errorf("%s: %w", rootName, ErrRootWithoutID)
	}

	m := &Model{
		root:   root,
		naming: naming,
		nodes:  []node{{index: 0, parent: noParent, anchor: 0, entity: root}},
		byPath: map[string]int{"": 0},
	}

	// Breadth first: every parent precedes its descendants and shallower
	// positions precede deeper ones.
	for i := 0; i < len(m.nodes); i++ {
		parent := m.nodes[i]
		if parent.property != nil && !parent.property.IsEntity() {
			continue
		}
		for j := range parent.entity.Properties {
			prop := &parent.entity.Properties[j]
			if err := m.add(cache, i, prop); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

func (m *Model) add(cache *schema.Cache, parentIdx int, prop *schema.Property) error {
	parent := m.nodes[parentIdx]

	n := node{
		index:       len(m.nodes),
		parent:      parentIdx,
		anchor:      parent.anchor,
		depth:       parent.depth + 1,
		property:    prop,
		entity:      parent.entity,
		path:        joinPath(parent.path, prop.Name),
		multiValued: parent.multiValued || prop.IsMultiValued(),
	}

	if prop.IsEntity() {
		target := cache.Get(prop.Target)
		if target == nil {
			return fmt.Errorf("%s: %w: %q", n.path, ErrUnknownEntity, prop.Target)
		}
		if m.onChain(parentIdx, target) {
			return fmt.Errorf("%s: %s reached again: %w", n.path, target.Name, ErrCyclicAggregate)
		}
		n.entity = target
		if target.HasID() {
			n.anchor = n.index
		}
	}

	m.nodes = append(m.nodes, n)
	m.byPath[n.path] = n.index
	return nil
}

// onChain reports whether entity already occurs on the path ending at idx.
func (m *Model) onChain(idx int, entity *schema.Entity) bool {
	for ; idx != noParent; idx = m.nodes[idx].parent {
		if m.nodes[idx].entity == entity {
			return true
		}
	}
	return false
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + pathSeparator + name
}

func (m *Model) RootEntity() *schema.Entity { return m.root }

func (m *Model) Naming() schema.NamingStrategy { return m.naming }

func (m *Model) Root() *Path { return m.at(0) }

// Resolve returns the descriptor of a dotted property path. The empty path is the root.
func (m *Model) Resolve(path string) (*Path, error) {
	if idx, ok := m.byPath[path]; ok {
		return m.at(idx), nil
	}
	return nil, m.invalid(path)
}

// invalid locates the first segment of path that does not resolve.
func (m *Model) invalid(path string) error {
	err := &InvalidPathError{Root: m.root.Name, Path: path}
	prefix := ""
	for _, segment := range strings.Split(path, pathSeparator) {
		prefix = joinPath(prefix, segment)
		if _, ok := m.byPath[prefix]; !ok {
			err.Segment = segment
			break
		}
	}
	return err
}

// Paths returns every non-root path in breadth-first order.
func (m *Model) Paths() []*Path {
	out := make([]*Path, 0, len(m.nodes)-1)
	for i := 1; i < len(m.nodes); i++ {
		out = append(out, m.at(i))
	}
	return out
}

func (m *Model) at(idx int) *Path {
	return &Path{model: m, node: &m.nodes[idx]}
}
