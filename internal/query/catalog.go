package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atlekbai/aggregate_sql/internal/aggregate"
	"github.com/atlekbai/aggregate_sql/internal/dialect"
	"github.com/atlekbai/aggregate_sql/internal/schema"
)

type catalogKey struct {
	root    string
	dialect string
}

// Catalog holds one Generator per (aggregate root, dialect) pair. It is built
// once and only read afterwards.
type Catalog struct {
	roots      []string
	dialects   []dialect.Dialect
	models     map[string]*aggregate.Model
	generators map[catalogKey]*Generator
}

// BuildCatalog resolves the path model of every root in cache and a generator
// for each of the given dialects. Roots are resolved concurrently; the first
// failing root aborts the build.
func BuildCatalog(ctx context.Context, cache *schema.Cache, naming schema.NamingStrategy, dialects []dialect.Dialect, logger *zap.Logger) (*Catalog, error) {
	if len(dialects) == 0 {
		return nil, fmt.Errorf("%w: no dialects configured", ErrInvalidArgument)
	}

	roots := cache.Roots()
	models := make([]*aggregate.Model, len(roots))
	gens := make([][]*Generator, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := aggregate.New(cache, root, naming)
			if err != nil {
				return fmt.Errorf("aggregate %s: %w", root, err)
			}
			models[i] = m
			gens[i] = make([]*Generator, len(dialects))
			for j, d := range dialects {
				gens[i][j] = NewGenerator(m, d)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Catalog{
		roots:      roots,
		dialects:   dialects,
		models:     make(map[string]*aggregate.Model, len(roots)),
		generators: make(map[catalogKey]*Generator, len(roots)*len(dialects)),
	}
	for i, root := range roots {
		c.models[root] = models[i]
		for j, d := range dialects {
			c.generators[catalogKey{root: root, dialect: d.Name}] = gens[i][j]
		}
		logger.Debug("aggregate resolved",
			zap.String("root", root),
			zap.Int("paths", len(models[i].Paths())),
			zap.Int("joins", len(gens[i][0].joins)),
		)
	}

	logger.Info("statement catalog built",
		zap.Int("aggregates", len(roots)),
		zap.Int("dialects", len(dialects)),
	)
	return c, nil
}

// Generator returns the generator of root rendering in the named dialect.
func (c *Catalog) Generator(root, dialectName string) (*Generator, error) {
	d, err := dialect.Lookup(dialectName)
	if err != nil {
		return nil, err
	}
	gen, ok := c.generators[catalogKey{root: root, dialect: d.Name}]
	if !ok {
		if _, known := c.models[root]; !known {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAggregate, root)
		}
		return nil, fmt.Errorf("%w: %q is not enabled", dialect.ErrUnknownDialect, d.Name)
	}
	return gen, nil
}

// Model returns the path model of root.
func (c *Catalog) Model(root string) (*aggregate.Model, error) {
	m, ok := c.models[root]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAggregate, root)
	}
	return m, nil
}

// Aggregates returns the root names, sorted.
func (c *Catalog) Aggregates() []string { return append([]string(nil), c.roots...) }

// Dialects returns the names of the enabled dialects in configuration order.
func (c *Catalog) Dialects() []string {
	names := make([]string, len(c.dialects))
	for i, d := range c.dialects {
		names[i] = d.Name
	}
	return names
}
