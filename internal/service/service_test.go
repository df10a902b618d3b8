package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atlekbai/aggregate_sql/internal/dialect"
	"github.com/atlekbai/aggregate_sql/internal/query"
	"github.com/atlekbai/aggregate_sql/internal/schema"
	"github.com/atlekbai/aggregate_sql/internal/server"
)

type testEnv struct {
	statements *StatementClient
	metadata   *MetadataClient
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	return setupWithLogger(t, zaptest.NewLogger(t))
}

func setupWithLogger(t *testing.T, logger *zap.Logger) *testEnv {
	t.Helper()

	order := &schema.Entity{Name: "Order", Root: true, Properties: []schema.Property{
		{Name: "id", Kind: schema.KindScalar, ID: true},
		{Name: "placedAt", Kind: schema.KindScalar},
		{Name: "lines", Kind: schema.KindCollection, Target: "OrderLine"},
	}}
	customer := &schema.Entity{Name: "Customer", Root: true, Properties: []schema.Property{
		{Name: "id", Kind: schema.KindScalar, ID: true},
		{Name: "name", Kind: schema.KindScalar},
		{Name: "tags", Kind: schema.KindMap, Target: "Tag"},
	}}
	tag := &schema.Entity{Name: "Tag", Properties: []schema.Property{
		{Name: "label", Kind: schema.KindScalar},
	}}
	line := &schema.Entity{Name: "OrderLine", Properties: []schema.Property{
		{Name: "sku", Kind: schema.KindScalar},
	}}
	cache, err := schema.NewCacheFromEntities(order, customer, tag, line)
	require.NoError(t, err)

	dialects, err := dialect.LookupAll([]string{dialect.Postgres, dialect.Plain})
	require.NoError(t, err)

	catalog, err := query.BuildCatalog(context.Background(), cache, schema.NamingStrategy{PluralTables: true}, dialects, logger)
	require.NoError(t, err)

	mux := server.NewMux([]server.ConnectService{
		NewStatementService(catalog, logger),
		NewMetadataService(catalog, logger),
	}, server.LoggingInterceptor(logger))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testEnv{
		statements: NewStatementClient(srv.Client(), srv.URL),
		metadata:   NewMetadataClient(srv.Client(), srv.URL),
	}
}

func TestRender(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		req    *RenderRequest
		sql    string
		params []string
	}{
		{
			name:   "find one",
			req:    &RenderRequest{Aggregate: "Order", Dialect: dialect.Postgres, Statement: StatementFindOne},
			sql:    `SELECT "orders"."id" AS "id", "orders"."placed_at" AS "placed_at" FROM "orders" WHERE "orders"."id" = :id`,
			params: []string{"id"},
		},
		{
			name:   "delete by path",
			req:    &RenderRequest{Aggregate: "Order", Dialect: dialect.Postgres, Statement: StatementDeleteByPath, Path: "lines"},
			sql:    `DELETE FROM "order_lines" WHERE "order_lines"."orders" = :rootId`,
			params: []string{"rootId"},
		},
		{
			name:   "delete all by root",
			req:    &RenderRequest{Aggregate: "Order", Dialect: dialect.Postgres, Statement: StatementDeleteAllByPath},
			sql:    `DELETE FROM "orders"`,
			params: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, header, err := env.statements.Render(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, resp.SQL)
			assert.ElementsMatch(t, tt.params, resp.Parameters)
			assert.NotEmpty(t, header.Get(server.RequestIDHeader))
		})
	}
}

func TestRenderLogsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	env := setupWithLogger(t, zap.New(core))

	_, header, err := env.statements.Render(context.Background(), &RenderRequest{
		Aggregate: "Order",
		Dialect:   dialect.Postgres,
		Statement: StatementCount,
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("statement rendered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, header.Get(server.RequestIDHeader), entries[0].ContextMap()["request_id"])
}

func TestRenderRejectsUnknownDirection(t *testing.T) {
	env := setup(t)

	_, _, err := env.statements.Render(context.Background(), &RenderRequest{
		Aggregate: "Order",
		Dialect:   dialect.Postgres,
		Statement: StatementFindAll,
		Sort:      []SortOrder{{Property: "placedAt", Direction: "sideways"}},
	})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestRenderUpdate(t *testing.T) {
	env := setup(t)

	resp, _, err := env.statements.Render(context.Background(), &RenderRequest{
		Aggregate: "Customer",
		Dialect:   dialect.Plain,
		Statement: StatementUpdate,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.SQL, "UPDATE")
	assert.Contains(t, resp.Parameters, "name")
	assert.Contains(t, resp.Parameters, "id")
}

func TestRenderErrors(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RenderRequest
		code connect.Code
	}{
		{"unknown aggregate", &RenderRequest{Aggregate: "Invoice", Dialect: dialect.Postgres, Statement: StatementFindOne}, connect.CodeNotFound},
		{"unknown dialect", &RenderRequest{Aggregate: "Order", Dialect: "oracle", Statement: StatementFindOne}, connect.CodeInvalidArgument},
		{"disabled dialect", &RenderRequest{Aggregate: "Order", Dialect: dialect.ANSI, Statement: StatementFindOne}, connect.CodeInvalidArgument},
		{"unknown statement", &RenderRequest{Aggregate: "Order", Dialect: dialect.Postgres, Statement: "merge"}, connect.CodeInvalidArgument},
		{"invalid path", &RenderRequest{Aggregate: "Order", Dialect: dialect.Postgres, Statement: StatementDeleteByPath, Path: "nope"}, connect.CodeInvalidArgument},
		{"zero page size", &RenderRequest{Aggregate: "Order", Dialect: dialect.Postgres, Statement: StatementFindAll, Page: &PageRequest{}}, connect.CodeInvalidArgument},
		{"bad identifier style", &RenderRequest{
			Aggregate: "Order", Dialect: dialect.Postgres, Statement: StatementInsert,
			ExcludedColumns: []Identifier{{Name: "id", Style: "shouting"}},
		}, connect.CodeInvalidArgument},
		{"no version", &RenderRequest{Aggregate: "Order", Dialect: dialect.Postgres, Statement: StatementUpdateWithVersion}, connect.CodeFailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.statements.Render(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, connect.CodeOf(err))

			var ce *connect.Error
			require.True(t, errors.As(err, &ce))
			assert.NotEmpty(t, ce.Meta().Get(server.RequestIDHeader))
		})
	}
}

func TestDescribe(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	resp, err := env.statements.Describe(ctx, &DescribeRequest{Aggregate: "Order", Dialect: dialect.Postgres, Path: "placedAt"})
	require.NoError(t, err)
	assert.Equal(t, "placedAt", resp.Path)
	assert.Equal(t, "scalar", resp.Kind)
	assert.Equal(t, "orders", resp.Table)
	require.NotNil(t, resp.Column)
	assert.Equal(t, "placed_at", resp.Column.Name)
	assert.Equal(t, "orders", resp.Column.Table)
	assert.Nil(t, resp.Join)

	resp, err = env.statements.Describe(ctx, &DescribeRequest{Aggregate: "Order", Dialect: dialect.Postgres, Path: "lines"})
	require.NoError(t, err)
	assert.Equal(t, "collection", resp.Kind)
	assert.Equal(t, "OrderLine", resp.Entity)
	assert.True(t, resp.MultiValued)
	assert.Equal(t, "order_lines", resp.Table)
	assert.Nil(t, resp.Join)

	resp, err = env.statements.Describe(ctx, &DescribeRequest{Aggregate: "Order", Dialect: dialect.Postgres})
	require.NoError(t, err)
	assert.Equal(t, `"orders"`, resp.From)
	require.Len(t, resp.Columns, 2)
	assert.Equal(t, `"orders"."id" AS "id"`, resp.Columns[0].SQL)
	assert.Equal(t, `"orders"."placed_at" AS "placed_at"`, resp.Columns[1].SQL)
	assert.Empty(t, resp.KeyColumn)

	resp, err = env.statements.Describe(ctx, &DescribeRequest{Aggregate: "Customer", Dialect: dialect.Postgres, Path: "tags"})
	require.NoError(t, err)
	assert.Equal(t, "map", resp.Kind)
	assert.Equal(t, "customers_key", resp.KeyColumn)
	assert.Empty(t, resp.Columns)

	_, err = env.statements.Describe(ctx, &DescribeRequest{Aggregate: "Order", Dialect: dialect.Postgres, Path: "lines.nope"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestListAggregates(t *testing.T) {
	env := setup(t)

	resp, err := env.metadata.ListAggregates(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Aggregates, 2)

	assert.Equal(t, "Customer", resp.Aggregates[0].Name)
	assert.Equal(t, "Order", resp.Aggregates[1].Name)
	assert.Equal(t, "orders", resp.Aggregates[1].Table)
	assert.Equal(t, 4, resp.Aggregates[1].Paths)
	assert.Equal(t, []string{dialect.Postgres, dialect.Plain}, resp.Aggregates[1].Dialects)
}

func TestListPaths(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	resp, err := env.metadata.ListPaths(ctx, "Order")
	require.NoError(t, err)

	var paths []string
	for _, p := range resp.Paths {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"id", "placedAt", "lines", "lines.sku"}, paths)
	assert.Equal(t, "", resp.Paths[3].Anchor)
	assert.True(t, resp.Paths[2].MultiValued)

	_, err = env.metadata.ListPaths(ctx, "Invoice")
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}
