package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/aggregate_sql/internal/aggregate"
	"github.com/atlekbai/aggregate_sql/internal/dialect"
)

func TestDeleteByPath(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{
			name: "first level",
			root: "DummyEntity",
			path: "ref",
			want: "DELETE FROM referenced_entity WHERE referenced_entity.dummy_entity = :rootId",
		},
		{
			name: "second level",
			root: "DummyEntity",
			path: "ref.further",
			want: "DELETE FROM second_level_referenced_entity WHERE second_level_referenced_entity.referenced_entity IN " +
				"(SELECT referenced_entity.x_l1id FROM referenced_entity WHERE referenced_entity.dummy_entity = :rootId)",
		},
		{
			name: "map",
			root: "DummyEntity",
			path: "mappedElements",
			want: "DELETE FROM element WHERE element.dummy_entity = :rootId",
		},
		{
			name: "collection",
			root: "DummyEntity",
			path: "elements",
			want: "DELETE FROM element WHERE element.dummy_entity = :rootId",
		},
		{
			name: "long chain with ids",
			root: "Chain4",
			path: "chain3.chain2.chain1.chain0",
			want: "DELETE FROM chain0 " +
				"WHERE chain0.chain1 IN (" +
				"SELECT chain1.x_one " +
				"FROM chain1 " +
				"WHERE chain1.chain2 IN (" +
				"SELECT chain2.x_two " +
				"FROM chain2 " +
				"WHERE chain2.chain3 IN (" +
				"SELECT chain3.x_three " +
				"FROM chain3 " +
				"WHERE chain3.chain4 = :rootId" +
				")))",
		},
		{
			name: "long chain without ids",
			root: "NoIdChain4",
			path: "chain3.chain2.chain1.chain0",
			want: "DELETE FROM no_id_chain0 WHERE no_id_chain0.no_id_chain4 = :rootId",
		},
		{
			name: "chain without ids below a nested anchor",
			root: "IdIdNoIdChain",
			path: "idNoIdChain.chain4.chain3.chain2.chain1.chain0",
			want: "DELETE FROM no_id_chain0 " +
				"WHERE no_id_chain0.no_id_chain4 IN (" +
				"SELECT no_id_chain4.x_four " +
				"FROM no_id_chain4 " +
				"WHERE no_id_chain4.id_no_id_chain IN (" +
				"SELECT id_no_id_chain.x_id " +
				"FROM id_no_id_chain " +
				"WHERE id_no_id_chain.id_id_no_id_chain = :rootId" +
				"))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(t, tt.root, dialect.Plain)
			assert.Equal(t, tt.want, mustSQL(t)(g.DeleteByPath(tt.path)))
		})
	}
}

func TestDeleteAllByPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"root", "", "DELETE FROM dummy_entity"},
		{"first level", "ref", "DELETE FROM referenced_entity WHERE referenced_entity.dummy_entity IS NOT NULL"},
		{
			"second level",
			"ref.further",
			"DELETE FROM second_level_referenced_entity WHERE second_level_referenced_entity.referenced_entity IN " +
				"(SELECT referenced_entity.x_l1id FROM referenced_entity WHERE referenced_entity.dummy_entity IS NOT NULL)",
		},
		{"map", "mappedElements", "DELETE FROM element WHERE element.dummy_entity IS NOT NULL"},
	}

	g := newGenerator(t, "DummyEntity", dialect.Plain)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustSQL(t)(g.DeleteAllByPath(tt.path)))
		})
	}
}

func TestDeleteAllIsNotNullVariantOfDeleteByPath(t *testing.T) {
	for _, root := range []string{"DummyEntity", "Chain4", "NoIdChain4", "IdIdNoIdChain"} {
		g := newGenerator(t, root, dialect.ANSI)
		for _, p := range g.Model().Paths() {
			if !p.IsEntity() {
				continue
			}
			byRoot := mustSQL(t)(g.DeleteByPath(p.String()))
			all := mustSQL(t)(g.DeleteAllByPath(p.String()))
			assert.Equal(t, strings.Replace(byRoot, " = :rootId", " IS NOT NULL", 1), all, "%s.%s", root, p)
		}
	}
}

func TestDeleteByPathQuoted(t *testing.T) {
	g := newGenerator(t, "DummyEntity", dialect.ANSI)
	assert.Equal(t,
		`DELETE FROM "SECOND_LEVEL_REFERENCED_ENTITY" WHERE "SECOND_LEVEL_REFERENCED_ENTITY"."REFERENCED_ENTITY" IN `+
			`(SELECT "REFERENCED_ENTITY"."X_L1ID" FROM "REFERENCED_ENTITY" WHERE "REFERENCED_ENTITY"."DUMMY_ENTITY" = :rootId)`,
		mustSQL(t)(g.DeleteByPath("ref.further")))
}

func TestDeleteByPathErrors(t *testing.T) {
	g := newGenerator(t, "DummyEntity", dialect.Plain)

	_, err := g.DeleteByPath("ref.missing")
	require.ErrorIs(t, err, aggregate.ErrInvalidPath)
	var pathErr *aggregate.InvalidPathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "missing", pathErr.Segment)

	_, err = g.DeleteByPath("")
	require.ErrorIs(t, err, aggregate.ErrInvalidPath)

	_, err = g.DeleteByPath("ref.content")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = g.DeleteAllByPath("name")
	require.ErrorIs(t, err, ErrInvalidArgument)
}
