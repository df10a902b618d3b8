package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/aggregate_sql/internal/schema"
)

func TestQuote(t *testing.T) {
	derived := schema.DerivedIdent("order_line")
	quoted := schema.QuotedIdent(`Mixed"Case`)
	raw := schema.UnquotedIdent("key-column")

	tests := []struct {
		dialect string
		derived string
		quoted  string
	}{
		{ANSI, `"ORDER_LINE"`, `"Mixed""Case"`},
		{Postgres, `"order_line"`, `"Mixed""Case"`},
		{MySQL, "`order_line`", "`Mixed\"Case`"},
		{SQLServer, "[order_line]", `[Mixed"Case]`},
		{Plain, "order_line", `Mixed"Case`},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			d, err := Lookup(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.derived, d.Quote(derived))
			assert.Equal(t, tt.quoted, d.Quote(quoted))
			assert.Equal(t, "key-column", d.Quote(raw))
		})
	}
}

func TestQuoteDoublesClosingCharacter(t *testing.T) {
	mysql, err := Lookup(MySQL)
	require.NoError(t, err)
	assert.Equal(t, "`a``b`", mysql.Quote(schema.QuotedIdent("a`b")))

	sqlserver, err := Lookup(SQLServer)
	require.NoError(t, err)
	assert.Equal(t, "[a]]b]", sqlserver.Quote(schema.QuotedIdent("a]b")))
}

func TestPagination(t *testing.T) {
	tests := map[string]string{
		ANSI:      "OFFSET 30 ROWS FETCH FIRST 10 ROWS ONLY",
		Postgres:  "LIMIT 10 OFFSET 30",
		MySQL:     "LIMIT 10 OFFSET 30",
		SQLServer: "OFFSET 30 ROWS FETCH NEXT 10 ROWS ONLY",
		Plain:     "LIMIT 10 OFFSET 30",
	}
	for name, want := range tests {
		d, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, want, d.Pagination(30, 10), name)
	}

	assert.Equal(t, "LIMIT 1 OFFSET 2", Dialect{}.Pagination(2, 1))
}

func TestLookup(t *testing.T) {
	d, err := Lookup("  Postgres ")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d.Name)

	_, err = Lookup("oracle")
	require.ErrorIs(t, err, ErrUnknownDialect)

	all, err := LookupAll([]string{ANSI, Plain})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ANSI, all[0].Name)

	_, err = LookupAll([]string{ANSI, "db2"})
	require.ErrorIs(t, err, ErrUnknownDialect)

	assert.Equal(t, []string{ANSI, MySQL, Plain, Postgres, SQLServer}, Names())
}
