package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDBName(t *testing.T) {
	tests := map[string]string{
		"name":                        "name",
		"readOnlyValue":               "read_only_value",
		"DummyEntity":                 "dummy_entity",
		"SecondLevelReferencedEntity": "second_level_referenced_entity",
		"NoIdChain0":                  "no_id_chain0",
		"already_snake":               "already_snake",
		"with_Upper":                  "with_upper",
		"userID":                      "user_id",
		"HTTPServer":                  "http_server",
		"APIKey":                      "api_key",
		"ID":                          "id",
		"A":                           "a",
		"a_B":                         "a_b",
		"ÄpfelBaum":                   "äpfel_baum",
		"":                            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToDBName(in), in)
	}
}

func TestNamingStrategy(t *testing.T) {
	e := &Entity{Name: "OrderLine"}
	explicit := &Entity{Name: "Legacy", Table: "LEGACY_tbl"}
	prop := &Property{Name: "unitPrice"}
	explicitProp := &Property{Name: "sku", Column: "SKU_Code"}

	t.Run("defaults", func(t *testing.T) {
		var ns NamingStrategy
		assert.Equal(t, DerivedIdent("order_line"), ns.TableName(e))
		assert.Equal(t, DerivedIdent("unit_price"), ns.ColumnName(prop))
		assert.Equal(t, DerivedIdent("order_line"), ns.ReverseColumnName(e))
		assert.Equal(t, DerivedIdent("order_line_key"), ns.KeyColumnName(e))
	})

	t.Run("prefixes and plurals", func(t *testing.T) {
		ns := NamingStrategy{TablePrefix: "app_", ColumnPrefix: "x_", PluralTables: true}
		assert.Equal(t, DerivedIdent("app_order_lines"), ns.TableName(e))
		assert.Equal(t, DerivedIdent("x_unit_price"), ns.ColumnName(prop))
	})

	t.Run("explicit names are quoted and untouched", func(t *testing.T) {
		ns := NamingStrategy{TablePrefix: "app_", ColumnPrefix: "x_", PluralTables: true}
		assert.Equal(t, QuotedIdent("LEGACY_tbl"), ns.TableName(explicit))
		assert.Equal(t, QuotedIdent("SKU_Code"), ns.ColumnName(explicitProp))
		assert.Equal(t, QuotedIdent("LEGACY_tbl_key"), ns.KeyColumnName(explicit))
	})
}
