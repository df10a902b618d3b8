package service

import (
	"fmt"

	"github.com/atlekbai/aggregate_sql/internal/query"
	"github.com/atlekbai/aggregate_sql/internal/schema"
)

const (
	StatementServiceName = "aggsql.v1.StatementService"
	MetadataServiceName  = "aggsql.v1.MetadataService"

	StatementServiceRenderProcedure   = "/" + StatementServiceName + "/Render"
	StatementServiceDescribeProcedure = "/" + StatementServiceName + "/Describe"

	MetadataServiceListAggregatesProcedure = "/" + MetadataServiceName + "/ListAggregates"
	MetadataServiceListPathsProcedure      = "/" + MetadataServiceName + "/ListPaths"
)

// Statement kinds accepted by Render.
const (
	StatementFindOne           = "find_one"
	StatementFindAll           = "find_all"
	StatementFindAllInList     = "find_all_in_list"
	StatementFindAllByProperty = "find_all_by_property"
	StatementExists            = "exists"
	StatementCount             = "count"
	StatementInsert            = "insert"
	StatementUpdate            = "update"
	StatementUpdateWithVersion = "update_with_version"
	StatementDeleteByID        = "delete_by_id"
	StatementDeleteByIDs       = "delete_by_ids"
	StatementDeleteByPath      = "delete_by_path"
	StatementDeleteAllByPath   = "delete_all_by_path"
)

// Identifier is a column name with its rendering style: "derived" (the
// default) follows the dialect's letter casing, "quoted" keeps the case and
// "unquoted" is emitted verbatim.
type Identifier struct {
	Name  string `json:"name"`
	Style string `json:"style,omitempty"`
}

func (i Identifier) ident() (schema.Ident, error) {
	if i.Name == "" {
		return schema.Ident{}, fmt.Errorf("%w: identifier without name", query.ErrInvalidArgument)
	}
	switch i.Style {
	case "", "derived":
		return schema.DerivedIdent(i.Name), nil
	case "quoted":
		return schema.QuotedIdent(i.Name), nil
	case "unquoted":
		return schema.UnquotedIdent(i.Name), nil
	default:
		return schema.Ident{}, fmt.Errorf("%w: unknown identifier style %q", query.ErrInvalidArgument, i.Style)
	}
}

// optionalIdent maps an absent identifier to the zero Ident.
func optionalIdent(i *Identifier) (schema.Ident, error) {
	if i == nil || i.Name == "" {
		return schema.Ident{}, nil
	}
	return i.ident()
}

func idents(list []Identifier) ([]schema.Ident, error) {
	out := make([]schema.Ident, 0, len(list))
	for _, i := range list {
		id, err := i.ident()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

type SortOrder struct {
	Property  string `json:"property"`
	Direction string `json:"direction,omitempty"`
}

type PageRequest struct {
	Number uint64 `json:"number"`
	Size   uint64 `json:"size"`
}

type RenderRequest struct {
	Aggregate        string       `json:"aggregate"`
	Dialect          string       `json:"dialect"`
	Statement        string       `json:"statement"`
	Path             string       `json:"path,omitempty"`
	Sort             []SortOrder  `json:"sort,omitempty"`
	Page             *PageRequest `json:"page,omitempty"`
	ParentIdentifier []Identifier `json:"parent_identifier,omitempty"`
	KeyColumn        *Identifier  `json:"key_column,omitempty"`
	Ordered          bool         `json:"ordered,omitempty"`
	ExcludedColumns  []Identifier `json:"excluded_columns,omitempty"`
}

type RenderResponse struct {
	SQL        string   `json:"sql"`
	Parameters []string `json:"parameters"`
}

type DescribeRequest struct {
	Aggregate string `json:"aggregate"`
	Dialect   string `json:"dialect"`
	Path      string `json:"path"`
}

type ColumnInfo struct {
	SQL   string `json:"sql"`
	Table string `json:"table"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

type JoinInfo struct {
	SQL         string `json:"sql"`
	Table       string `json:"table"`
	Alias       string `json:"alias,omitempty"`
	JoinColumn  string `json:"join_column"`
	ParentTable string `json:"parent_table"`
	ParentID    string `json:"parent_id"`
}

type DescribeResponse struct {
	Path        string      `json:"path"`
	Kind        string      `json:"kind"`
	Entity      string      `json:"entity"`
	Anchor      string      `json:"anchor"`
	HasID       bool        `json:"has_id"`
	MultiValued bool        `json:"multi_valued"`
	Table       string      `json:"table"`
	From        string      `json:"from"`
	KeyColumn   string      `json:"key_column,omitempty"`
	Column      *ColumnInfo `json:"column,omitempty"`
	Join        *JoinInfo   `json:"join,omitempty"`
	// Columns is the full select list; only set for the root path.
	Columns []ColumnInfo `json:"columns,omitempty"`
}

type ListAggregatesRequest struct{}

type AggregateInfo struct {
	Name     string   `json:"name"`
	Table    string   `json:"table"`
	Paths    int      `json:"paths"`
	Dialects []string `json:"dialects"`
}

type ListAggregatesResponse struct {
	Aggregates []AggregateInfo `json:"aggregates"`
}

type ListPathsRequest struct {
	Aggregate string `json:"aggregate"`
}

type PathInfo struct {
	Path        string `json:"path"`
	Kind        string `json:"kind"`
	Entity      string `json:"entity"`
	Anchor      string `json:"anchor"`
	HasID       bool   `json:"has_id"`
	MultiValued bool   `json:"multi_valued"`
}

type ListPathsResponse struct {
	Paths []PathInfo `json:"paths"`
}
