package service

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"github.com/atlekbai/aggregate_sql/internal/query"
	"github.com/atlekbai/aggregate_sql/internal/server"
)

type StatementService struct {
	catalog *query.Catalog
	logger  *zap.Logger
}

func NewStatementService(catalog *query.Catalog, logger *zap.Logger) *StatementService {
	return &StatementService{catalog: catalog, logger: logger}
}

func (s *StatementService) RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler) {
	opts := handlerOptions(interceptors)
	mux := http.NewServeMux()
	mux.Handle(StatementServiceRenderProcedure, connect.NewUnaryHandler(StatementServiceRenderProcedure, s.Render, opts...))
	mux.Handle(StatementServiceDescribeProcedure, connect.NewUnaryHandler(StatementServiceDescribeProcedure, s.Describe, opts...))
	return "/" + StatementServiceName + "/", mux
}

func (s *StatementService) Render(ctx context.Context, req *connect.Request[RenderRequest]) (*connect.Response[RenderResponse], error) {
	msg := req.Msg
	g, err := s.catalog.Generator(msg.Aggregate, msg.Dialect)
	if err != nil {
		return nil, connectError(err)
	}

	sql, err := render(g, msg)
	if err != nil {
		return nil, connectError(err)
	}

	s.logger.Debug("statement rendered",
		zap.String("request_id", server.RequestID(ctx)),
		zap.String("aggregate", msg.Aggregate),
		zap.String("dialect", msg.Dialect),
		zap.String("statement", msg.Statement),
		zap.String("sql", sql),
	)

	return connect.NewResponse(&RenderResponse{
		SQL:        sql,
		Parameters: query.ParameterNames(sql),
	}), nil
}

func render(g *query.Generator, msg *RenderRequest) (string, error) {
	switch msg.Statement {
	case StatementFindOne:
		return g.FindOne()
	case StatementFindAll:
		var page *query.Page
		if msg.Page != nil {
			page = &query.Page{Number: msg.Page.Number, Size: msg.Page.Size}
		}
		s, err := sortOf(msg.Sort)
		if err != nil {
			return "", err
		}
		return g.FindAll(s, page)
	case StatementFindAllInList:
		return g.FindAllInList()
	case StatementFindAllByProperty:
		parent, err := idents(msg.ParentIdentifier)
		if err != nil {
			return "", err
		}
		keyColumn, err := optionalIdent(msg.KeyColumn)
		if err != nil {
			return "", err
		}
		return g.FindAllByProperty(query.ParentIdentifier(parent), keyColumn, msg.Ordered)
	case StatementExists:
		return g.Exists()
	case StatementCount:
		return g.Count()
	case StatementInsert:
		excluded, err := idents(msg.ExcludedColumns)
		if err != nil {
			return "", err
		}
		return g.Insert(excluded)
	case StatementUpdate:
		return g.Update()
	case StatementUpdateWithVersion:
		return g.UpdateWithVersion()
	case StatementDeleteByID:
		return g.DeleteByID()
	case StatementDeleteByIDs:
		return g.DeleteByIDs()
	case StatementDeleteByPath:
		return g.DeleteByPath(msg.Path)
	case StatementDeleteAllByPath:
		return g.DeleteAllByPath(msg.Path)
	default:
		return "", fmt.Errorf("%w: unknown statement %q", query.ErrInvalidArgument, msg.Statement)
	}
}

func sortOf(orders []SortOrder) (query.Sort, error) {
	if len(orders) == 0 {
		return nil, nil
	}
	s := make(query.Sort, 0, len(orders))
	for _, o := range orders {
		dir, err := query.ParseDirection(o.Direction)
		if err != nil {
			return nil, err
		}
		s = append(s, query.Order{Property: o.Property, Direction: dir})
	}
	return s, nil
}

func (s *StatementService) Describe(ctx context.Context, req *connect.Request[DescribeRequest]) (*connect.Response[DescribeResponse], error) {
	msg := req.Msg
	g, err := s.catalog.Generator(msg.Aggregate, msg.Dialect)
	if err != nil {
		return nil, connectError(err)
	}

	p, err := g.Model().Resolve(msg.Path)
	if err != nil {
		return nil, connectError(err)
	}

	table, err := g.Table(msg.Path)
	if err != nil {
		return nil, connectError(err)
	}

	resp := &DescribeResponse{
		Path:        p.String(),
		Kind:        p.Kind().String(),
		Entity:      p.Entity().Name,
		Anchor:      p.Anchor().String(),
		HasID:       p.HasID(),
		MultiValued: p.IsMultiValued(),
		Table:       p.TableName().Name,
		From:        g.RenderTable(table),
	}
	if key, ok := p.KeyColumnName(); ok {
		resp.KeyColumn = key.Name
	}

	column, err := g.Column(msg.Path)
	if err != nil {
		return nil, connectError(err)
	}
	if column != nil {
		info := columnInfo(g, *column)
		resp.Column = &info
	}
	if p.IsRoot() {
		for _, c := range g.Columns() {
			resp.Columns = append(resp.Columns, columnInfo(g, c))
		}
	}

	join, err := g.Join(msg.Path)
	if err != nil {
		return nil, connectError(err)
	}
	if join != nil {
		resp.Join = &JoinInfo{
			SQL:         g.RenderJoin(*join),
			Table:       join.Table.Name.Name,
			Alias:       join.Table.Alias.Name,
			JoinColumn:  join.JoinColumn.Name.Name,
			ParentTable: join.ParentID.Table.Reference().Name,
			ParentID:    join.ParentID.Name.Name,
		}
	}

	s.logger.Debug("path described",
		zap.String("request_id", server.RequestID(ctx)),
		zap.String("aggregate", msg.Aggregate),
		zap.String("path", msg.Path),
	)
	return connect.NewResponse(resp), nil
}

func columnInfo(g *query.Generator, c query.Column) ColumnInfo {
	return ColumnInfo{
		SQL:   g.RenderColumn(c),
		Table: c.Table.Reference().Name,
		Name:  c.Name.Name,
		Alias: c.Alias.Name,
	}
}
