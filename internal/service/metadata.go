package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"github.com/atlekbai/aggregate_sql/internal/query"
	"github.com/atlekbai/aggregate_sql/internal/server"
)

type MetadataService struct {
	catalog *query.Catalog
	logger  *zap.Logger
}

func NewMetadataService(catalog *query.Catalog, logger *zap.Logger) *MetadataService {
	return &MetadataService{catalog: catalog, logger: logger}
}

func (s *MetadataService) RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler) {
	opts := handlerOptions(interceptors)
	mux := http.NewServeMux()
	mux.Handle(MetadataServiceListAggregatesProcedure, connect.NewUnaryHandler(MetadataServiceListAggregatesProcedure, s.ListAggregates, opts...))
	mux.Handle(MetadataServiceListPathsProcedure, connect.NewUnaryHandler(MetadataServiceListPathsProcedure, s.ListPaths, opts...))
	return "/" + MetadataServiceName + "/", mux
}

// ── Aggregates ──────────────────────────────────────────────────────

func (s *MetadataService) ListAggregates(ctx context.Context, req *connect.Request[ListAggregatesRequest]) (*connect.Response[ListAggregatesResponse], error) {
	dialects := s.catalog.Dialects()
	roots := s.catalog.Aggregates()

	out := make([]AggregateInfo, 0, len(roots))
	for _, name := range roots {
		m, err := s.catalog.Model(name)
		if err != nil {
			return nil, connectError(err)
		}
		out = append(out, AggregateInfo{
			Name:     name,
			Table:    m.Root().TableName().Name,
			Paths:    len(m.Paths()),
			Dialects: dialects,
		})
	}

	return connect.NewResponse(&ListAggregatesResponse{Aggregates: out}), nil
}

// ── Paths ───────────────────────────────────────────────────────────

func (s *MetadataService) ListPaths(ctx context.Context, req *connect.Request[ListPathsRequest]) (*connect.Response[ListPathsResponse], error) {
	m, err := s.catalog.Model(req.Msg.Aggregate)
	if err != nil {
		return nil, connectError(err)
	}

	paths := m.Paths()
	out := make([]PathInfo, 0, len(paths))
	for _, p := range paths {
		out = append(out, PathInfo{
			Path:        p.String(),
			Kind:        p.Kind().String(),
			Entity:      p.Entity().Name,
			Anchor:      p.Anchor().String(),
			HasID:       p.HasID(),
			MultiValued: p.IsMultiValued(),
		})
	}

	s.logger.Debug("paths listed",
		zap.String("request_id", server.RequestID(ctx)),
		zap.String("aggregate", req.Msg.Aggregate),
		zap.Int("paths", len(out)),
	)
	return connect.NewResponse(&ListPathsResponse{Paths: out}), nil
}
