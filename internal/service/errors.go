package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/atlekbai/aggregate_sql/internal/aggregate"
	"github.com/atlekbai/aggregate_sql/internal/dialect"
	"github.com/atlekbai/aggregate_sql/internal/query"
)

// connectError maps generation errors onto RPC codes.
func connectError(err error) *connect.Error {
	switch {
	case errors.Is(err, query.ErrUnknownAggregate):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, aggregate.ErrInvalidPath),
		errors.Is(err, query.ErrInvalidArgument),
		errors.Is(err, dialect.ErrUnknownDialect):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, query.ErrUnsupported):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
