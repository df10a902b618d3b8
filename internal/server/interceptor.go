package server

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the id assigned to each RPC.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID returns the id assigned to the current RPC, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingInterceptor assigns every unary call a request id, echoes it in the
// response header, and logs the outcome.
func LoggingInterceptor(logger *zap.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			id := req.Header().Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			ctx = context.WithValue(ctx, requestIDKey{}, id)

			start := time.Now()
			resp, err := next(ctx, req)

			fields := []zap.Field{
				zap.String("request_id", id),
				zap.String("procedure", req.Spec().Procedure),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, zap.String("code", connect.CodeOf(err).String()), zap.Error(err))
				logger.Warn("rpc failed", fields...)
				return nil, withRequestID(err, id)
			}

			resp.Header().Set(RequestIDHeader, id)
			logger.Info("rpc", fields...)
			return resp, nil
		}
	}
}

func withRequestID(err error, id string) error {
	var ce *connect.Error
	if !errors.As(err, &ce) {
		ce = connect.NewError(connect.CodeUnknown, err)
	}
	ce.Meta().Set(RequestIDHeader, id)
	return ce
}
