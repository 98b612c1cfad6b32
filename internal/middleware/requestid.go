package middleware

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RequestIDKey is the context key for the request ID.
const RequestIDKey contextKey = "request_id"

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// RequestIDInterceptor tags every RPC with an ID, taken from the
// X-Request-Id header when the caller sent one, and echoes it back.
func RequestIDInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				return next(ctx, req)
			}

			id := req.Header().Get(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}
			ctx = context.WithValue(ctx, RequestIDKey, id)

			resp, err := next(ctx, req)
			if err == nil {
				resp.Header().Set(RequestIDHeader, id)
				return resp, nil
			}

			// resp holds a typed nil on failure, so the ID travels in the
			// error metadata instead.
			var connectErr *connect.Error
			if !errors.As(err, &connectErr) {
				connectErr = connect.NewError(connect.CodeUnknown, err)
				err = connectErr
			}
			connectErr.Meta().Set(RequestIDHeader, id)
			return resp, err
		}
	}
}
