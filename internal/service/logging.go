package service

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/pfinance/insights/internal/auth"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries a caller supplied request ID, echoed on the response.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the ID LoggingInterceptor assigned to the call.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// LoggingInterceptor logs every unary call with its procedure, user, outcome
// and duration. Install it after the auth interceptor so claims are present.
func LoggingInterceptor(logger *logrus.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			requestID := req.Header().Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx = context.WithValue(ctx, requestIDKey{}, requestID)

			start := time.Now()
			resp, err := next(ctx, req)

			entry := logger.WithFields(logrus.Fields{
				"procedure":   req.Spec().Procedure,
				"request_id":  requestID,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if claims, ok := auth.GetUserClaims(ctx); ok {
				entry = entry.WithField("user_id", claims.UID)
			}
			if err != nil {
				entry.WithError(err).WithField("code", connect.CodeOf(err).String()).Warn("request failed")
				var connectErr *connect.Error
				if !errors.As(err, &connectErr) {
					connectErr = connect.NewError(connect.CodeOf(err), err)
				}
				connectErr.Meta().Set(RequestIDHeader, requestID)
				return nil, connectErr
			}
			entry.Info("request served")
			resp.Header().Set(RequestIDHeader, requestID)
			return resp, nil
		}
	}
}
