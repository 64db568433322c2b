package auth

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"
)

// Headers set by the fronting gateway after it has authenticated the caller.
const (
	UserIDHeader    = "X-User-ID"
	UserEmailHeader = "X-User-Email"
)

// HeaderInterceptor trusts the identity headers forwarded by the gateway.
// Requests without a user ID are rejected unless the procedure is public.
func HeaderInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if isPublicEndpoint(req.Spec().Procedure) {
				return next(ctx, req)
			}

			claims, err := claimsFromHeaders(req.Header().Get(UserIDHeader), req.Header().Get(UserEmailHeader))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(withUserClaims(ctx, claims), req)
		}
	}
}

func claimsFromHeaders(userID, email string) (*UserClaims, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%s header is required", UserIDHeader)
	}
	if strings.ContainsAny(userID, "/ \t") {
		return nil, fmt.Errorf("%s header is malformed", UserIDHeader)
	}
	return &UserClaims{UID: userID, Email: strings.TrimSpace(email)}, nil
}

// isPublicEndpoint checks if an endpoint should be accessible without authentication
func isPublicEndpoint(procedure string) bool {
	publicEndpoints := []string{
		"/health",
		"/ping",
	}

	for _, endpoint := range publicEndpoints {
		if procedure == endpoint {
			return true
		}
	}

	return false
}
