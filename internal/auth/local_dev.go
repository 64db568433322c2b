package auth

import (
	"context"

	"connectrpc.com/connect"
)

// LocalDevUserID is the user injected by LocalDevInterceptor.
const LocalDevUserID = "local-dev-user"

// LocalDevInterceptor provides a user context for local development. The
// X-User-ID header, when present, impersonates another user.
// ONLY use this in development - never in production!
func LocalDevInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if isPublicEndpoint(req.Spec().Procedure) {
				return next(ctx, req)
			}

			userClaims := &UserClaims{
				UID:         LocalDevUserID,
				Email:       "dev@localhost",
				DisplayName: "Local Dev User",
			}
			if impersonate, err := claimsFromHeaders(req.Header().Get(UserIDHeader), ""); err == nil {
				userClaims = impersonate
				userClaims.Email = impersonate.UID + "@debug.local"
			}
			return next(withUserClaims(ctx, userClaims), req)
		}
	}
}
