package auth

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct{}

// capture runs an interceptor and returns the claims the handler saw.
func capture(t *testing.T, interceptor connect.UnaryInterceptorFunc, headers map[string]string) (*UserClaims, error) {
	t.Helper()
	var seen *UserClaims
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen, _ = GetUserClaims(ctx)
		return connect.NewResponse(&ping{}), nil
	}
	req := connect.NewRequest(&ping{})
	for k, v := range headers {
		req.Header().Set(k, v)
	}
	_, err := interceptor(next)(context.Background(), req)
	return seen, err
}

func TestHeaderInterceptor(t *testing.T) {
	t.Run("sets claims from headers", func(t *testing.T) {
		claims, err := capture(t, HeaderInterceptor(), map[string]string{
			UserIDHeader:    " user-123 ",
			UserEmailHeader: "a@example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, claims)
		assert.Equal(t, "user-123", claims.UID)
		assert.Equal(t, "a@example.com", claims.Email)
	})

	t.Run("rejects missing user", func(t *testing.T) {
		claims, err := capture(t, HeaderInterceptor(), nil)
		assert.Nil(t, claims)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("rejects malformed user", func(t *testing.T) {
		_, err := capture(t, HeaderInterceptor(), map[string]string{UserIDHeader: "a/b"})
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})
}

func TestLocalDevInterceptor(t *testing.T) {
	claims, err := capture(t, LocalDevInterceptor(), nil)
	require.NoError(t, err)
	assert.Equal(t, LocalDevUserID, claims.UID)

	claims, err = capture(t, LocalDevInterceptor(), map[string]string{UserIDHeader: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UID)
	assert.Equal(t, "alice@debug.local", claims.Email)
}

func TestContextUserClaims(t *testing.T) {
	t.Run("WithUserClaims adds claims to context", func(t *testing.T) {
		claims := &UserClaims{UID: "test-uid", Email: "test@example.com", DisplayName: "Test User"}
		retrieved, ok := GetUserClaims(WithUserClaims(context.Background(), claims))
		require.True(t, ok)
		assert.Equal(t, claims, retrieved)
	})

	t.Run("GetUserClaims returns false for empty context", func(t *testing.T) {
		claims, ok := GetUserClaims(context.Background())
		assert.False(t, ok)
		assert.Nil(t, claims)
	})

	t.Run("GetUserClaims returns false for nil claims", func(t *testing.T) {
		_, ok := GetUserClaims(WithUserClaims(context.Background(), nil))
		assert.False(t, ok)
	})

	t.Run("GetUserID returns UID when claims exist", func(t *testing.T) {
		uid, ok := GetUserID(WithUserClaims(context.Background(), &UserClaims{UID: "user-123"}))
		assert.True(t, ok)
		assert.Equal(t, "user-123", uid)
	})

	t.Run("GetUserID returns empty for empty context", func(t *testing.T) {
		uid, ok := GetUserID(context.Background())
		assert.False(t, ok)
		assert.Empty(t, uid)
	})
}

func TestIsPublicEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		procedure string
		expected  bool
	}{
		{"health endpoint", "/health", true},
		{"ping endpoint", "/ping", true},
		{"insights endpoint", "/pfinance.insights.v1.InsightsService/ForecastSpending", false},
		{"empty endpoint", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isPublicEndpoint(tt.procedure))
		})
	}
}
