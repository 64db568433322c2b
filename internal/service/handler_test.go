package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/castlemilk/pfinance/insights/internal/auth"
	"github.com/castlemilk/pfinance/insights/internal/store"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *test.Hook) {
	logger, hook := test.NewNullLogger()
	svc := NewInsightsService(store.NewMemoryStore(),
		WithClock(fixedClock(testAsOf)),
		WithLogger(logger),
	)

	router := mux.NewRouter()
	Register(router, svc, connect.WithInterceptors(auth.LocalDevInterceptor(), LoggingInterceptor(logger)))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, hook
}

func TestHandlerJSONRoundTrip(t *testing.T) {
	srv, hook := newTestServer(t)

	client := connect.NewClient[EstimateTaxesRequest, EstimateTaxesResponse](
		srv.Client(),
		srv.URL+EstimateTaxesProcedure,
		connect.WithCodec(JSONCodec{}),
	)
	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&EstimateTaxesRequest{GrossIncome: 50000}))
	require.NoError(t, err)

	assert.InDelta(t, 6053.0, resp.Msg.Estimate.EstimatedTax, 0.001)
	assert.NotEmpty(t, resp.Header().Get(RequestIDHeader))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request served", entry.Message)
	assert.Equal(t, EstimateTaxesProcedure, entry.Data["procedure"])
	assert.Equal(t, auth.LocalDevUserID, entry.Data["user_id"])
}

func TestHandlerWeeklyDigest(t *testing.T) {
	srv, _ := newTestServer(t)

	client := connect.NewClient[GetWeeklyDigestRequest, GetWeeklyDigestResponse](
		srv.Client(),
		srv.URL+GetWeeklyDigestProcedure,
		connect.WithCodec(JSONCodec{}),
	)
	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&GetWeeklyDigestRequest{}))
	require.NoError(t, err)
	assert.Equal(t, auth.LocalDevUserID, resp.Msg.Digest.UserID)
	assert.Equal(t, "2024-06-15", resp.Msg.Digest.PeriodEnd)
	assert.False(t, resp.Msg.Cached)
}

func TestHandlerInvalidArgument(t *testing.T) {
	srv, hook := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+DetectAnomaliesProcedure, strings.NewReader(`{"groupBy":"merchant"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-42")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "req-42", resp.Header.Get(RequestIDHeader))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "invalid_argument")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, "req-42", entry.Data["request_id"])
	assert.Equal(t, "invalid_argument", entry.Data["code"])
}

func TestLoggingInterceptorRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	interceptor := LoggingInterceptor(logger)

	var seen string
	failing := interceptor(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen, _ = RequestIDFromContext(ctx)
		return nil, errors.New("store offline")
	})

	req := connect.NewRequest(&EstimateTaxesRequest{})
	req.Header().Set(RequestIDHeader, "req-7")
	_, err := failing(context.Background(), req)
	require.Error(t, err)

	assert.Equal(t, "req-7", seen)
	var connectErr *connect.Error
	require.ErrorAs(t, err, &connectErr)
	assert.Equal(t, connect.CodeUnknown, connectErr.Code())
	assert.Equal(t, "req-7", connectErr.Meta().Get(RequestIDHeader))
	assert.Equal(t, "req-7", hook.LastEntry().Data["request_id"])

	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}
