package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// stubGroups answers GetGroup with a fixed group or NotFound and echoes the
// request ID it saw.
type stubGroups struct {
	apiconnect.GroupServiceHandler

	mu            sync.Mutex
	seenRequestID string
}

func (s *stubGroups) lastRequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seenRequestID
}

func (s *stubGroups) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	s.mu.Lock()
	s.seenRequestID = GetRequestID(ctx)
	s.mu.Unlock()
	if req.Msg.GroupID == "boom" {
		return nil, errors.New("store exploded")
	}
	if req.Msg.GroupID != "g1" {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("group not found"))
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: &api.Group{ID: "g1", Name: "Trip"}}), nil
}

func newTestServer(t *testing.T, svc apiconnect.GroupServiceHandler, interceptors ...connect.Interceptor) apiconnect.GroupServiceClient {
	t.Helper()
	path, handler := apiconnect.NewGroupServiceHandler(svc, connect.WithInterceptors(interceptors...))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	client := newTestServer(t, &stubGroups{}, metrics.Interceptor())
	ctx := context.Background()

	_, err := client.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "g1"}))
	require.NoError(t, err)
	_, err = client.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "missing"}))
	require.Error(t, err)
	_, err = client.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "missing"}))
	require.Error(t, err)

	procedure := apiconnect.GroupServiceGetGroupProcedure
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(procedure, "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues(procedure, "not_found")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))
}

func TestRequestIDInterceptor(t *testing.T) {
	stub := &stubGroups{}
	client := newTestServer(t, stub, RequestIDInterceptor(), LoggingInterceptor())
	ctx := context.Background()

	t.Run("caller supplied ID is propagated", func(t *testing.T) {
		req := connect.NewRequest(&api.GetGroupRequest{GroupID: "g1"})
		req.Header().Set(RequestIDHeader, "req-123")

		resp, err := client.GetGroup(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "req-123", stub.lastRequestID())
		assert.Equal(t, "req-123", resp.Header().Get(RequestIDHeader))
	})

	t.Run("missing ID is generated", func(t *testing.T) {
		resp, err := client.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "g1"}))
		require.NoError(t, err)
		assert.NotEmpty(t, stub.lastRequestID())
		assert.Equal(t, stub.lastRequestID(), resp.Header().Get(RequestIDHeader))
	})

	t.Run("errors carry the ID", func(t *testing.T) {
		req := connect.NewRequest(&api.GetGroupRequest{GroupID: "missing"})
		req.Header().Set(RequestIDHeader, "req-err")

		_, err := client.GetGroup(ctx, req)
		var connectErr *connect.Error
		require.ErrorAs(t, err, &connectErr)
		assert.Equal(t, connect.CodeNotFound, connectErr.Code())
		assert.Equal(t, "req-err", connectErr.Meta().Get(RequestIDHeader))
	})

	t.Run("plain errors are tagged too", func(t *testing.T) {
		req := connect.NewRequest(&api.GetGroupRequest{GroupID: "boom"})
		req.Header().Set(RequestIDHeader, "req-plain")

		_, err := client.GetGroup(ctx, req)
		var connectErr *connect.Error
		require.ErrorAs(t, err, &connectErr)
		assert.Equal(t, connect.CodeUnknown, connectErr.Code())
		assert.Equal(t, "req-plain", connectErr.Meta().Get(RequestIDHeader))
	})
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, isClientError(connect.CodeInvalidArgument))
	assert.True(t, isClientError(connect.CodeNotFound))
	assert.False(t, isClientError(connect.CodeUnavailable))
	assert.False(t, isClientError(connect.CodeInternal))
}
