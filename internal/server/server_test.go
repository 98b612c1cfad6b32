package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, db Pinger) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	if db == nil {
		db = store
	}
	server := httptest.NewServer(NewHandler(ledger.New(store), db, prometheus.NewRegistry()))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthz(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		server := newTestServer(t, nil)
		status, body := get(t, server.URL+"/healthz")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok", body)
	})

	t.Run("database down", func(t *testing.T) {
		server := newTestServer(t, pingerFunc(func(context.Context) error { return errors.New("down") }))
		status, _ := get(t, server.URL+"/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, status)
	})
}

func TestConnectRoutesAndMetrics(t *testing.T) {
	server := newTestServer(t, nil)
	client := apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
	ctx := context.Background()

	created, err := client.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Trip",
		Members: []*api.MemberInput{{Name: "Alice", Email: "alice@example.com"}},
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, created.Header().Get("X-Request-Id"))

	_, err = client.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	expenses := apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL)
	list, err := expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{GroupID: created.Msg.Group.ID}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Expenses)

	status, body := get(t, server.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `splitledger_rpc_requests_total{code="ok",procedure="/ledger.v1.GroupService/CreateGroup"} 1`)
	assert.Contains(t, body, `splitledger_rpc_requests_total{code="not_found",procedure="/ledger.v1.GroupService/GetGroup"} 1`)
}

func TestErrorCodesThroughInterceptors(t *testing.T) {
	server := newTestServer(t, nil)
	groups := apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
	expenses := apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL)
	ctx := context.Background()

	created, err := groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name: "Trip",
		Members: []*api.MemberInput{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "Bob", Email: "bob@example.com"},
		},
	}))
	require.NoError(t, err)
	group := created.Msg.Group
	require.Len(t, group.Members, 2)

	tests := []struct {
		name string
		call func(req http.Header) error
		want connect.Code
	}{
		{
			name: "unknown group",
			call: func(h http.Header) error {
				req := connect.NewRequest(&api.GetGroupRequest{GroupID: "missing"})
				copyHeader(req.Header(), h)
				_, err := groups.GetGroup(ctx, req)
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "payer outside the group",
			call: func(h http.Header) error {
				req := connect.NewRequest(&api.RecordExpenseRequest{
					GroupID: group.ID, PayerID: "stranger", Amount: decimal.NewFromInt(10), Strategy: "equal",
				})
				copyHeader(req.Header(), h)
				_, err := expenses.RecordExpense(ctx, req)
				return err
			},
			want: connect.CodeFailedPrecondition,
		},
		{
			name: "percentages that miss 100",
			call: func(h http.Header) error {
				req := connect.NewRequest(&api.RecordExpenseRequest{
					GroupID: group.ID, PayerID: group.Members[0].ID, Amount: decimal.NewFromInt(10),
					Strategy: "percent", Percentages: []decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(10)},
				})
				copyHeader(req.Header(), h)
				_, err := expenses.RecordExpense(ctx, req)
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "empty group name",
			call: func(h http.Header) error {
				req := connect.NewRequest(&api.CreateGroupRequest{Name: "  "})
				copyHeader(req.Header(), h)
				_, err := groups.CreateGroup(ctx, req)
				return err
			},
			want: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set("X-Request-Id", "req-"+tt.want.String())

			err := tt.call(h)
			var connectErr *connect.Error
			require.ErrorAs(t, err, &connectErr)
			assert.Equal(t, tt.want, connectErr.Code())
			assert.Equal(t, "req-"+tt.want.String(), connectErr.Meta().Get("X-Request-Id"))
		})
	}
}

func TestStorageFailureIsUnavailable(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	server := httptest.NewServer(NewHandler(ledger.New(store), store, prometheus.NewRegistry()))
	t.Cleanup(server.Close)
	require.NoError(t, store.Close())

	client := apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
	_, err = client.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))

	status, _ := get(t, server.URL+"/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func copyHeader(dst, src http.Header) {
	for k, v := range src {
		dst[k] = v
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, server.URL+apiconnect.GroupServiceCreateGroupProcedure, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Connect-Protocol-Version")
}

func TestUnknownRoute(t *testing.T) {
	server := newTestServer(t, nil)
	status, _ := get(t, server.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, status)
}
