package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// rpcHandler records incoming requests and serves canned results per method.
type rpcHandler struct {
	t        *testing.T
	requests []request
	results  map[string]string
	rpcError *Error
}

func (h *rpcHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	require.NoError(h.t, json.NewDecoder(r.Body).Decode(&req))
	h.requests = append(h.requests, req)

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if h.rpcError != nil {
		resp["error"] = h.rpcError
	} else {
		resp["result"] = json.RawMessage(h.results[req.Method])
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(h.t, json.NewEncoder(w).Encode(resp))
}

func newTestClient(t *testing.T, h *rpcHandler) *Client {
	t.Helper()
	h.t = t
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, nil)
}

func (h *rpcHandler) lastParams(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, h.requests)
	raw, err := json.Marshal(h.requests[len(h.requests)-1].Params)
	require.NoError(t, err)
	var params map[string]any
	require.NoError(t, json.Unmarshal(raw, &params))
	return params
}

func TestCall_RequestShape(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{results: map[string]string{"status": `{"ok":true}`}}
	c := newTestClient(t, h)

	result, err := c.Call(context.Background(), "status", map[string]any{"k": "v"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))

	require.Len(t, h.requests, 1)
	req := h.requests[0]
	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, "status", req.Method)
	assert.Equal(t, "nearlight-1", req.ID)

	_, err = c.Call(context.Background(), "status", nil)
	require.NoError(t, err)
	assert.Equal(t, "nearlight-2", h.requests[1].ID, "ids increment per call")
}

func TestCall_RPCErrorSurfaced(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{rpcError: &Error{Code: -32000, Message: "server error", Name: "HANDLER_ERROR"}}
	c := newTestClient(t, h)

	_, err := c.Call(context.Background(), "broadcast_tx_commit", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, nlerr.ErrRPC)
	assert.Contains(t, err.Error(), "server error")

	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr, "the node error stays reachable as the cause")
	assert.Equal(t, -32000, rpcErr.Code)

	var ce *nlerr.ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "broadcast_tx_commit", ce.Details["method"])
}

func TestCall_MalformedResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, nil)
	_, err := c.Call(context.Background(), "status", nil)
	assert.ErrorIs(t, err, nlerr.ErrRPC)
}

func TestCall_TransportFailure(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:1", nil)
	_, err := c.Call(context.Background(), "status", nil)
	assert.Error(t, err)
}

func TestWithBlockID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		blockID string
		wantKey string
		wantVal any
	}{
		{"final maps to finality", "final", "finality", "final"},
		{"optimistic maps to finality", "optimistic", "finality", "optimistic"},
		{"empty defaults to optimistic", "", "finality", "optimistic"},
		{"height becomes block_id", "191354103", "block_id", "191354103"},
		{"hash becomes block_id", "9PkmFkB6kBo", "block_id", "9PkmFkB6kBo"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			params := WithBlockID(map[string]any{}, tt.blockID)
			assert.Equal(t, tt.wantVal, params[tt.wantKey])
			assert.Len(t, params, 1)
		})
	}
}

func TestViewFunction(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{results: map[string]string{
		"query": `{"result": [53, 53], "logs": [], "block_height": 10}`,
	}}
	c := newTestClient(t, h)

	result, err := c.ViewFunction(context.Background(), "counter.near", "get_count", []byte(`{"a":1}`), "")
	require.NoError(t, err)
	assert.Equal(t, []byte("55"), result.Result)

	params := h.lastParams(t)
	assert.Equal(t, "call_function", params["request_type"])
	assert.Equal(t, "counter.near", params["account_id"])
	assert.Equal(t, "get_count", params["method_name"])
	assert.Equal(t, "optimistic", params["finality"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(`{"a":1}`)), params["args_base64"])
}

func TestViewAccessKey(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{results: map[string]string{
		"query": `{"nonce": 85, "permission": "FullAccess", "block_height": 20}`,
	}}
	c := newTestClient(t, h)

	view, err := c.ViewAccessKey(context.Background(), "alice.near", "ed25519:abc", "final")
	require.NoError(t, err)
	assert.Equal(t, uint64(85), view.Nonce)
	assert.Equal(t, `"FullAccess"`, string(view.Permission))

	params := h.lastParams(t)
	assert.Equal(t, "view_access_key", params["request_type"])
	assert.Equal(t, "final", params["finality"])
	assert.Equal(t, "ed25519:abc", params["public_key"])
}

func TestBlock(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{results: map[string]string{
		"block": `{"author":"a","header":{"height":5,"hash":"h","prev_hash":"p","timestamp_nanosec":"123"}}`,
	}}
	c := newTestClient(t, h)

	view, err := c.Block(context.Background(), FinalityFinal)
	require.NoError(t, err)
	assert.Equal(t, "p", view.Header.PrevHash)
	assert.Equal(t, "123", view.Header.TimestampNanosec)

	params := h.lastParams(t)
	assert.Equal(t, "final", params["finality"])
}

func TestSendTxAndStatus(t *testing.T) {
	t.Parallel()

	h := &rpcHandler{results: map[string]string{
		"send_tx": `{"final_execution_status":"INCLUDED"}`,
		"tx":      `{"status":{"SuccessValue":""}}`,
	}}
	c := newTestClient(t, h)

	_, err := c.SendTx(context.Background(), "BASE64", "")
	require.NoError(t, err)
	params := h.lastParams(t)
	assert.Equal(t, "BASE64", params["signed_tx_base64"])
	assert.Equal(t, WaitIncluded, params["wait_until"], "empty wait defaults to INCLUDED")

	_, err = c.TxStatus(context.Background(), "HASH", "alice.near", "")
	require.NoError(t, err)
	params = h.lastParams(t)
	assert.Equal(t, "HASH", params["tx_hash"])
	assert.Equal(t, "alice.near", params["sender_account_id"])
	assert.Equal(t, WaitExecutedOptimistic, params["wait_until"])
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "burst exhausted")

	assert.True(t, rl.Allow("b"), "endpoints have independent buckets")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, rl.Wait(ctx, "a"), "canceled context interrupts the wait")
}
