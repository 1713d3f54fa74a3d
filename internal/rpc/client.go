// Package rpc provides the JSON-RPC 2.0 gateway to a NEAR node. It turns a
// method name and parameter object into a decoded result, surfacing transport
// and protocol failures uniformly as RPC_ERROR values.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mrz1836/nearlight/internal/metrics"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// Finality markers for block selection.
const (
	FinalityFinal      = "final"
	FinalityOptimistic = "optimistic"
)

// Wait conditions for send_tx and tx status polling.
const (
	WaitIncluded           = "INCLUDED"
	WaitExecutedOptimistic = "EXECUTED_OPTIMISTIC"
	WaitFinal              = "FINAL"
)

// Client is a JSON-RPC 2.0 client for a single node URL.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *RateLimiter
	idCounter  atomic.Uint64
}

// NewClient creates a client for the given node URL. A nil limiter disables
// rate limiting.
func NewClient(url string, limiter *RateLimiter) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
	}
}

// URL returns the configured node URL.
func (c *Client) URL() string {
	return c.url
}

// request represents a JSON-RPC 2.0 request. Params is an object for NEAR
// query-style methods and an array for legacy positional methods.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// response represents a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a gateway-reported RPC error. Data carries the node's structured
// error payload when one was present.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Name    string          `json:"name,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Call performs a JSON-RPC call and returns the raw result.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.url); err != nil {
			return nil, nlerr.Wrap(err, "rate limiter")
		}
	}

	start := time.Now()
	result, err := c.call(ctx, method, params)
	metrics.Global.RecordRPCCall(method, time.Since(start), err)
	return result, err
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}

	req := request{
		JSONRPC: "2.0",
		ID:      fmt.Sprintf("nearlight-%d", c.idCounter.Add(1)),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nlerr.Wrap(err, "sending HTTP request")
	}
	// Body.Close error is intentionally ignored as it only fails if the
	// connection is already broken, and there's no recovery action.
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, nlerr.Wrap(err, "reading response body")
	}

	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, nlerr.WithDetails(nlerr.ErrRPC, map[string]string{
			"reason": "malformed response",
			"method": method,
		})
	}

	if resp.Error != nil {
		return nil, &nlerr.ClientError{
			Code:     nlerr.ErrRPC.Code,
			Message:  resp.Error.Message,
			Cause:    resp.Error,
			ExitCode: nlerr.ExitNetwork,
			Details:  map[string]string{"method": method},
		}
	}

	return resp.Result, nil
}

// WithBlockID applies the finality selection rule to a parameter object:
// "final" and "optimistic" map to a finality field, any other non-empty
// value becomes an explicit block_id, and absence defaults to optimistic.
func WithBlockID(params map[string]any, blockID string) map[string]any {
	switch blockID {
	case FinalityFinal, FinalityOptimistic:
		params["finality"] = blockID
	case "":
		params["finality"] = FinalityOptimistic
	default:
		params["block_id"] = blockID
	}
	return params
}
