package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// CallFunctionResult is the result of a call_function query. Result holds
// the raw return bytes of the contract method.
type CallFunctionResult struct {
	Result      []byte   `json:"result"`
	Logs        []string `json:"logs"`
	BlockHeight uint64   `json:"block_height"`
	BlockHash   string   `json:"block_hash"`
}

// AccountView is the result of a view_account query.
type AccountView struct {
	Amount        string `json:"amount"`
	Locked        string `json:"locked"`
	CodeHash      string `json:"code_hash"`
	StorageUsage  uint64 `json:"storage_usage"`
	StoragePaidAt uint64 `json:"storage_paid_at"`
	BlockHeight   uint64 `json:"block_height"`
	BlockHash     string `json:"block_hash"`
}

// AccessKeyView is the result of a view_access_key query. Permission is kept
// raw: it is either the string "FullAccess" or a FunctionCall object.
type AccessKeyView struct {
	Nonce       uint64          `json:"nonce"`
	Permission  json.RawMessage `json:"permission"`
	BlockHeight uint64          `json:"block_height"`
	BlockHash   string          `json:"block_hash"`
}

// BlockHeader is the subset of a block header the client consumes.
type BlockHeader struct {
	Height           uint64 `json:"height"`
	Hash             string `json:"hash"`
	PrevHash         string `json:"prev_hash"`
	Timestamp        uint64 `json:"timestamp"`
	TimestampNanosec string `json:"timestamp_nanosec"`
}

// BlockView is the result of a block request.
type BlockView struct {
	Author string      `json:"author"`
	Header BlockHeader `json:"header"`
}

// ViewFunction calls a contract view method. args is JSON-encoded call
// arguments; nil means no arguments.
func (c *Client) ViewFunction(ctx context.Context, contract, method string, args []byte, blockID string) (*CallFunctionResult, error) {
	params := WithBlockID(map[string]any{
		"request_type": "call_function",
		"account_id":   contract,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(args),
	}, blockID)

	raw, err := c.Call(ctx, "query", params)
	if err != nil {
		return nil, err
	}

	var result CallFunctionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parsing call result: %w", err)
	}
	return &result, nil
}

// ViewAccount fetches basic account state.
func (c *Client) ViewAccount(ctx context.Context, accountID, blockID string) (*AccountView, error) {
	params := WithBlockID(map[string]any{
		"request_type": "view_account",
		"account_id":   accountID,
	}, blockID)

	raw, err := c.Call(ctx, "query", params)
	if err != nil {
		return nil, err
	}

	var result AccountView
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parsing account view: %w", err)
	}
	return &result, nil
}

// ViewAccessKey fetches the access key record for (accountID, publicKey),
// including its current nonce.
func (c *Client) ViewAccessKey(ctx context.Context, accountID, publicKey, blockID string) (*AccessKeyView, error) {
	params := WithBlockID(map[string]any{
		"request_type": "view_access_key",
		"account_id":   accountID,
		"public_key":   publicKey,
	}, blockID)

	raw, err := c.Call(ctx, "query", params)
	if err != nil {
		return nil, err
	}

	var result AccessKeyView
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parsing access key view: %w", err)
	}
	return &result, nil
}

// Block fetches a block header by finality or explicit block id.
func (c *Client) Block(ctx context.Context, blockID string) (*BlockView, error) {
	raw, err := c.Call(ctx, "block", WithBlockID(map[string]any{}, blockID))
	if err != nil {
		return nil, err
	}

	var result BlockView
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parsing block: %w", err)
	}
	return &result, nil
}

// TxStatus polls a transaction's execution status. waitUntil selects how far
// execution must have progressed before the node responds.
func (c *Client) TxStatus(ctx context.Context, txHash, senderID, waitUntil string) (json.RawMessage, error) {
	if waitUntil == "" {
		waitUntil = WaitExecutedOptimistic
	}
	return c.Call(ctx, "tx", map[string]any{
		"tx_hash":           txHash,
		"sender_account_id": senderID,
		"wait_until":        waitUntil,
	})
}

// SendTx broadcasts a base64-encoded signed transaction.
func (c *Client) SendTx(ctx context.Context, signedTxBase64, waitUntil string) (json.RawMessage, error) {
	if waitUntil == "" {
		waitUntil = WaitIncluded
	}
	return c.Call(ctx, "send_tx", map[string]any{
		"signed_tx_base64": signedTxBase64,
		"wait_until":       waitUntil,
	})
}
