package client

import (
	"context"
	"encoding/json"

	"github.com/mrz1836/nearlight/internal/rpc"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// View calls a read-only contract method and decodes the returned bytes as
// JSON into out. Pass a *json.RawMessage to keep the raw result.
func (c *Client) View(ctx context.Context, contract, method string, args any, blockID string, out any) error {
	var encoded []byte
	if args != nil {
		var err error
		encoded, err = json.Marshal(args)
		if err != nil {
			return nlerr.Wrap(err, "encoding view args")
		}
	}

	result, err := c.rpc.ViewFunction(ctx, contract, method, encoded, blockID)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result.Result, out); err != nil {
		return nlerr.Wrap(err, "decoding view result")
	}
	return nil
}

// Account returns the on-chain view of an account.
func (c *Client) Account(ctx context.Context, accountID, blockID string) (*rpc.AccountView, error) {
	return c.rpc.ViewAccount(ctx, accountID, blockID)
}

// AccessKey returns the on-chain view of one access key.
func (c *Client) AccessKey(ctx context.Context, accountID, publicKey, blockID string) (*rpc.AccessKeyView, error) {
	return c.rpc.ViewAccessKey(ctx, accountID, publicKey, blockID)
}

// Block returns a block header by id, hash, or finality.
func (c *Client) Block(ctx context.Context, blockID string) (*rpc.BlockView, error) {
	return c.rpc.Block(ctx, blockID)
}

// TxStatus fetches the chain-side status of a transaction by hash.
func (c *Client) TxStatus(ctx context.Context, txHash, senderID string) (json.RawMessage, error) {
	return c.rpc.TxStatus(ctx, txHash, senderID, rpc.WaitExecutedOptimistic)
}

// Balance returns an account's liquid balance in yoctoNEAR.
func (c *Client) Balance(ctx context.Context, accountID string) (string, error) {
	view, err := c.rpc.ViewAccount(ctx, accountID, "")
	if err != nil {
		return "", err
	}
	return view.Amount, nil
}
