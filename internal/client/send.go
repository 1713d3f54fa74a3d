package client

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"
	"sync"

	"github.com/btcsuite/btcutil/base58"

	"github.com/mrz1836/nearlight/internal/action"
	"github.com/mrz1836/nearlight/internal/metrics"
	"github.com/mrz1836/nearlight/internal/rpc"
	"github.com/mrz1836/nearlight/internal/session"
	"github.com/mrz1836/nearlight/internal/wire"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// SendRequest describes one transaction send.
type SendRequest struct {
	ReceiverID string
	Actions    []action.Action

	// WaitUntil selects the broadcast wait condition; empty means the
	// transaction is acknowledged once included.
	WaitUntil string
}

// SendTx builds, signs, and submits a transaction, or delegates it to the
// external wallet when the held key cannot sign it. It returns a locally
// generated transaction id as soon as the signed payload is recorded; the
// outcome arrives later through the event bus and the history map.
//
// Two SendTx calls racing before either has primed the nonce cache can
// collide on a nonce; serializing truly simultaneous first sends is the
// caller's responsibility.
func (c *Client) SendTx(ctx context.Context, req SendRequest) (string, error) {
	st := c.session.State()
	if !st.SignedIn() {
		return "", nlerr.ErrNotSignedIn
	}
	if req.ReceiverID == "" || len(req.Actions) == 0 {
		return "", nlerr.WithDetails(nlerr.ErrInvalidInput, map[string]string{
			"reason": "receiver and at least one action are required",
		})
	}

	// A key delegated through sign-in is scoped to the sign-in contract;
	// any other receiver goes through the wallet. A directly imported key
	// with no scoped contract is full access and signs everything locally.
	scoped := st.AccessKeyContractID != ""
	if scoped && req.ReceiverID != st.AccessKeyContractID {
		return c.delegateTx(ctx, st, req)
	}
	if st.PrivateKey == "" {
		return c.delegateTx(ctx, st, req)
	}
	if scoped && !qualifiesForScopedKey(req.Actions) {
		return "", nlerr.WithDetails(nlerr.ErrScopeViolation, map[string]string{
			"receiver": req.ReceiverID,
		})
	}

	return c.signAndSubmit(ctx, st, req)
}

// qualifiesForScopedKey reports whether a scoped (function-call) key may
// sign the action set: a single FunctionCall with zero deposit. This is a
// local pre-check only; the chain separately enforces the key's method list
// and allowance.
func qualifiesForScopedKey(actions []action.Action) bool {
	if len(actions) != 1 {
		return false
	}
	fc, ok := actions[0].(action.FunctionCall)
	if !ok {
		return false
	}
	return fc.Deposit == "0" || fc.Deposit == ""
}

// signAndSubmit runs the local-signing procedure and hands the signed
// payload to the background tracker.
func (c *Client) signAndSubmit(ctx context.Context, st session.State, req SendRequest) (string, error) {
	if err := c.fillCaches(ctx, st); err != nil {
		return "", err
	}

	// Advance the nonce before broadcast so a concurrent send observes the
	// incremented value.
	nonce, ok := c.session.AdvanceNonce()
	if !ok {
		return "", nlerr.Wrap(nlerr.ErrRPC, "nonce cache empty after fetch")
	}
	block, _ := c.session.Block()

	keyPair, err := c.session.KeyPair()
	if err != nil {
		return "", err
	}

	tx, err := wire.NewTransaction(st.AccountID, st.PublicKey, nonce, req.ReceiverID, block.PrevHash, req.Actions)
	if err != nil {
		return "", err
	}

	hash, err := tx.Hash()
	if err != nil {
		return "", err
	}
	sig := keyPair.Sign(hash)

	signed, err := tx.Signed(sig)
	if err != nil {
		return "", err
	}

	rec := session.TxRecord{
		TxID: newTxID(),
		Tx: session.TxBody{
			SignerID:   st.AccountID,
			ReceiverID: req.ReceiverID,
			PublicKey:  st.PublicKey,
			Nonce:      nonce,
			BlockHash:  block.PrevHash,
			Actions:    req.Actions,
		},
		Signature:    "ed25519:" + base58.Encode(sig),
		SignedBase64: base64.StdEncoding.EncodeToString(signed),
		TxHash:       base58.Encode(hash),
		Status:       session.StatusPending,
	}

	c.session.PutTx(rec)
	rec, _ = c.session.Tx(rec.TxID)
	c.publishTx(rec)
	metrics.Global.RecordTxSent()

	c.trackers.Add(1)
	go func() {
		defer c.trackers.Done()
		c.broadcastAndTrack(rec.TxID, req.WaitUntil)
	}()

	return rec.TxID, nil
}

// fillCaches ensures the nonce and block caches are populated and fresh.
// When both fetches are needed they run concurrently, and the builder waits
// for all of them; it never proceeds on partial state.
func (c *Client) fillCaches(ctx context.Context, st session.State) error {
	_, haveNonce := c.session.Nonce()
	_, haveBlock := c.session.Block()

	var wg sync.WaitGroup
	var nonceErr, blockErr error

	if !haveNonce {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := c.rpc.ViewAccessKey(ctx, st.AccountID, st.PublicKey, "")
			if err != nil {
				nonceErr = err
				return
			}
			c.session.SetNonce(view.Nonce)
		}()
	}

	if !haveBlock {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := c.rpc.Block(ctx, rpc.FinalityFinal)
			if err != nil {
				blockErr = err
				return
			}
			c.session.SetBlock(session.BlockRef{
				PrevHash:         view.Header.PrevHash,
				TimestampNanosec: view.Header.TimestampNanosec,
			})
		}()
	}

	wg.Wait()

	if nonceErr != nil {
		return nlerr.Wrap(nonceErr, "fetching access key")
	}
	if blockErr != nil {
		return nlerr.Wrap(blockErr, "fetching block")
	}
	return nil
}

// delegateTx records a pending history entry and asks the wallet bridge to
// sign and submit the transaction. The callback URL embeds the local
// transaction id so the redirect return reconciles against it.
func (c *Client) delegateTx(ctx context.Context, st session.State, req SendRequest) (string, error) {
	if c.bridge == nil {
		return "", nlerr.WithDetails(nlerr.ErrWallet, map[string]string{
			"reason": "receiver requires wallet signing but no bridge is configured",
		})
	}

	rec := session.TxRecord{
		TxID: newTxID(),
		Tx: session.TxBody{
			SignerID:   st.AccountID,
			ReceiverID: req.ReceiverID,
			Actions:    req.Actions,
		},
		Status:            session.StatusPending,
		SubmittedByWallet: true,
	}
	c.session.PutTx(rec)
	rec, _ = c.session.Tx(rec.TxID)
	c.publishTx(rec)
	metrics.Global.RecordTxDelegated()

	result, err := c.bridge.SendTransactions(ctx, SendTransactionsRequest{
		Transactions: []session.TxBody{rec.Tx},
		CallbackURL:  c.callbackURLFor([]string{rec.TxID}),
	})
	if err != nil {
		updated, _ := c.session.UpdateTx(rec.TxID, func(r *session.TxRecord) {
			r.Status = session.StatusError
			r.ErrorValue = errorJSON(err)
		})
		c.publishTx(updated)
		metrics.Global.RecordTxTerminal()
		return rec.TxID, nil
	}

	switch {
	case result.URL != "":
		c.navigate(result.URL)
	case len(result.Hashes) > 0:
		// Wallet resolved synchronously; poll execution directly.
		updated, _ := c.session.UpdateTx(rec.TxID, func(r *session.TxRecord) {
			r.Status = session.StatusPendingGotTxHash
			r.TxHash = result.Hashes[0]
		})
		c.publishTx(updated)
		c.trackers.Add(1)
		go func() {
			defer c.trackers.Done()
			c.pollExecution(rec.TxID)
		}()
	}

	return rec.TxID, nil
}

// callbackURLFor appends the txIds query parameter to the configured
// callback URL.
func (c *Client) callbackURLFor(txIDs []string) string {
	base := c.callbackURL
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("txIds", strings.Join(txIDs, ","))
	u.RawQuery = q.Encode()
	return u.String()
}
