package client

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mrz1836/nearlight/internal/metrics"
	"github.com/mrz1836/nearlight/internal/rpc"
	"github.com/mrz1836/nearlight/internal/session"
)

// trackTimeout bounds a single tracking run. Broadcast plus execution
// polling on a healthy network finishes in seconds; after a minute the node
// is treated as unreachable and the record resolves to a terminal error
// status like any other failed poll.
const trackTimeout = 60 * time.Second

// broadcastAndTrack submits a signed transaction and follows it to a
// terminal status. It runs on its own goroutine; every status change is
// persisted to history and published on the event bus.
//
// Pending -> Included -> Executed on the happy path. A broadcast rejection
// lands on Error; a post-inclusion failure lands on ErrorAfterIncluded.
func (c *Client) broadcastAndTrack(txID, waitUntil string) {
	ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()

	rec, ok := c.session.Tx(txID)
	if !ok {
		c.logger.Error("tracker: transaction %s missing from history", txID)
		return
	}

	if waitUntil == "" {
		waitUntil = rpc.WaitIncluded
	}

	result, err := c.rpc.SendTx(ctx, rec.SignedBase64, waitUntil)
	if err != nil {
		c.finishTx(txID, session.StatusError, nil, errorJSON(err))
		return
	}

	updated, _ := c.session.UpdateTx(txID, func(r *session.TxRecord) {
		r.Status = session.StatusIncluded
		r.Result = result
	})
	c.publishTx(updated)
	c.logger.Debug("tracker: %s included as %s", txID, rec.TxHash)

	c.pollUntilExecuted(ctx, txID)
}

// pollExecution follows an already broadcast transaction (one whose hash
// came back from a wallet or a redirect return) to a terminal status.
func (c *Client) pollExecution(txID string) {
	ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()
	c.pollUntilExecuted(ctx, txID)
}

func (c *Client) pollUntilExecuted(ctx context.Context, txID string) {
	rec, ok := c.session.Tx(txID)
	if !ok || rec.TxHash == "" {
		c.logger.Error("tracker: %s has no hash to poll", txID)
		return
	}

	result, err := c.rpc.TxStatus(ctx, rec.TxHash, rec.Tx.SignerID, rpc.WaitExecutedOptimistic)
	if err != nil {
		status := session.StatusErrorAfterIncluded
		if rec.Status == session.StatusPendingGotTxHash {
			// Never made it past broadcast from our point of view.
			status = session.StatusError
		}
		c.finishTx(txID, status, nil, errorJSON(err))
		return
	}

	if failure := executionFailure(result); failure != nil {
		c.finishTx(txID, session.StatusErrorAfterIncluded, result, failure)
		return
	}
	c.finishTx(txID, session.StatusExecuted, result, nil)
}

// finishTx records a terminal status and publishes it.
func (c *Client) finishTx(txID string, status session.Status, result, errValue json.RawMessage) {
	updated, ok := c.session.UpdateTx(txID, func(r *session.TxRecord) {
		r.Status = status
		if result != nil {
			r.Result = result
		}
		if errValue != nil {
			r.ErrorValue = errValue
		}
	})
	if !ok {
		return
	}
	c.publishTx(updated)
	metrics.Global.RecordTxTerminal()
	if status == session.StatusExecuted {
		c.logger.Debug("tracker: %s executed", txID)
	} else {
		c.logger.Error("tracker: %s failed with status %s", txID, status)
	}
}

// errorJSON preserves an error for the history record. A node-reported RPC
// error keeps its structured code/message/data payload; errors whose message
// is already JSON keep it verbatim; everything else is stored as a JSON
// string.
func errorJSON(err error) json.RawMessage {
	if err == nil {
		return nil
	}
	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) {
		if encoded, mErr := json.Marshal(rpcErr); mErr == nil {
			return encoded
		}
	}
	msg := err.Error()
	if json.Valid([]byte(msg)) {
		return json.RawMessage(msg)
	}
	encoded, mErr := json.Marshal(msg)
	if mErr != nil {
		return json.RawMessage(`"unrepresentable error"`)
	}
	return encoded
}

// executionFailure inspects a tx status result for a failed outcome and
// returns the failure value, or nil when the transaction succeeded.
func executionFailure(result json.RawMessage) json.RawMessage {
	var envelope struct {
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(result, &envelope); err != nil || envelope.Status == nil {
		return nil
	}
	var outcome struct {
		Failure json.RawMessage `json:"Failure"`
	}
	if err := json.Unmarshal(envelope.Status, &outcome); err != nil {
		return nil
	}
	return outcome.Failure
}
