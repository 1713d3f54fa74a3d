package client

import (
	"net/url"
	"strings"

	"github.com/mrz1836/nearlight/internal/session"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// redirectParams are the query parameters the wallet appends to the
// callback URL. They are consumed and stripped; everything else in the URL
// is preserved.
var redirectParams = []string{
	"account_id",
	"public_key",
	"error_code",
	"errorCode",
	"errorMessage",
	"transactionHashes",
	"txIds",
}

// HandleRedirect reconciles a wallet return URL against local state and
// returns the URL with the consumed parameters removed. It is called once
// at startup with the current location.
//
// The reconciler is conservative: parameters that do not match local state
// are logged and ignored rather than applied, so a stale or forged return
// cannot move the session to a state the wallet never authorized.
func (c *Client) HandleRedirect(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, nlerr.Wrap(nlerr.ErrRedirectMismatch, "parsing redirect url")
	}
	q := u.Query()

	if code := firstOf(q, "error_code", "errorCode"); code != "" {
		// The wallet reported a failure. The session keeps whatever state
		// it had; sign-in simply did not complete.
		c.logger.Error("wallet returned error %q: %s", code, q.Get("errorMessage"))
	} else {
		c.reconcileSignIn(q)
	}

	c.reconcileTransactions(q)

	for _, name := range redirectParams {
		q.Del(name)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// reconcileSignIn completes a pending sign-in from account_id/public_key
// return parameters. Both must be present: the public key is the only proof
// the redirect answers a sign-in this client started, so an account id
// arriving without one is never applied.
func (c *Client) reconcileSignIn(q url.Values) {
	accountID := q.Get("account_id")
	if accountID == "" {
		return
	}

	st := c.session.State()
	returnedKey := q.Get("public_key")
	if returnedKey == "" || returnedKey != st.PublicKey {
		// The wallet authorized a key we do not hold, or sent none at all.
		// Applying the account would let a stale or forged return move the
		// session to an account it cannot sign for.
		c.logger.Error("redirect public key %q does not match held key %q; ignoring account %s",
			returnedKey, st.PublicKey, accountID)
		return
	}

	c.session.Update(session.Patch{AccountID: session.String(accountID)})
	c.logger.Debug("redirect completed sign-in for %s", accountID)
}

// reconcileTransactions zips returned wallet hashes against the local
// transaction ids embedded in the callback URL.
func (c *Client) reconcileTransactions(q url.Values) {
	txIDs := splitList(q.Get("txIds"))
	hashes := splitList(q.Get("transactionHashes"))
	if len(txIDs) == 0 {
		if len(hashes) > 0 {
			c.logger.Error("redirect carried %d hashes but no local tx ids", len(hashes))
		}
		return
	}

	switch {
	case len(hashes) < len(txIDs):
		// The wallet sent the user back without signing the whole batch.
		// A partial set cannot be attributed to specific transactions, so
		// the batch counts as rejected.
		for _, txID := range txIDs {
			c.rejectTx(txID)
		}
	case len(hashes) == len(txIDs):
		for i, txID := range txIDs {
			c.resumeTx(txID, hashes[i])
		}
	default:
		c.logger.Error("redirect mismatch: %d tx ids but %d hashes; leaving history untouched",
			len(txIDs), len(hashes))
	}
}

// rejectTx marks a wallet-delegated transaction as rejected by the user.
func (c *Client) rejectTx(txID string) {
	updated, ok := c.session.UpdateTx(txID, func(r *session.TxRecord) {
		r.Status = session.StatusRejectedByUser
	})
	if !ok {
		c.logger.Error("redirect references unknown tx %s", txID)
		return
	}
	c.publishTx(updated)
}

// resumeTx attaches a wallet-produced hash to a pending transaction and
// resumes tracking from the polling phase.
func (c *Client) resumeTx(txID, hash string) {
	updated, ok := c.session.UpdateTx(txID, func(r *session.TxRecord) {
		r.Status = session.StatusPendingGotTxHash
		r.TxHash = hash
	})
	if !ok {
		c.logger.Error("redirect references unknown tx %s", txID)
		return
	}
	c.publishTx(updated)

	c.trackers.Add(1)
	go func() {
		defer c.trackers.Done()
		c.pollExecution(txID)
	}()
}

func firstOf(q url.Values, names ...string) string {
	for _, name := range names {
		if v := q.Get(name); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
