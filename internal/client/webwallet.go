package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/mrz1836/nearlight/internal/session"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// WebWallet is a Bridge backed by a redirect-based web wallet. It never
// resolves in place: every request produces a URL for the navigator, and the
// outcome arrives later through HandleRedirect.
type WebWallet struct {
	baseURL string
}

// NewWebWallet creates a bridge for a web wallet endpoint such as
// https://app.mynearwallet.com.
func NewWebWallet(baseURL string) *WebWallet {
	return &WebWallet{baseURL: strings.TrimRight(baseURL, "/")}
}

// SignIn builds the wallet login URL.
func (w *WebWallet) SignIn(_ context.Context, req SignInRequest) (*SignInResult, error) {
	u, err := url.Parse(w.baseURL + "/login/")
	if err != nil {
		return nil, nlerr.Wrap(nlerr.ErrWallet, "bad wallet url %s", w.baseURL)
	}

	q := u.Query()
	if req.ContractID != "" {
		q.Set("contract_id", req.ContractID)
	}
	if req.PublicKey != "" {
		q.Set("public_key", req.PublicKey)
	}
	if req.CallbackURL != "" {
		q.Set("success_url", req.CallbackURL)
		q.Set("failure_url", req.CallbackURL)
	}
	u.RawQuery = q.Encode()

	return &SignInResult{URL: u.String()}, nil
}

// SendTransactions builds the wallet sign URL. Transactions travel as
// base64-encoded JSON in the transactions parameter.
func (w *WebWallet) SendTransactions(_ context.Context, req SendTransactionsRequest) (*SendTransactionsResult, error) {
	u, err := url.Parse(w.baseURL + "/sign")
	if err != nil {
		return nil, nlerr.Wrap(nlerr.ErrWallet, "bad wallet url %s", w.baseURL)
	}

	encoded, err := encodeTransactions(req.Transactions)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("transactions", encoded)
	if req.CallbackURL != "" {
		q.Set("callbackUrl", req.CallbackURL)
	}
	u.RawQuery = q.Encode()

	return &SendTransactionsResult{URL: u.String()}, nil
}

func encodeTransactions(txs []session.TxBody) (string, error) {
	payload, err := json.Marshal(txs)
	if err != nil {
		return "", nlerr.Wrap(err, "encoding wallet transactions")
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}
