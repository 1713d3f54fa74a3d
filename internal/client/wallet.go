package client

import (
	"context"

	"github.com/mrz1836/nearlight/internal/keys"
	"github.com/mrz1836/nearlight/internal/session"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// Bridge is the external wallet. It can resolve synchronously (a headless
// wallet or an injected extension) or hand back a redirect URL, in which
// case the flow suspends until the next startup reconciles the return
// parameters.
type Bridge interface {
	// SignIn asks the wallet to authorize the app for a contract.
	SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error)

	// SendTransactions asks the wallet to sign and submit a batch.
	SendTransactions(ctx context.Context, req SendTransactionsRequest) (*SendTransactionsResult, error)
}

// SignInRequest asks the wallet to authorize the app. PublicKey is the
// freshly generated key the wallet should add to the account as a
// function-call key scoped to ContractID.
type SignInRequest struct {
	NetworkID   string
	ContractID  string
	PublicKey   string
	CallbackURL string
}

// SignInResult is a sign-in outcome. Exactly one of AccountID or URL is set
// on success; ErrorMessage reports wallet-side rejection.
type SignInResult struct {
	AccountID    string
	URL          string
	ErrorMessage string
}

// SendTransactionsRequest asks the wallet to sign and broadcast
// transactions. CallbackURL embeds the local transaction ids so the redirect
// return can be reconciled.
type SendTransactionsRequest struct {
	Transactions []session.TxBody
	CallbackURL  string
}

// SendTransactionsResult is a signing outcome. URL, when set, requires a
// redirect; Hashes are returned by wallets that resolve synchronously.
type SendTransactionsResult struct {
	URL    string
	Hashes []string
}

// WalletState is an asynchronous state change pushed by the wallet bridge:
// a delegated key, a selected account, or the wallet the user chose.
type WalletState struct {
	AccountID    *string
	PrivateKey   *string
	LastWalletID *string
}

// Navigator schedules browser navigation for redirect flows.
type Navigator interface {
	Navigate(url string)
}

// ApplyWalletState funnels a bridge-pushed state change into the session.
func (c *Client) ApplyWalletState(ws WalletState) {
	c.session.Update(session.Patch{
		AccountID:    ws.AccountID,
		PrivateKey:   ws.PrivateKey,
		LastWalletID: ws.LastWalletID,
	})
}

// RequestSignIn starts the sign-in flow for a contract. A fresh key pair is
// generated and stored first, so the redirect return can be matched against
// its public key; the wallet either resolves with an account id in place, or
// returns a redirect URL, in which case navigation is scheduled and sign-in
// completes on the next startup through HandleRedirect.
func (c *Client) RequestSignIn(ctx context.Context, contractID string) error {
	if c.bridge == nil {
		return nlerr.WithDetails(nlerr.ErrWallet, map[string]string{
			"reason": "no wallet bridge configured",
		})
	}

	kp, err := keys.Generate()
	if err != nil {
		return nlerr.Wrap(err, "generating sign-in key")
	}

	c.session.Update(session.Patch{
		AccountID:           session.String(""),
		PrivateKey:          session.String(kp.PrivateKeyString()),
		AccessKeyContractID: session.String(contractID),
	})

	result, err := c.bridge.SignIn(ctx, SignInRequest{
		NetworkID:   c.networkID,
		ContractID:  contractID,
		PublicKey:   kp.PublicKeyString(),
		CallbackURL: c.callbackURL,
	})
	if err != nil {
		return nlerr.Wrap(err, "wallet sign-in")
	}

	switch {
	case result.ErrorMessage != "":
		return nlerr.WithDetails(nlerr.ErrWallet, map[string]string{
			"message": result.ErrorMessage,
		})
	case result.AccountID != "":
		c.session.Update(session.Patch{AccountID: session.String(result.AccountID)})
		return nil
	case result.URL != "":
		c.navigate(result.URL)
		return nil
	default:
		return nil
	}
}

// navigate hands a redirect URL to the navigator, or logs it when none is
// configured.
func (c *Client) navigate(url string) {
	if c.navigator == nil {
		c.logger.Error("no navigator configured for redirect to %s", url)
		return
	}
	c.navigator.Navigate(url)
}
