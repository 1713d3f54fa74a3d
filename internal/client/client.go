// Package client implements the transaction pipeline: building and locally
// signing transactions, tracking submissions to a terminal state, and
// reconciling wallet redirect returns against local state.
package client

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mrz1836/nearlight/internal/events"
	"github.com/mrz1836/nearlight/internal/rpc"
	"github.com/mrz1836/nearlight/internal/session"
)

// Logger provides logging operations.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// AuthStatus describes the session's authentication state.
type AuthStatus string

// Authentication states.
const (
	AuthSignedOut       AuthStatus = "SignedOut"
	AuthSignedIn        AuthStatus = "SignedIn"
	AuthSignedInLimited AuthStatus = "SignedInWithLimitedAccessKey"
)

// Client is the chain client. All dependencies are injected; the client owns
// no ambient globals.
type Client struct {
	networkID   string
	callbackURL string
	rpc         *rpc.Client
	session     *session.Manager
	bus         *events.Bus
	bridge      Bridge
	navigator   Navigator
	logger      Logger

	trackers sync.WaitGroup
}

// Config holds dependencies for the client.
type Config struct {
	NetworkID   string
	CallbackURL string // return URL embedded in wallet redirect flows
	RPC         *rpc.Client
	Session     *session.Manager
	Bus         *events.Bus
	Bridge      Bridge    // optional; nil disables wallet delegation
	Navigator   Navigator // optional; nil logs redirect URLs instead of navigating
	Logger      Logger
}

// New creates a client.
func New(cfg *Config) *Client {
	return &Client{
		networkID:   cfg.NetworkID,
		callbackURL: cfg.CallbackURL,
		rpc:         cfg.RPC,
		session:     cfg.Session,
		bus:         cfg.Bus,
		bridge:      cfg.Bridge,
		navigator:   cfg.Navigator,
		logger:      cfg.Logger,
	}
}

// Session exposes the session manager.
func (c *Client) Session() *session.Manager {
	return c.session
}

// AccountID returns the active account id, or "".
func (c *Client) AccountID() string {
	return c.session.State().AccountID
}

// PublicKey returns the session's derived public key, or "".
func (c *Client) PublicKey() string {
	return c.session.State().PublicKey
}

// AuthStatus reports the authentication state of the session.
func (c *Client) AuthStatus() AuthStatus {
	st := c.session.State()
	switch {
	case !st.SignedIn():
		return AuthSignedOut
	case st.AccessKeyContractID != "":
		return AuthSignedInLimited
	default:
		return AuthSignedIn
	}
}

// SignOut clears the account and held key.
func (c *Client) SignOut() {
	c.session.SignOut()
}

// OnAccount subscribes to account-changed events.
func (c *Client) OnAccount(fn func(events.AccountEvent)) {
	c.bus.Account.Subscribe(fn)
}

// OnTx subscribes to transaction-status-changed events.
func (c *Client) OnTx(fn func(events.TxEvent)) {
	c.bus.Tx.Subscribe(fn)
}

// LocalTxHistory returns the transaction history, oldest first.
func (c *Client) LocalTxHistory() []session.TxRecord {
	return c.session.History()
}

// Wait blocks until all background submission trackers have finished.
// Intended for shutdown and tests; transactions report progress through the
// event bus, not through Wait.
func (c *Client) Wait() {
	c.trackers.Wait()
}

// publishTx emits a transaction-status-changed event for a history record.
func (c *Client) publishTx(rec session.TxRecord) {
	c.bus.Tx.Publish(events.TxEvent{
		TxID:   rec.TxID,
		Status: string(rec.Status),
		Record: rec,
	})
}

// newTxID generates a locally unique transaction id from the current time
// and random bytes.
func newTxID() string {
	var buf [5]byte
	_, _ = rand.Read(buf[:])
	suffix := strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf[:]))
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}
