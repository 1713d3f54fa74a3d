package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/mrz1836/nearlight/internal/events"
	"github.com/mrz1836/nearlight/internal/keys"
	"github.com/mrz1836/nearlight/internal/metrics"
	"github.com/mrz1836/nearlight/internal/store"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// Logger is the logging surface the manager needs. config.Logger satisfies
// it.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Manager owns the session state and its caches. Exactly one Manager exists
// per client. All mutation, persistence, and event emission go through it;
// the internal mutex is the only consistency mechanism shared mutable state
// has, so cache reads followed by synchronous writes (the nonce advance)
// must happen in a single call.
type Manager struct {
	mu      sync.Mutex
	state   State
	nonce   *uint64
	block   *BlockRef
	history map[string]*TxRecord

	store  store.Store
	bus    *events.Bus
	logger Logger
}

// NewManager loads persisted session state from the store and re-derives the
// public key. Load failures on individual keys are logged and treated as
// absent values so a damaged store degrades to a signed-out session.
func NewManager(st store.Store, bus *events.Bus, logger Logger) *Manager {
	m := &Manager{
		history: make(map[string]*TxRecord),
		store:   st,
		bus:     bus,
		logger:  logger,
	}

	var ps persistedState
	if ok, err := store.GetJSON(st, keySession, &ps); err != nil {
		logger.Error("loading session state: %v", err)
	} else if ok {
		m.state = State{
			AccountID:           ps.AccountID,
			PrivateKey:          ps.PrivateKey,
			LastWalletID:        ps.LastWalletID,
			AccessKeyContractID: ps.AccessKeyContractID,
		}
		m.state.PublicKey = derivePublicKey(ps.PrivateKey, logger)
	}

	var nonce uint64
	if ok, err := store.GetJSON(st, keyNonce, &nonce); err != nil {
		logger.Error("loading nonce cache: %v", err)
	} else if ok {
		m.nonce = &nonce
	}

	var block BlockRef
	if ok, err := store.GetJSON(st, keyBlock, &block); err != nil {
		logger.Error("loading block cache: %v", err)
	} else if ok {
		m.block = &block
	}

	var history map[string]*TxRecord
	if ok, err := store.GetJSON(st, keyHistory, &history); err != nil {
		logger.Error("loading transaction history: %v", err)
	} else if ok && history != nil {
		m.history = history
	}

	return m
}

// State returns a copy of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Update merges the patch into the session state, persists the durable
// subset, re-derives the public key and invalidates the nonce cache when the
// private key changed, and emits an account-changed event when the account
// changed.
func (m *Manager) Update(p Patch) {
	m.mu.Lock()

	prevAccount := m.state.AccountID

	if p.AccountID != nil {
		m.state.AccountID = *p.AccountID
	}
	if p.LastWalletID != nil {
		m.state.LastWalletID = *p.LastWalletID
	}
	if p.AccessKeyContractID != nil {
		m.state.AccessKeyContractID = *p.AccessKeyContractID
	}
	if p.PrivateKey != nil && *p.PrivateKey != m.state.PrivateKey {
		m.state.PrivateKey = *p.PrivateKey
		m.state.PublicKey = derivePublicKey(*p.PrivateKey, m.logger)
		m.clearNonceLocked()
	}

	m.persistSessionLocked()
	accountChanged := m.state.AccountID != prevAccount
	accountID := m.state.AccountID
	m.mu.Unlock()

	if accountChanged {
		m.bus.Account.Publish(events.AccountEvent{AccountID: accountID})
	}
}

// SignOut clears the account and key through the normal update funnel.
func (m *Manager) SignOut() {
	m.Update(Patch{
		AccountID:  String(""),
		PrivateKey: String(""),
	})
}

// KeyPair parses the held private key. Returns ErrNotSignedIn when no key is
// held.
func (m *Manager) KeyPair() (*keys.KeyPair, error) {
	m.mu.Lock()
	pk := m.state.PrivateKey
	m.mu.Unlock()

	if pk == "" {
		return nil, nlerr.ErrNotSignedIn
	}
	return keys.ParsePrivateKey(pk)
}

// Nonce returns the cached access-key nonce, if known.
func (m *Manager) Nonce() (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nonce == nil {
		metrics.Global.RecordCacheMiss()
		return 0, false
	}
	metrics.Global.RecordCacheHit()
	return *m.nonce, true
}

// SetNonce primes the nonce cache from an RPC access-key fetch.
func (m *Manager) SetNonce(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nonce = &n
	m.persistLocked(keyNonce, n)
}

// AdvanceNonce increments the cached nonce and persists it before returning.
// The write completes synchronously so a subsequent caller observes the
// advanced value; this is what keeps concurrent sends from reusing a nonce.
// Returns false when the cache is empty.
func (m *Manager) AdvanceNonce() (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nonce == nil {
		return 0, false
	}
	next := *m.nonce + 1
	m.nonce = &next
	m.persistLocked(keyNonce, next)
	return next, true
}

// Block returns the cached block reference and whether it is still fresh.
func (m *Manager) Block() (BlockRef, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.block == nil {
		metrics.Global.RecordCacheMiss()
		return BlockRef{}, false
	}
	if blockAge(*m.block) >= BlockStaleness {
		metrics.Global.RecordCacheMiss()
		return *m.block, false
	}
	metrics.Global.RecordCacheHit()
	return *m.block, true
}

// SetBlock caches a recent-block reference.
func (m *Manager) SetBlock(ref BlockRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = &ref
	m.persistLocked(keyBlock, ref)
}

// blockAge computes how old a cached block is from its header timestamp.
func blockAge(ref BlockRef) time.Duration {
	nanos, err := strconv.ParseInt(ref.TimestampNanosec, 10, 64)
	if err != nil {
		return BlockStaleness // unparseable timestamp counts as stale
	}
	return time.Since(time.Unix(0, nanos))
}

// clearNonceLocked drops the nonce cache. Caller holds the lock.
func (m *Manager) clearNonceLocked() {
	m.nonce = nil
	if err := store.DeleteKey(m.store, keyNonce); err != nil {
		m.logger.Error("clearing nonce cache: %v", err)
	}
}

// persistSessionLocked writes the durable session subset. Caller holds the
// lock. Persistence is fire-and-forget: failures are logged, never returned.
func (m *Manager) persistSessionLocked() {
	m.persistLocked(keySession, persistedState{
		AccountID:           m.state.AccountID,
		PrivateKey:          m.state.PrivateKey,
		LastWalletID:        m.state.LastWalletID,
		AccessKeyContractID: m.state.AccessKeyContractID,
	})
}

// persistLocked writes one store key, logging failures.
func (m *Manager) persistLocked(key string, v any) {
	if err := store.SetJSON(m.store, key, v); err != nil {
		m.logger.Error("persisting %s: %v", key, err)
	}
}

// derivePublicKey computes the public key for a private key string, or ""
// when no key is held or the key is malformed.
func derivePublicKey(privateKey string, logger Logger) string {
	if privateKey == "" {
		return ""
	}
	kp, err := keys.ParsePrivateKey(privateKey)
	if err != nil {
		logger.Error("deriving public key: %v", err)
		return ""
	}
	return kp.PublicKeyString()
}
