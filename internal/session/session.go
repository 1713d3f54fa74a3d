// Package session owns the single active session: the signed-in account, its
// key material, the nonce and block caches, and the persisted transaction
// history. All mutation funnels through one update path that also handles
// persistence and event emission.
package session

import (
	"encoding/json"
	"time"

	"github.com/mrz1836/nearlight/internal/action"
)

// Persisted store keys, namespaced by the store package.
const (
	keySession = "session"
	keyNonce   = "nonce"
	keyBlock   = "block"
	keyHistory = "history"
)

// BlockStaleness is how long a cached block reference stays usable. Chain
// rules reject transactions referencing blocks much older than this.
const BlockStaleness = 6 * time.Hour

// State is the active session. PublicKey is always derived from PrivateKey
// and never set independently.
type State struct {
	AccountID           string
	PublicKey           string
	PrivateKey          string
	LastWalletID        string
	AccessKeyContractID string
}

// SignedIn reports whether an account is active.
func (s State) SignedIn() bool {
	return s.AccountID != ""
}

// persistedState is the durable subset of State. The derived PublicKey is
// intentionally excluded and recomputed on load.
type persistedState struct {
	AccountID           string `json:"account_id,omitempty"`
	PrivateKey          string `json:"private_key,omitempty"`
	LastWalletID        string `json:"last_wallet_id,omitempty"`
	AccessKeyContractID string `json:"access_key_contract_id,omitempty"`
}

// Patch is a partial update to State. Nil fields are left unchanged; a
// pointer to the empty string clears a field.
type Patch struct {
	AccountID           *string
	PrivateKey          *string
	LastWalletID        *string
	AccessKeyContractID *string
}

// String is a convenience for building Patch fields.
func String(s string) *string {
	return &s
}

// BlockRef is the cached recent-block reference used when building
// transactions.
type BlockRef struct {
	PrevHash         string `json:"prev_hash"`
	TimestampNanosec string `json:"timestamp_nanosec"`
}

// Status is a transaction's lifecycle state.
type Status string

// Transaction statuses. Executed, Error, ErrorAfterIncluded, and
// RejectedByUser are terminal.
const (
	StatusPending            Status = "Pending"
	StatusPendingGotTxHash   Status = "PendingGotTxHash"
	StatusIncluded           Status = "Included"
	StatusExecuted           Status = "Executed"
	StatusError              Status = "Error"
	StatusErrorAfterIncluded Status = "ErrorAfterIncluded"
	StatusRejectedByUser     Status = "RejectedByUser"
)

// Terminal reports whether the status ends a transaction's lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusExecuted, StatusError, StatusErrorAfterIncluded, StatusRejectedByUser:
		return true
	default:
		return false
	}
}

// TxBody is the transaction payload recorded in history. Signing fields are
// empty for wallet-delegated transactions.
type TxBody struct {
	SignerID   string      `json:"signer_id"`
	ReceiverID string      `json:"receiver_id"`
	PublicKey  string      `json:"public_key,omitempty"`
	Nonce      uint64      `json:"nonce,omitempty"`
	BlockHash  string      `json:"block_hash,omitempty"`
	Actions    action.List `json:"actions"`
}

// TxRecord is one transaction history entry, keyed by the locally generated
// TxID. Entries are never deleted automatically; history growth is a known
// limitation.
type TxRecord struct {
	TxID              string          `json:"tx_id"`
	Tx                TxBody          `json:"tx"`
	Signature         string          `json:"signature,omitempty"`
	SignedBase64      string          `json:"signed_payload_base64,omitempty"`
	TxHash            string          `json:"tx_hash,omitempty"`
	Status            Status          `json:"status"`
	FinalState        bool            `json:"final_state"`
	Result            json.RawMessage `json:"result,omitempty"`
	ErrorValue        json.RawMessage `json:"error,omitempty"`
	CreatedAtMs       int64           `json:"created_at_ms"`
	UpdatedAtMs       int64           `json:"updated_at_ms"`
	SubmittedByWallet bool            `json:"submitted_by_wallet,omitempty"`
}
