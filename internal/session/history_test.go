package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/nearlight/internal/action"
	"github.com/mrz1836/nearlight/internal/store"
)

func TestHistory_PutAndGet(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, nil)

	m.PutTx(TxRecord{
		TxID:   "t1",
		Tx:     TxBody{SignerID: "alice.near", ReceiverID: "bob.near"},
		Status: StatusPending,
	})

	rec, ok := m.Tx("t1")
	require.True(t, ok)
	assert.Equal(t, StatusPending, rec.Status)
	assert.NotZero(t, rec.CreatedAtMs)
	assert.NotZero(t, rec.UpdatedAtMs)

	_, ok = m.Tx("missing")
	assert.False(t, ok)
}

func TestHistory_OrderedByCreation(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, nil)
	now := time.Now().UnixMilli()

	m.PutTx(TxRecord{TxID: "newer", CreatedAtMs: now})
	m.PutTx(TxRecord{TxID: "older", CreatedAtMs: now - 1000})
	m.PutTx(TxRecord{TxID: "oldest", CreatedAtMs: now - 2000})

	records := m.History()
	require.Len(t, records, 3)
	assert.Equal(t, "oldest", records[0].TxID)
	assert.Equal(t, "older", records[1].TxID)
	assert.Equal(t, "newer", records[2].TxID)
}

func TestHistory_UpdateTxMergePatch(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, nil)
	m.PutTx(TxRecord{
		TxID:         "t1",
		Status:       StatusPending,
		SignedBase64: "payload",
		TxHash:       "hash1",
	})

	updated, ok := m.UpdateTx("t1", func(r *TxRecord) {
		r.Status = StatusIncluded
		r.Result = json.RawMessage(`{"ok":true}`)
	})
	require.True(t, ok)

	assert.Equal(t, StatusIncluded, updated.Status)
	assert.Equal(t, "payload", updated.SignedBase64, "untouched fields survive")
	assert.Equal(t, "hash1", updated.TxHash)
	assert.False(t, updated.FinalState, "Included is not terminal")

	updated, ok = m.UpdateTx("t1", func(r *TxRecord) {
		r.Status = StatusExecuted
	})
	require.True(t, ok)
	assert.True(t, updated.FinalState)
	assert.JSONEq(t, `{"ok":true}`, string(updated.Result), "result from earlier patch preserved")

	_, ok = m.UpdateTx("missing", func(*TxRecord) { t.Fatal("mutate called for missing record") })
	assert.False(t, ok)
}

func TestHistory_PersistsAcrossRestart(t *testing.T) {
	t.Parallel()

	st := store.NewMemStore()
	first := newTestManager(t, st)

	transfer, err := action.NewTransfer("42")
	require.NoError(t, err)

	first.PutTx(TxRecord{
		TxID: "t1",
		Tx: TxBody{
			SignerID:   "alice.near",
			ReceiverID: "bob.near",
			Actions:    action.List{transfer},
		},
		Status: StatusExecuted,
	})

	second := newTestManager(t, st)
	rec, ok := second.Tx("t1")
	require.True(t, ok)
	assert.Equal(t, StatusExecuted, rec.Status)
	require.Len(t, rec.Tx.Actions, 1, "interface-typed actions survive the JSON round trip")
	assert.Equal(t, transfer, rec.Tx.Actions[0])
}

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()

	terminal := []Status{StatusExecuted, StatusError, StatusErrorAfterIncluded, StatusRejectedByUser}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s", s)
	}

	open := []Status{StatusPending, StatusPendingGotTxHash, StatusIncluded}
	for _, s := range open {
		assert.False(t, s.Terminal(), "%s", s)
	}
}
