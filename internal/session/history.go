package session

import (
	"sort"
	"time"
)

// Tx returns a copy of one history entry.
func (m *Manager) Tx(txID string) (TxRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.history[txID]
	if !ok {
		return TxRecord{}, false
	}
	return *rec, true
}

// History returns all history entries ordered by creation time.
func (m *Manager) History() []TxRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]TxRecord, 0, len(m.history))
	for _, rec := range m.history {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAtMs < out[j].CreatedAtMs
	})
	return out
}

// PutTx inserts a new history entry and persists the history.
func (m *Manager) PutTx(rec TxRecord) {
	now := time.Now().UnixMilli()
	if rec.CreatedAtMs == 0 {
		rec.CreatedAtMs = now
	}
	rec.UpdatedAtMs = now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[rec.TxID] = &rec
	m.persistLocked(keyHistory, m.history)
}

// UpdateTx applies a merge-patch to one history entry under the lock: the
// mutate callback sees the current record and changes only the fields it
// needs, so earlier fields are preserved. Returns the updated copy. A
// missing txID returns false without calling mutate.
func (m *Manager) UpdateTx(txID string, mutate func(*TxRecord)) (TxRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.history[txID]
	if !ok {
		return TxRecord{}, false
	}

	mutate(rec)
	rec.FinalState = rec.Status.Terminal()
	rec.UpdatedAtMs = time.Now().UnixMilli()
	m.persistLocked(keyHistory, m.history)
	return *rec, true
}
