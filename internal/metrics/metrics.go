// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds client metrics using atomic counters for thread safety.
type Metrics struct {
	// RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcLatencyNanos atomic.Int64

	// Transaction metrics
	txSent      atomic.Int64
	txDelegated atomic.Int64
	txTerminal  atomic.Int64

	// Cache metrics
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64

	// Event bus metrics
	eventsBuffered atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the client.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRPCCall records an RPC call with its duration and success status.
func (m *Metrics) RecordRPCCall(_ string, duration time.Duration, err error) {
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}
}

// RecordTxSent records a locally signed and broadcast transaction.
func (m *Metrics) RecordTxSent() {
	m.txSent.Add(1)
}

// RecordTxDelegated records a transaction handed to the wallet bridge.
func (m *Metrics) RecordTxDelegated() {
	m.txDelegated.Add(1)
}

// RecordTxTerminal records a transaction reaching a terminal state.
func (m *Metrics) RecordTxTerminal() {
	m.txTerminal.Add(1)
}

// RecordCacheHit records a nonce or block cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a nonce or block cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// RecordEventBuffered records an event published with no subscriber.
func (m *Metrics) RecordEventBuffered() {
	m.eventsBuffered.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	RPCCallsTotal   int64
	RPCErrorsTotal  int64
	RPCLatencyNanos int64
	TxSent          int64
	TxDelegated     int64
	TxTerminal      int64
	CacheHits       int64
	CacheMisses     int64
	EventsBuffered  int64
}

// GetSnapshot returns the current metric values.
func (m *Metrics) GetSnapshot() Snapshot {
	return Snapshot{
		RPCCallsTotal:   m.rpcCallsTotal.Load(),
		RPCErrorsTotal:  m.rpcErrorsTotal.Load(),
		RPCLatencyNanos: m.rpcLatencyNanos.Load(),
		TxSent:          m.txSent.Load(),
		TxDelegated:     m.txDelegated.Load(),
		TxTerminal:      m.txTerminal.Load(),
		CacheHits:       m.cacheHits.Load(),
		CacheMisses:     m.cacheMisses.Load(),
		EventsBuffered:  m.eventsBuffered.Load(),
	}
}

// Reset zeroes all counters. Intended for tests.
func (m *Metrics) Reset() {
	m.rpcCallsTotal.Store(0)
	m.rpcErrorsTotal.Store(0)
	m.rpcLatencyNanos.Store(0)
	m.txSent.Store(0)
	m.txDelegated.Store(0)
	m.txTerminal.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.eventsBuffered.Store(0)
}
