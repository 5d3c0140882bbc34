// Package memory is an in-process mirror used by tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	"tally/internal/core"
)

type Mirror struct {
	mu       sync.Mutex
	snapshot []core.Transaction
	replaces int
}

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) Replace(_ context.Context, txns []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = make([]core.Transaction, len(txns))
	copy(m.snapshot, txns)
	m.replaces++
	return nil
}

// Snapshot returns the last mirrored state.
func (m *Mirror) Snapshot() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, len(m.snapshot))
	copy(out, m.snapshot)
	return out
}

// Replaces reports how many snapshots have been taken.
func (m *Mirror) Replaces() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaces
}
