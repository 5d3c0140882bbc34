// Package ledger is the transaction store: an in-memory working set of
// transactions, budgets and the UI theme, persisted as JSON blobs
// through a pluggable kv backend.
package ledger

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"tally/internal/core"
	"tally/internal/kv"
	"tally/internal/log"
)

// DefaultTheme is returned when no theme has ever been saved.
const DefaultTheme = "light"

type Store struct {
	mu      sync.Mutex
	backend kv.Store

	txns         []core.Transaction // insertion order, never re-sorted in place
	budgets      map[string]float64
	theme        string
	defaultTheme string
}

// Open loads the working set from the backend. Corrupt persisted JSON
// degrades to empty defaults so the ledger stays usable; backend read
// failures are logged and likewise degrade.
func Open(ctx context.Context, backend kv.Store) *Store {
	return OpenWithTheme(ctx, backend, DefaultTheme)
}

// OpenWithTheme is Open with a configured fallback theme, returned by
// Theme until one is explicitly saved.
func OpenWithTheme(ctx context.Context, backend kv.Store, defaultTheme string) *Store {
	if defaultTheme == "" {
		defaultTheme = DefaultTheme
	}
	s := &Store{backend: backend, defaultTheme: defaultTheme}
	if err := s.Reload(ctx); err != nil {
		slog.WarnContext(ctx, "Loading ledger state failed, starting empty", log.FieldError, err)
	}
	return s
}

// Reload re-reads all keys from the backend, replacing the working set.
// The sync worker calls this after remote changes land.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txns = nil
	s.budgets = map[string]float64{}
	s.theme = ""

	data, err := s.backend.Load(ctx, kv.KeyTransactions)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if len(data) > 0 {
		var txns []core.Transaction
		if err := json.Unmarshal(data, &txns); err != nil {
			slog.WarnContext(ctx, "Corrupt transactions blob, starting empty", log.FieldError, err)
		} else {
			s.txns = txns
		}
	}

	data, err = s.backend.Load(ctx, kv.KeyBudgets)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}
	if len(data) > 0 {
		var budgets map[string]float64
		if err := json.Unmarshal(data, &budgets); err != nil {
			slog.WarnContext(ctx, "Corrupt budgets blob, starting empty", log.FieldError, err)
		} else if budgets != nil {
			s.budgets = budgets
		}
	}

	data, err = s.backend.Load(ctx, kv.KeyTheme)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}
	s.theme = string(data)
	return nil
}

// List returns the transactions whose date starts with the given month
// prefix (all of them when month is empty), sorted by date ascending
// with lexicographic id as the tie-break.
func (s *Store) List(month string) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0, len(s.txns))
	for _, t := range s.txns {
		if month == "" || strings.HasPrefix(t.Date, month) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].ID < out[j].ID
		}
		return out[i].Date < out[j].Date
	})
	return out
}

// All returns every transaction in insertion order. CSV export uses
// this: the file mirrors store order, not display order.
func (s *Store) All() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

func (s *Store) Find(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// Upsert replaces the record matching t.ID wholesale, or assigns a new
// id and appends when t.ID is empty. An id that matches nothing leaves
// the store untouched and echoes t back, mirroring the missing-record
// no-op rule for deletes. The caller validates shape beforehand.
func (s *Store) Upsert(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID != "" {
		for i := range s.txns {
			if s.txns[i].ID == t.ID {
				s.txns[i] = t
				break
			}
		}
	} else {
		t.ID = NewID()
		s.txns = append(s.txns, t)
	}
	return t, s.persistTxns(ctx)
}

// Delete removes the record with the given id. A missing id is a no-op,
// not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.txns[:0]
	for _, t := range s.txns {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.txns = kept
	return s.persistTxns(ctx)
}

// Merge folds imported records into the store by id: an existing id is
// replaced wholesale, a new id is appended. One persist covers the
// whole batch.
func (s *Store) Merge(ctx context.Context, incoming []core.Transaction) (added, updated int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, in := range incoming {
		replaced := false
		for i := range s.txns {
			if s.txns[i].ID == in.ID {
				s.txns[i] = in
				replaced = true
				break
			}
		}
		if replaced {
			updated++
		} else {
			s.txns = append(s.txns, in)
			added++
		}
	}
	return added, updated, s.persistTxns(ctx)
}

// Budget returns the month's budget, 0 when unset.
func (s *Store) Budget(month string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets[month]
}

// SetBudget clamps the amount to max(0, amount), treating non-finite
// values as 0, then stores and returns the clamped value.
func (s *Store) SetBudget(ctx context.Context, month string, amount float64) (float64, error) {
	if !core.IsFinite(amount) || amount < 0 {
		amount = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[month] = amount

	data, err := json.Marshal(s.budgets)
	if err != nil {
		return amount, fmt.Errorf("encode budgets: %w", err)
	}
	if err := s.backend.Save(ctx, kv.KeyBudgets, data); err != nil {
		return amount, fmt.Errorf("save budgets: %w", err)
	}
	return amount, nil
}

func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == "" {
		return s.defaultTheme
	}
	return s.theme
}

func (s *Store) SetTheme(ctx context.Context, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	if err := s.backend.Save(ctx, kv.KeyTheme, []byte(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// persistTxns writes the transaction blob; callers hold the lock.
func (s *Store) persistTxns(ctx context.Context) error {
	txns := s.txns
	if txns == nil {
		txns = []core.Transaction{}
	}
	data, err := json.Marshal(txns)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := s.backend.Save(ctx, kv.KeyTransactions, data); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return nil
}

// NewID builds an id from a random component and a millisecond
// timestamp, both base36. Collisions are outside the failure model.
func NewID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	n := binary.BigEndian.Uint64(buf[:])
	return strconv.FormatUint(n, 36) + strconv.FormatInt(time.Now().UnixMilli(), 36)
}
