// Package services orchestrates ledger mutations: local store first,
// then a best-effort change event for the mirror worker.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/csvio"
	"tally/internal/ledger"
	"tally/internal/log"
)

// EventPublisher is the slice of the AMQP client the service needs.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *amqp.LedgerEvent) error
	Close() error
}

// LedgerService applies mutations to the local store and notifies the
// worker. Publish failures never fail the request — the change is
// already durable locally and the worker resyncs periodically anyway.
type LedgerService struct {
	store     *ledger.Store
	publisher EventPublisher
}

func NewLedgerService(store *ledger.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

func (s *LedgerService) List(month string) []core.Transaction {
	return s.store.List(month)
}

func (s *LedgerService) Find(id string) (core.Transaction, bool) {
	return s.store.Find(id)
}

// CreateOrUpdate sanitizes the free-text fields, validates the shape
// and upserts. Validation failures come back as the shape sentinel
// errors from core; nothing is stored in that case.
func (s *LedgerService) CreateOrUpdate(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Note = core.SanitizeText(t.Note, core.NoteLimit)
	t.Category = core.SanitizeText(t.Category, core.CategoryLimit)
	if t.Type != core.Income {
		// Savings only means something on income entries.
		t.Savings = 0
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.Upsert(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("upsert transaction: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTxnUpserted, saved.ID, saved.Month()))
	return saved, nil
}

func (s *LedgerService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventTxnDeleted, id, ""))
	return nil
}

func (s *LedgerService) Budget(month string) float64 {
	return s.store.Budget(month)
}

func (s *LedgerService) SetBudget(ctx context.Context, month string, amount float64) (float64, error) {
	stored, err := s.store.SetBudget(ctx, month, amount)
	if err != nil {
		return stored, fmt.Errorf("set budget: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventBudgetSet, "", month))
	return stored, nil
}

// MonthSummary aggregates the month's transactions and its budget
// progress in one shot.
func (s *LedgerService) MonthSummary(month string) (core.Summary, core.BudgetProgress) {
	summary := core.Summarize(s.store.List(month))
	return summary, core.ProgressAgainst(s.store.Budget(month), summary.Expenses)
}

func (s *LedgerService) Trend(month string) (core.Trend, error) {
	return core.BuildTrend(s.store.List(month), month)
}

// ExportCSV renders the whole ledger in store order.
func (s *LedgerService) ExportCSV() string {
	return csvio.Marshal(s.store.All())
}

// ImportCSV merges the parsed rows into the store by id and reports
// how many were appended vs replaced.
func (s *LedgerService) ImportCSV(ctx context.Context, text string) (added, updated int, err error) {
	records := csvio.Unmarshal(text, ledger.NewID)
	if len(records) == 0 {
		return 0, 0, nil
	}
	added, updated, err = s.store.Merge(ctx, records)
	if err != nil {
		return added, updated, fmt.Errorf("merge imported transactions: %w", err)
	}

	slog.InfoContext(ctx, "Imported CSV transactions", log.FieldAdded, added, log.FieldUpdated, updated)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventImportCompleted, "", ""))
	return added, updated, nil
}

func (s *LedgerService) Theme() string {
	return s.store.Theme()
}

func (s *LedgerService) SetTheme(ctx context.Context, theme string) error {
	return s.store.SetTheme(ctx, theme)
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldKind, event.Kind,
			log.FieldTxnID, event.TxnID,
			log.FieldError, err)
	}
}

// Close releases the publisher connection. The store's backend is owned
// and closed by whoever created it.
func (s *LedgerService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
