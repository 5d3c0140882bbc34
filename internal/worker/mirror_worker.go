// Package worker keeps the spreadsheet mirror in step with the ledger:
// change events trigger an immediate resync, a ticker covers anything
// the queue lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/amqp"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/sheets"
)

type MirrorWorker struct {
	store  *ledger.Store
	mirror sheets.Mirror
}

func NewMirrorWorker(store *ledger.Store, mirror sheets.Mirror) *MirrorWorker {
	return &MirrorWorker{
		store:  store,
		mirror: mirror,
	}
}

// HandleEvent reloads the ledger from the shared backend and pushes a
// fresh snapshot. The event only tells us that something changed; the
// backend is the source of truth.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		log.FieldKind, event.Kind,
		log.FieldTxnID, event.TxnID,
		log.FieldMonth, event.Month)

	if event.Kind == amqp.EventBudgetSet {
		// Budgets are not mirrored; nothing to do beyond the reload.
		return w.reload(ctx)
	}
	return w.Resync(ctx)
}

// Resync reloads the ledger and replaces the whole sheet.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	if err := w.reload(ctx); err != nil {
		return err
	}
	txns := w.store.All()
	if err := w.mirror.Replace(ctx, txns); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	slog.InfoContext(ctx, "Mirror resynced", "transactions", len(txns))
	return nil
}

func (w *MirrorWorker) reload(ctx context.Context) error {
	if err := w.store.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}
	return nil
}

// RunPeriodic resyncs on the given interval until ctx is cancelled.
// This backstops lost or never-delivered events.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Resync(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic resync failed", log.FieldError, err)
			}
		}
	}
}
