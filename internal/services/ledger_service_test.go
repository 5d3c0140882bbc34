package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/kv/memory"
	"tally/internal/ledger"
)

type fakePublisher struct {
	events []*amqp.LedgerEvent
	fail   bool
	closed bool
}

func (f *fakePublisher) PublishEvent(_ context.Context, e *amqp.LedgerEvent) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func newTestService(t *testing.T) (*LedgerService, *fakePublisher) {
	t.Helper()
	store := ledger.Open(context.Background(), memory.New())
	pub := &fakePublisher{}
	return NewLedgerService(store, pub), pub
}

func TestCreateOrUpdateSanitizesAndPublishes(t *testing.T) {
	svc, pub := newTestService(t)
	got, err := svc.CreateOrUpdate(context.Background(), core.Transaction{
		Date:     "2024-03-01",
		Note:     "  coffee   run ",
		Amount:   3.5,
		Type:     core.Expense,
		Category: " food ",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if got.Note != "coffee run" || got.Category != "food" {
		t.Fatalf("text not sanitized: %+v", got)
	}
	if got.ID == "" {
		t.Fatal("expected a generated id")
	}
	if len(pub.events) != 1 || pub.events[0].Kind != amqp.EventTxnUpserted {
		t.Fatalf("expected one upsert event, got %v", pub.events)
	}
	if pub.events[0].Month != "2024-03" {
		t.Fatalf("event month = %q, expected 2024-03", pub.events[0].Month)
	}
}

func TestCreateOrUpdateZeroesExpenseSavings(t *testing.T) {
	svc, _ := newTestService(t)
	got, err := svc.CreateOrUpdate(context.Background(), core.Transaction{
		Date: "2024-03-01", Note: "n", Amount: 10, Type: core.Expense, Category: "c",
		Savings: 99,
	})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if got.Savings != 0 {
		t.Fatalf("expense savings = %v, expected 0", got.Savings)
	}
}

func TestCreateOrUpdateTruncatesFields(t *testing.T) {
	svc, _ := newTestService(t)
	got, err := svc.CreateOrUpdate(context.Background(), core.Transaction{
		Date:     "2024-03-01",
		Note:     strings.Repeat("n", 200),
		Amount:   1,
		Type:     core.Expense,
		Category: strings.Repeat("c", 200),
	})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if len(got.Note) != core.NoteLimit {
		t.Fatalf("note length = %d, expected %d", len(got.Note), core.NoteLimit)
	}
	if len(got.Category) != core.CategoryLimit {
		t.Fatalf("category length = %d, expected %d", len(got.Category), core.CategoryLimit)
	}
}

func TestCreateOrUpdateRejectsInvalidShape(t *testing.T) {
	svc, pub := newTestService(t)
	_, err := svc.CreateOrUpdate(context.Background(), core.Transaction{
		Date: "2024-03-01", Note: "x", Amount: 1, Type: "transfer", Category: "c",
	})
	if !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if len(svc.List("")) != 0 {
		t.Fatal("invalid transaction must not be stored")
	}
	if len(pub.events) != 0 {
		t.Fatalf("invalid transaction must not publish, got %v", pub.events)
	}
}

func TestCreateOrUpdateSanitizeBeforeValidate(t *testing.T) {
	svc, _ := newTestService(t)
	// Whitespace-only note collapses to empty and must fail the shape check.
	_, err := svc.CreateOrUpdate(context.Background(), core.Transaction{
		Date: "2024-03-01", Note: "   ", Amount: 1, Type: core.Expense, Category: "c",
	})
	if !errors.Is(err, core.ErrNoteRequired) {
		t.Fatalf("expected ErrNoteRequired, got %v", err)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	svc, pub := newTestService(t)
	pub.fail = true
	got, err := svc.CreateOrUpdate(context.Background(), core.Transaction{
		Date: "2024-03-01", Note: "n", Amount: 1, Type: core.Expense, Category: "c",
	})
	if err != nil {
		t.Fatalf("local mutation must survive a publish failure: %v", err)
	}
	if _, ok := svc.Find(got.ID); !ok {
		t.Fatal("transaction not stored")
	}
}

func TestNilPublisherIsFine(t *testing.T) {
	store := ledger.Open(context.Background(), memory.New())
	svc := NewLedgerService(store, nil)
	if _, err := svc.CreateOrUpdate(context.Background(), core.Transaction{
		Date: "2024-03-01", Note: "n", Amount: 1, Type: core.Expense, Category: "c",
	}); err != nil {
		t.Fatalf("CreateOrUpdate without publisher: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close without publisher: %v", err)
	}
}

func TestDeletePublishes(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	saved, err := svc.CreateOrUpdate(ctx, core.Transaction{
		Date: "2024-03-01", Note: "n", Amount: 1, Type: core.Expense, Category: "c",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if err := svc.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	last := pub.events[len(pub.events)-1]
	if last.Kind != amqp.EventTxnDeleted || last.TxnID != saved.ID {
		t.Fatalf("expected delete event for %s, got %+v", saved.ID, last)
	}
}

func TestSetBudgetPublishes(t *testing.T) {
	svc, pub := newTestService(t)
	stored, err := svc.SetBudget(context.Background(), "2024-03", 400)
	if err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if stored != 400 {
		t.Fatalf("SetBudget = %v, expected 400", stored)
	}
	last := pub.events[len(pub.events)-1]
	if last.Kind != amqp.EventBudgetSet || last.Month != "2024-03" {
		t.Fatalf("expected budget event, got %+v", last)
	}
}

func TestMonthSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seed := []core.Transaction{
		{Date: "2024-03-01", Note: "pay", Amount: 1000, Type: core.Income, Category: "General", Savings: 200},
		{Date: "2024-03-02", Note: "rent", Amount: 600, Type: core.Expense, Category: "housing"},
	}
	for _, tx := range seed {
		if _, err := svc.CreateOrUpdate(ctx, tx); err != nil {
			t.Fatalf("CreateOrUpdate: %v", err)
		}
	}
	if _, err := svc.SetBudget(ctx, "2024-03", 700); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	summary, progress := svc.MonthSummary("2024-03")
	if summary.Income != 1000 || summary.Expenses != 600 || summary.Savings != 200 || summary.Balance != 400 {
		t.Fatalf("summary = %+v", summary)
	}
	if progress.Percent != 86 || progress.Status != core.BudgetNear {
		t.Fatalf("progress = %+v, expected 86%%/near", progress)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateOrUpdate(ctx, core.Transaction{
		Date: "2024-03-01", Note: "pay", Amount: 1000, Type: core.Income, Category: "General", Savings: 100,
	}); err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}

	exported := svc.ExportCSV()

	other := NewLedgerService(ledger.Open(ctx, memory.New()), nil)
	added, updated, err := other.ImportCSV(ctx, exported)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if added != 1 || updated != 0 {
		t.Fatalf("import counts = %d/%d, expected 1/0", added, updated)
	}
	want := svc.List("")
	got := other.List("")
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("round-trip mismatch: %+v vs %+v", got, want)
	}

	// Importing the same file again replaces, not duplicates.
	added, updated, err = other.ImportCSV(ctx, exported)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if added != 0 || updated != 1 {
		t.Fatalf("re-import counts = %d/%d, expected 0/1", added, updated)
	}

	last := pub.events[len(pub.events)-1]
	if last.Kind != amqp.EventTxnUpserted {
		t.Fatalf("unexpected trailing event on source service: %+v", last)
	}
}

func TestImportEmptyIsNoop(t *testing.T) {
	svc, pub := newTestService(t)
	added, updated, err := svc.ImportCSV(context.Background(), "")
	if err != nil || added != 0 || updated != 0 {
		t.Fatalf("empty import = %d/%d/%v", added, updated, err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("empty import must not publish, got %v", pub.events)
	}
}

func TestTheme(t *testing.T) {
	svc, _ := newTestService(t)
	if svc.Theme() != ledger.DefaultTheme {
		t.Fatalf("default theme = %q", svc.Theme())
	}
	if err := svc.SetTheme(context.Background(), "dark"); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if svc.Theme() != "dark" {
		t.Fatalf("theme = %q, expected dark", svc.Theme())
	}
}

func TestCloseClosesPublisher(t *testing.T) {
	svc, pub := newTestService(t)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Fatal("publisher not closed")
	}
}
