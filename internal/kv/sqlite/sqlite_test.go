package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadMissingKey(t *testing.T) {
	s := openTestStore(t)
	data, err := s.Load(context.Background(), "budgets")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for a never-written key, got %q", data)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := []byte(`{"2024-03":500}`)
	if err := s.Save(ctx, "budgets", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "budgets")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("Load = %q, expected %q", got, want)
	}
}

func TestSaveUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, "theme", []byte(`"dark"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "theme", []byte(`"light"`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "theme")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `"light"` {
		t.Fatalf("Load = %q, expected %q", got, `"light"`)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.db")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Save(ctx, "transactions", []byte(`[]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Load(ctx, "transactions")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `[]` {
		t.Fatalf("Load after reopen = %q, expected %q", got, `[]`)
	}
}
