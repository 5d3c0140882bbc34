package postgres

import (
	"context"
	"os"
	"testing"
)

// Needs a reachable database; set TALLY_TEST_POSTGRES_DSN to run.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TALLY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TALLY_TEST_POSTGRES_DSN not set")
	}
	s, err := New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
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

func TestLoadMissingKey(t *testing.T) {
	s := openTestStore(t)
	data, err := s.Load(context.Background(), "never-written")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for a never-written key, got %q", data)
	}
}
