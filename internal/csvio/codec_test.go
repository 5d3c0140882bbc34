package csvio

import (
	"strings"
	"testing"

	"tally/internal/core"
)

func stubIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('0'+n))
	}
}

func TestMarshalQuotesOnlyWhenNeeded(t *testing.T) {
	txns := []core.Transaction{
		{ID: "a1", Date: "2024-03-01", Note: "coffee", Amount: 2.5, Type: core.Expense, Category: "food"},
		{ID: "a2", Date: "2024-03-02", Note: `say "hi", ok`, Amount: 10, Type: core.Expense, Category: "misc"},
	}
	got := Marshal(txns)
	want := strings.Join([]string{
		"id,date,note,type,category,amount,savings",
		"a1,2024-03-01,coffee,expense,food,2.5,0",
		`a2,2024-03-02,"say ""hi"", ok",expense,misc,10,0`,
	}, "\n")
	if got != want {
		t.Fatalf("Marshal =\n%s\nexpected\n%s", got, want)
	}
}

func TestMarshalKeepsStoreOrder(t *testing.T) {
	txns := []core.Transaction{
		{ID: "z", Date: "2024-03-09", Note: "later", Amount: 1, Type: core.Expense, Category: "c"},
		{ID: "a", Date: "2024-03-01", Note: "earlier", Amount: 1, Type: core.Expense, Category: "c"},
	}
	lines := strings.Split(Marshal(txns), "\n")
	if !strings.HasPrefix(lines[1], "z,") || !strings.HasPrefix(lines[2], "a,") {
		t.Fatalf("export must not re-sort rows:\n%s", strings.Join(lines, "\n"))
	}
}

func TestMarshalEmpty(t *testing.T) {
	if got := Marshal(nil); got != "id,date,note,type,category,amount,savings" {
		t.Fatalf("Marshal(nil) = %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	txns := []core.Transaction{
		{ID: "a1", Date: "2024-03-01", Note: "salary, march", Amount: 2000, Type: core.Income, Category: "General", Savings: 300},
		{ID: "a2", Date: "2024-03-02", Note: `quoted "note"`, Amount: 12.75, Type: core.Expense, Category: "food"},
	}
	got := Unmarshal(Marshal(txns), stubIDs("x"))
	if len(got) != len(txns) {
		t.Fatalf("round-trip returned %d records, expected %d", len(got), len(txns))
	}
	for i := range txns {
		if got[i] != txns[i] {
			t.Fatalf("round-trip[%d] = %+v, expected %+v", i, got[i], txns[i])
		}
	}
}

func TestUnmarshalHeaderFlexibility(t *testing.T) {
	// Shuffled columns, mixed case, padded names.
	text := strings.Join([]string{
		"Amount , TYPE ,id,Date,note,category,savings",
		"12.5,expense,a1,2024-03-01,lunch,food,0",
	}, "\n")
	got := Unmarshal(text, stubIDs("x"))
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %v", got)
	}
	want := core.Transaction{ID: "a1", Date: "2024-03-01", Note: "lunch", Amount: 12.5, Type: core.Expense, Category: "food"}
	if got[0] != want {
		t.Fatalf("Unmarshal = %+v, expected %+v", got[0], want)
	}
}

func TestUnmarshalLeniency(t *testing.T) {
	text := strings.Join([]string{
		"id,date,note,type,category,amount,savings",
		// Missing id, overlong date, unknown type, empty category, junk amount.
		",2024-03-15T10:00:00,  padded note  ,transfer,,abc,xyz",
		// Short row: trailing columns absent entirely.
		"a2,2024-03-16,ok",
	}, "\n")
	got := Unmarshal(text, stubIDs("gen"))
	if len(got) != 2 {
		t.Fatalf("leniency must keep every row, got %v", got)
	}

	first := got[0]
	if first.ID != "gen1" {
		t.Fatalf("missing id not generated: %+v", first)
	}
	if first.Date != "2024-03-15" {
		t.Fatalf("date not truncated to 10 chars: %q", first.Date)
	}
	if first.Note != "padded note" {
		t.Fatalf("note not trimmed: %q", first.Note)
	}
	if first.Type != core.Expense {
		t.Fatalf("unknown type must coerce to expense: %q", first.Type)
	}
	if first.Category != "General" {
		t.Fatalf("empty category must default to General: %q", first.Category)
	}
	if first.Amount != 0 || first.Savings != 0 {
		t.Fatalf("junk numbers must coerce to 0: %+v", first)
	}

	second := got[1]
	if second.ID != "a2" || second.Note != "ok" || second.Amount != 0 || second.Category != "General" {
		t.Fatalf("short row not padded with defaults: %+v", second)
	}
}

func TestUnmarshalSkipsBlankLinesAndCR(t *testing.T) {
	text := "id,date,note,type,category,amount,savings\r\n\r\na1,2024-03-01,x,income,General,5,1\r\n"
	got := Unmarshal(text, stubIDs("x"))
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %v", got)
	}
	if got[0].Type != core.Income || got[0].Amount != 5 || got[0].Savings != 1 {
		t.Fatalf("Unmarshal = %+v", got[0])
	}
}

func TestUnmarshalEmptyInput(t *testing.T) {
	if got := Unmarshal("", stubIDs("x")); got != nil {
		t.Fatalf("empty input should yield nothing, got %v", got)
	}
	if got := Unmarshal("\n\n", stubIDs("x")); got != nil {
		t.Fatalf("blank input should yield nothing, got %v", got)
	}
}

func TestParseLineAutomaton(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{`"a,b",c`, []string{"a,b", "c"}},
		{`"he said ""hi""",x`, []string{`he said "hi"`, "x"}},
		{`pre"mid"post,y`, []string{"premidpost", "y"}}, // quote mid-field toggles mode
		{"", []string{""}},
		{",", []string{"", ""}},
		{`"unterminated,still one field`, []string{"unterminated,still one field"}},
	}
	for _, tc := range cases {
		got := parseLine(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("parseLine(%q) = %v, expected %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("parseLine(%q) = %v, expected %v", tc.in, got, tc.want)
			}
		}
	}
}
