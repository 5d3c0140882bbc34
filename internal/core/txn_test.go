package core

import (
	"errors"
	"math"
	"testing"
)

func validTxn() Transaction {
	return Transaction{
		ID:       "t1",
		Date:     "2024-03-15",
		Note:     "groceries",
		Amount:   42.5,
		Type:     Expense,
		Category: "food",
	}
}

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"valid expense", func(tx *Transaction) {}, nil},
		{"valid income", func(tx *Transaction) {
			tx.Type = Income
			tx.Savings = 10
		}, nil},
		{"bad date", func(tx *Transaction) { tx.Date = "15-03-2024" }, ErrInvalidDate},
		{"short date", func(tx *Transaction) { tx.Date = "2024-03" }, ErrInvalidDate},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"nan amount", func(tx *Transaction) { tx.Amount = math.NaN() }, ErrInvalidAmount},
		{"inf amount", func(tx *Transaction) { tx.Amount = math.Inf(1) }, ErrInvalidAmount},
		{"nan savings on income", func(tx *Transaction) {
			tx.Type = Income
			tx.Savings = math.NaN()
		}, ErrInvalidSavings},
		{"nan savings ignored on expense", func(tx *Transaction) {
			tx.Savings = math.NaN()
		}, nil},
		{"missing category", func(tx *Transaction) { tx.Category = "" }, ErrCategoryRequired},
		{"missing note", func(tx *Transaction) { tx.Note = "" }, ErrNoteRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTxn()
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, expected %v", err, tc.want)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	var tx *Transaction
	if err := tx.Validate(); !errors.Is(err, ErrMissingTransaction) {
		t.Fatalf("Validate() on nil = %v, expected %v", err, ErrMissingTransaction)
	}
}

func TestValidateDateBeatsType(t *testing.T) {
	tx := validTxn()
	tx.Date = "bad"
	tx.Type = "bad"
	if err := tx.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected the date check to fire first, got %v", err)
	}
}

func TestMonth(t *testing.T) {
	tx := Transaction{Date: "2024-03-15"}
	if got := tx.Month(); got != "2024-03" {
		t.Fatalf("Month() = %q, expected %q", got, "2024-03")
	}
	tx.Date = "2024"
	if got := tx.Month(); got != "" {
		t.Fatalf("Month() on short date = %q, expected empty", got)
	}
}
