package core

import (
	"errors"
	"math"
	"regexp"
)

const (
	Income  TxnType = "income"
	Expense TxnType = "expense"
)

type (
	TxnType string

	// Transaction is a single ledger entry. Amount and Savings are plain
	// float64 values; callers are expected to check finiteness before
	// storing (see Validate).
	Transaction struct {
		ID       string  `json:"id"`
		Date     string  `json:"date"` // YYYY-MM-DD
		Note     string  `json:"note"`
		Amount   float64 `json:"amount"`
		Type     TxnType `json:"type"`
		Category string  `json:"category"`
		// Savings is the slice of an income set aside; zero for expenses.
		Savings float64 `json:"savings"`
	}
)

var (
	ErrMissingTransaction = errors.New("missing transaction")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidType        = errors.New("invalid type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidSavings     = errors.New("invalid savings")
	ErrCategoryRequired   = errors.New("category required")
	ErrNoteRequired       = errors.New("note required")
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate checks the transaction shape rule by rule and returns the first
// failing rule's error. Savings is only checked for income entries.
func (t *Transaction) Validate() error {
	if t == nil {
		return ErrMissingTransaction
	}
	if !datePattern.MatchString(t.Date) {
		return ErrInvalidDate
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if !IsFinite(t.Amount) {
		return ErrInvalidAmount
	}
	if t.Type == Income && !IsFinite(t.Savings) {
		return ErrInvalidSavings
	}
	if t.Category == "" {
		return ErrCategoryRequired
	}
	if t.Note == "" {
		return ErrNoteRequired
	}
	return nil
}

// Month returns the YYYY-MM prefix of the transaction date, or "" when the
// date is too short to carry one.
func (t *Transaction) Month() string {
	if len(t.Date) < 7 {
		return ""
	}
	return t.Date[:7]
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
