package http

import (
	"encoding/json"

	"tally/internal/core"
)

// money is an amount field that accepts either a JSON number or a
// free-text string like "1,234.56", which goes through core.ParseMoney.
// An unparsable string becomes the NaN sentinel and fails the shape
// check (or the budget clamp) downstream; callers never see an error
// here beyond malformed JSON itself.
type money float64

func (m *money) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = money(core.ParseMoney(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = money(n)
	return nil
}

type txnRequest struct {
	ID       string       `json:"id"`
	Date     string       `json:"date"`
	Note     string       `json:"note"`
	Amount   money        `json:"amount"`
	Type     core.TxnType `json:"type"`
	Category string       `json:"category"`
	Savings  money        `json:"savings"`
}

func (r txnRequest) transaction() core.Transaction {
	return core.Transaction{
		ID:       r.ID,
		Date:     r.Date,
		Note:     r.Note,
		Amount:   float64(r.Amount),
		Type:     r.Type,
		Category: r.Category,
		Savings:  float64(r.Savings),
	}
}

type budgetRequest struct {
	Month  string `json:"month"`
	Amount money  `json:"amount"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}
