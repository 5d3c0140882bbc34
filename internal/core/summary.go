package core

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// CategoryTotal is an expense total aggregated by category name.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Summary holds the month totals derived from a transaction set.
type Summary struct {
	Income     float64         `json:"income"`
	Expenses   float64         `json:"expenses"`
	Savings    float64         `json:"savings"`
	Balance    float64         `json:"balance"`
	Categories []CategoryTotal `json:"categories"`
}

// Summarize computes income/expense/savings totals and the expense-only
// category breakdown, ordered lexicographically by category name. Income
// entries never contribute to the breakdown regardless of their category.
func Summarize(txns []Transaction) Summary {
	var s Summary
	byCat := map[string]float64{}
	for _, t := range txns {
		if t.Type == Income {
			s.Income += t.Amount
			s.Savings += t.Savings
			continue
		}
		s.Expenses += t.Amount
		byCat[t.Category] += t.Amount
	}
	s.Balance = s.Income - s.Expenses

	names := make([]string, 0, len(byCat))
	for name := range byCat {
		names = append(names, name)
	}
	sort.Strings(names)
	s.Categories = make([]CategoryTotal, 0, len(names))
	for _, name := range names {
		s.Categories = append(s.Categories, CategoryTotal{Category: name, Total: byCat[name]})
	}
	return s
}

type BudgetStatus string

const (
	// BudgetNone means no budget is set for the month; consumers show a
	// "no budget set" sentinel instead of a percentage.
	BudgetNone BudgetStatus = "none"
	BudgetOK   BudgetStatus = "ok"
	BudgetNear BudgetStatus = "near"
	BudgetOver BudgetStatus = "over"
)

// BudgetProgress reports how far the month's expenses have eaten into the
// budget. Percent is capped at 100.
type BudgetProgress struct {
	Budget  float64      `json:"budget"`
	Spent   float64      `json:"spent"`
	Percent int          `json:"percent"`
	Status  BudgetStatus `json:"status"`
}

// ProgressAgainst compares expenses against a monthly budget. A zero or
// unset budget yields BudgetNone with percent 0; "near" starts above 80%
// of the budget, "over" above the budget itself.
func ProgressAgainst(budget, expenses float64) BudgetProgress {
	p := BudgetProgress{Budget: budget, Spent: expenses, Status: BudgetNone}
	if budget <= 0 {
		return p
	}
	pct := int(math.Round(expenses / budget * 100))
	if pct > 100 {
		pct = 100
	}
	p.Percent = pct
	switch {
	case expenses > budget:
		p.Status = BudgetOver
	case expenses > 0.8*budget:
		p.Status = BudgetNear
	default:
		p.Status = BudgetOK
	}
	return p
}

// Trend is the daily chart series for one month. Expense and Savings have
// one slot per calendar day, index 0 = day 1. YMax is the nice axis upper
// bound shared by both series and Ticks are the five axis label values
// [0, .25, .5, .75, 1]×YMax. The engine only produces numbers; drawing is
// the consumer's job.
type Trend struct {
	Month   string     `json:"month"`
	Days    int        `json:"days"`
	Expense []float64  `json:"expense"`
	Savings []float64  `json:"savings"`
	YMax    float64    `json:"y_max"`
	Ticks   [5]float64 `json:"ticks"`
}

// DaysInMonth returns the number of calendar days in the given month,
// leap years included, via the "day zero of the next month" trick.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SplitMonth parses a YYYY-MM month key.
func SplitMonth(month string) (year int, m int, err error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return t.Year(), int(t.Month()), nil
}

// BuildTrend buckets the month's expense amounts and income savings by
// day of month. The day number is read from the last two characters of
// the date string; entries whose day falls outside the month are skipped
// rather than treated as errors.
func BuildTrend(txns []Transaction, month string) (Trend, error) {
	year, m, err := SplitMonth(month)
	if err != nil {
		return Trend{}, err
	}
	days := DaysInMonth(year, m)
	tr := Trend{
		Month:   month,
		Days:    days,
		Expense: make([]float64, days),
		Savings: make([]float64, days),
	}
	for _, t := range txns {
		if len(t.Date) < 2 {
			continue
		}
		d, err := strconv.Atoi(t.Date[len(t.Date)-2:])
		if err != nil || d < 1 || d > days {
			continue
		}
		switch t.Type {
		case Expense:
			tr.Expense[d-1] += t.Amount
		case Income:
			tr.Savings[d-1] += t.Savings
		}
	}
	var maxVal float64
	for _, v := range tr.Expense {
		maxVal = math.Max(maxVal, v)
	}
	for _, v := range tr.Savings {
		maxVal = math.Max(maxVal, v)
	}
	tr.YMax = NiceCeil(maxVal)
	for i := range tr.Ticks {
		tr.Ticks[i] = tr.YMax * float64(i) / 4
	}
	return tr, nil
}
