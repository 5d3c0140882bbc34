// Package csvio is the ledger's CSV dialect. Export quotes only the
// fields that need it; import is deliberately lenient, coercing every
// row into a valid-shaped record instead of rejecting it.
package csvio

import (
	"strconv"
	"strings"

	"tally/internal/core"
)

// Filename is the suggested name for exported ledgers.
const Filename = "transactions.csv"

var header = []string{"id", "date", "note", "type", "category", "amount", "savings"}

// Marshal renders the transactions in the order given, one row each
// after the header. A field containing a comma, double quote or newline
// is wrapped in quotes with internal quotes doubled; everything else is
// written bare, numbers included.
func Marshal(txns []core.Transaction) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	for _, t := range txns {
		fields := [...]string{
			t.ID, t.Date, t.Note, string(t.Type), t.Category,
			formatNumber(t.Amount), formatNumber(t.Savings),
		}
		b.WriteByte('\n')
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escape(f))
		}
	}
	return b.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// Unmarshal parses CSV text into records, calling newID for rows that
// carry no id. Line 0 is the header; column names are matched
// case-insensitively and in any order. Rows are never rejected: missing
// or malformed fields fall back to defaults (date cut to 10 chars, type
// forced to expense unless exactly "income", category "General" when
// empty, unparsable amounts read as 0). Carriage returns are stripped
// and blank lines skipped, so quoted fields cannot span lines.
func Unmarshal(text string, newID func() string) []core.Transaction {
	clean := strings.ReplaceAll(text, "\r", "")
	var lines []string
	for _, line := range strings.Split(clean, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	idx := map[string]int{}
	for i, h := range strings.Split(lines[0], ",") {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var out []core.Transaction
	for _, line := range lines[1:] {
		cols := parseLine(line)
		get := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(cols) {
				return ""
			}
			return cols[i]
		}

		id := get("id")
		if id == "" {
			id = newID()
		}
		date := get("date")
		if len(date) > 10 {
			date = date[:10]
		}
		typ := core.Expense
		if get("type") == "income" {
			typ = core.Income
		}
		category := strings.TrimSpace(get("category"))
		if category == "" {
			category = "General"
		}

		out = append(out, core.Transaction{
			ID:       id,
			Date:     date,
			Note:     strings.TrimSpace(get("note")),
			Type:     typ,
			Category: category,
			Amount:   coerceNumber(get("amount")),
			Savings:  coerceNumber(get("savings")),
		})
	}
	return out
}

func coerceNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseLine walks the line with a two-state automaton. Outside quotes a
// comma ends the field and a quote enters quoted mode; inside quotes a
// doubled quote is a literal quote and a lone quote leaves quoted mode.
// Delimiters are ASCII so byte-wise scanning is safe for UTF-8 content.
func parseLine(line string) []string {
	var fields []string
	var cur strings.Builder
	quoted := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if quoted {
			if ch == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					cur.WriteByte('"')
					i++
					continue
				}
				quoted = false
				continue
			}
			cur.WriteByte(ch)
			continue
		}
		switch ch {
		case '"':
			quoted = true
		case ',':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, cur.String())
	return fields
}
