// Package core holds the ledger's domain model: transaction shape rules,
// free-text money parsing, and the aggregation that turns a month of
// transactions into render-ready numbers.
package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseMoney turns free-text user input into an amount. Every character
// except digits, comma, dot and minus is stripped first. When both comma
// and dot are present, commas are treated as thousands separators and
// removed; when only a comma is present it is taken as the decimal
// separator. An empty cleaned string parses as 0. Anything that still is
// not a number yields NaN — ParseMoney never fails, callers must check
// IsFinite before use.
//
// Note the deliberate quirk: "1.234,56" carries both separators, so the
// commas are stripped and the leftover "1.234.56" is NaN. Downstream tests
// pin this behavior.
func ParseMoney(raw string) float64 {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Contains(s, ","):
		s = strings.Replace(s, ",", ".", 1)
	}
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// Text limits per field. DefaultTextLimit applies when SanitizeText is
// called with a non-positive max.
const (
	DefaultTextLimit = 120
	NoteLimit        = 80
	CategoryLimit    = 40
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeText collapses whitespace runs to single spaces, trims the ends
// and truncates the result to max characters.
func SanitizeText(raw string, max int) string {
	if max <= 0 {
		max = DefaultTextLimit
	}
	s := strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
	runes := []rune(s)
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes)
}
