package core

import (
	"math"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		nan bool
	}{
		{"12.34", 12.34, false},
		{"12,5", 12.5, false},
		{"1,234.56", 1234.56, false},
		{"$1,234.56", 1234.56, false},
		{" 2.50 ", 2.5, false},
		{"-3.5", -3.5, false},
		{"0", 0, false},
		{"", 0, false},
		{"abc", 0, false}, // letters stripped, empty parses as zero
		{"1e3", 13, false},
		{"12.", 12, false},
		{"5,", 5, false},
		{"1.2.3", 0, true},
		{"1,2,3", 0, true},
		{"--1", 0, true},
		{"-", 0, true},
		// Both separators present: commas stripped, two dots remain.
		{"1.234,56", 0, true},
	}
	for _, tc := range cases {
		got := ParseMoney(tc.in)
		if tc.nan {
			if !math.IsNaN(got) {
				t.Fatalf("ParseMoney(%q) = %v, expected NaN", tc.in, got)
			}
			continue
		}
		if got != tc.out {
			t.Fatalf("ParseMoney(%q) = %v, expected %v", tc.in, got, tc.out)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		in  string
		max int
		out string
	}{
		{"  hello   world ", 0, "hello world"},
		{"a\t\n b", 0, "a b"},
		{"abcdef", 3, "abc"},
		{"   ", 0, ""},
		{"éèêé", 2, "éè"}, // rune-wise truncation
	}
	for _, tc := range cases {
		if got := SanitizeText(tc.in, tc.max); got != tc.out {
			t.Fatalf("SanitizeText(%q, %d) = %q, expected %q", tc.in, tc.max, got, tc.out)
		}
	}
}
