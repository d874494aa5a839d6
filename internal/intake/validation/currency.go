package validation

import (
	"errors"
	"strconv"
	"strings"
)

var ErrEmptyAmount = errors.New("amount is empty")

// Digits drops every non-digit character.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonicalDigits is Digits without leading zeros ("0" for an all-zero input).
func canonicalDigits(s string) string {
	d := Digits(s)
	if d == "" {
		return ""
	}
	d = strings.TrimLeft(d, "0")
	if d == "" {
		return "0"
	}
	return d
}

// FormatCurrency renders the digits of s with thousands separators
// ("150000" -> "150,000"). It is idempotent on its own output.
func FormatCurrency(s string) string {
	d := canonicalDigits(s)
	if d == "" {
		return ""
	}

	lead := len(d) % 3
	if lead == 0 {
		lead = 3
	}
	var b strings.Builder
	b.Grow(len(d) + len(d)/3)
	b.WriteString(d[:lead])
	for i := lead; i < len(d); i += 3 {
		b.WriteByte(',')
		b.WriteString(d[i : i+3])
	}
	return b.String()
}

// ParseCurrency strips non-digits and parses the remainder.
func ParseCurrency(s string) (int64, error) {
	d := Digits(s)
	if d == "" {
		return 0, ErrEmptyAmount
	}
	return strconv.ParseInt(d, 10, 64)
}

// IsPositiveAmount reports whether s is non-empty and its digits are > 0.
// It does not overflow on very long inputs.
func IsPositiveAmount(s string) bool {
	if s == "" {
		return false
	}
	d := canonicalDigits(s)
	return d != "" && d != "0"
}

// CompareAmounts compares the numeric values of two amount strings.
func CompareAmounts(a, b string) int {
	da, db := canonicalDigits(a), canonicalDigits(b)
	if da == "" {
		da = "0"
	}
	if db == "" {
		db = "0"
	}
	if len(da) != len(db) {
		if len(da) < len(db) {
			return -1
		}
		return 1
	}
	return strings.Compare(da, db)
}
