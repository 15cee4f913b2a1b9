// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// Placeholder is shown for values that are not computable yet.
const Placeholder = "-"

// FormatCurrency formats an amount in rupees with Indian digit grouping
// (lakhs, crores) and two decimals.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	formatted := formatIndianNumber(parts[0])

	result := "₹" + formatted + "." + parts[1]
	if negative && str != "0.00" {
		result = "-" + result
	}
	return result
}

// FormatCurrencyPtr is FormatCurrency for an optional amount.
func FormatCurrencyPtr(amount *float64) string {
	if amount == nil {
		return Placeholder
	}
	return FormatCurrency(*amount)
}

// formatIndianNumber formats an integer string in Indian numbering system.
func formatIndianNumber(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	// First group of 3 from right
	result := s[n-3:]
	s = s[:n-3]

	// Then groups of 2
	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// FormatR formats an R-multiple with an explicit sign, e.g. "+1.60R".
func FormatR(r *float64) string {
	if r == nil {
		return Placeholder
	}
	if *r > 0 {
		return fmt.Sprintf("+%.2fR", *r)
	}
	return fmt.Sprintf("%.2fR", *r)
}

// FormatRiskReward formats a planned reward-to-risk ratio as "1:2.00".
func FormatRiskReward(rr *float64) string {
	if rr == nil {
		return Placeholder
	}
	return fmt.Sprintf("1:%.2f", *rr)
}

// FormatPercentage formats a percentage with two decimals.
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

// TruncateString shortens s to maxLen runes, ending with "...".
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
