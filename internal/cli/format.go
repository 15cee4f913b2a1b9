package cli

import (
	"strings"
	"time"

	"trading-journal/internal/models"
	"trading-journal/pkg/utils"
)

const defaultDateFormat = "02-Jan-2006 15:04"

// FormatDateTime formats t with layout, falling back to the default layout.
func FormatDateTime(t time.Time, layout string) string {
	if t.IsZero() {
		return utils.Placeholder
	}
	if layout == "" {
		layout = defaultDateFormat
	}
	return t.Format(layout)
}

// FormatConfirmations joins confirmations for display.
func FormatConfirmations(cs []models.Confirmation) string {
	if len(cs) == 0 {
		return utils.Placeholder
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// FormatPrice formats a price without a currency symbol.
func FormatPrice(p *float64) string {
	return strings.Replace(utils.FormatCurrencyPtr(p), "₹", "", 1)
}

// orDash returns s or the placeholder when s is blank.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return utils.Placeholder
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
