// Package importer turns loosely structured rows into trade inputs and
// supports fixing incomplete rows one at a time or in bulk.
package importer

import (
	"math"
	"strings"
)

// Candidate is one imported row keyed by trade field name. Values are
// usually strings, with float64 for cleaned numeric columns.
type Candidate map[string]any

// Clone returns a shallow copy of c.
func (c Candidate) Clone() Candidate {
	out := make(Candidate, len(c))
	for k, v := range c {
		if s, ok := v.([]string); ok {
			v = append([]string(nil), s...)
		}
		out[k] = v
	}
	return out
}

// RequiredFields lists the fields a row must carry before it can be saved.
var RequiredFields = []string{
	"symbol",
	"timeframe",
	"direction",
	"datetime",
	"entry_price",
	"position_size",
	"stop_loss",
	"take_profit",
	"risk_amount",
	"setup_name",
	"htf_trend",
	"entry_reason",
}

// IsMissing reports whether v counts as absent: nil, an empty string or a
// NaN. Numeric zero is a value.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	case *float64:
		return x == nil || math.IsNaN(*x)
	}
	return false
}

// MissingFields returns the fields of fields that c lacks, in order.
func MissingFields(c Candidate, fields []string) []string {
	var missing []string
	for _, f := range fields {
		if IsMissing(c[f]) {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsComplete reports whether c carries every field in fields.
func IsComplete(c Candidate, fields []string) bool {
	for _, f := range fields {
		if IsMissing(c[f]) {
			return false
		}
	}
	return true
}

// FirstIncomplete returns the index of the first candidate at or after from
// that is not complete against RequiredFields, or -1.
func FirstIncomplete(cs []Candidate, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(cs); i++ {
		if !IsComplete(cs[i], RequiredFields) {
			return i
		}
	}
	return -1
}

// FillMissing sets field to value on every candidate at or after from where
// it is missing, and returns how many candidates changed.
func FillMissing(cs []Candidate, from int, field string, value any) int {
	if IsMissing(value) {
		return 0
	}
	if from < 0 {
		from = 0
	}
	n := 0
	for i := from; i < len(cs); i++ {
		if IsMissing(cs[i][field]) {
			cs[i][field] = value
			n++
		}
	}
	return n
}
