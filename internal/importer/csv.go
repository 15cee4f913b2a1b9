package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const pnlHint = "_pnl_hint"

var headerAliases = map[string]string{
	"symbol":     "symbol",
	"ticker":     "symbol",
	"instrument": "symbol",

	"side":      "direction",
	"direction": "direction",
	"type":      "direction",

	"date":      "datetime",
	"time":      "datetime",
	"datetime":  "datetime",
	"timestamp": "datetime",

	"price":       "entry_price",
	"entry":       "entry_price",
	"entry price": "entry_price",
	"avg price":   "entry_price",
	"fill price":  "entry_price",

	"qty":      "position_size",
	"quantity": "position_size",
	"size":     "position_size",
	"amount":   "position_size",
	"volume":   "position_size",

	"pnl":            pnlHint,
	"profit":         pnlHint,
	"loss":           pnlHint,
	"realized pnl":   pnlHint,
	"realalized pnl": pnlHint,
}

// canonicalFields are accepted verbatim so exported files import cleanly.
var canonicalFields = map[string]bool{
	"timeframe":           true,
	"entry_price":         true,
	"stop_loss":           true,
	"take_profit":         true,
	"risk_amount":         true,
	"position_size":       true,
	"setup_name":          true,
	"htf_trend":           true,
	"entry_reason":        true,
	"confirmations":       true,
	"sl_moved":            true,
	"manual_interference": true,
	"exit_price":          true,
	"followed_rules":      true,
	"biggest_mistake":     true,
	"would_take_again":    true,
}

// numericFields are stripped of currency symbols and separators on import.
var numericFields = map[string]bool{
	"entry_price":   true,
	"position_size": true,
	pnlHint:         true,
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// MapHeader maps a CSV column header to a trade field name. It returns ""
// for columns that are not imported.
func MapHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if key, ok := headerAliases[h]; ok {
		return key
	}
	if canonicalFields[h] {
		return h
	}
	return ""
}

// CleanNumber strips everything but digits, '.' and '-' from s and parses
// the rest. ok is false when nothing parseable remains.
func CleanNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(s, ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FromRecords maps raw CSV records onto candidates using header. When two
// columns map to the same field the rightmost wins. Unparseable numeric
// cells are left missing.
func FromRecords(header []string, records [][]string) []Candidate {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = MapHeader(h)
	}

	out := make([]Candidate, 0, len(records))
	for _, rec := range records {
		c := Candidate{}
		for i, key := range keys {
			if key == "" || i >= len(rec) {
				continue
			}
			if numericFields[key] {
				if v, ok := CleanNumber(rec[i]); ok {
					c[key] = v
				} else {
					delete(c, key)
				}
				continue
			}
			c[key] = rec[i]
		}
		delete(c, pnlHint)

		if _, ok := c["confirmations"]; !ok {
			c["confirmations"] = []string{}
		}
		if _, ok := c["sl_moved"]; !ok {
			c["sl_moved"] = false
		}
		if _, ok := c["manual_interference"]; !ok {
			c["manual_interference"] = false
		}
		out = append(out, c)
	}
	return out
}

// ReadCSV reads a header row followed by records from r. Blank lines are
// skipped and rows may have fewer columns than the header.
func ReadCSV(r io.Reader) ([]Candidate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if blank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return FromRecords(header, records), nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
