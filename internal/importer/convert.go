package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// ToInput converts a candidate into a trade input. Semantic validation is
// left to the journal service; only values that cannot be read at all are
// rejected here.
func ToInput(c Candidate) (models.TradeInput, error) {
	var in models.TradeInput
	var err error

	in.Symbol = str(c["symbol"])
	in.Timeframe = str(c["timeframe"])
	in.Direction = str(c["direction"])
	if dir, ok := models.ParseDirection(in.Direction); ok {
		in.Direction = string(dir)
	}
	in.DateTime = str(c["datetime"])
	in.SetupName = str(c["setup_name"])
	in.HTFTrend = str(c["htf_trend"])
	in.EntryReason = str(c["entry_reason"])
	in.BiggestMistake = str(c["biggest_mistake"])

	numbers := []struct {
		field string
		dst   **float64
	}{
		{"entry_price", &in.EntryPrice},
		{"stop_loss", &in.StopLoss},
		{"take_profit", &in.TakeProfit},
		{"risk_amount", &in.RiskAmount},
		{"position_size", &in.PositionSize},
		{"exit_price", &in.ExitPrice},
	}
	for _, n := range numbers {
		if *n.dst, err = number(n.field, c[n.field]); err != nil {
			return in, err
		}
	}

	if in.SLMoved, err = flag("sl_moved", c["sl_moved"]); err != nil {
		return in, err
	}
	if in.ManualInterference, err = flag("manual_interference", c["manual_interference"]); err != nil {
		return in, err
	}
	if in.FollowedRules, err = optionalFlag("followed_rules", c["followed_rules"]); err != nil {
		return in, err
	}
	if in.WouldTakeAgain, err = optionalFlag("would_take_again", c["would_take_again"]); err != nil {
		return in, err
	}

	in.Confirmations, err = tags(c["confirmations"])
	if err != nil {
		return in, err
	}
	return in, nil
}

func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func number(field string, v any) (*float64, error) {
	if IsMissing(v) {
		return nil, nil
	}
	switch x := v.(type) {
	case float64:
		return &x, nil
	case *float64:
		return x, nil
	case int:
		f := float64(x)
		return &f, nil
	case string:
		f, ok := CleanNumber(x)
		if !ok {
			return nil, apperrors.NewValidationError(field, x, "not a number")
		}
		return &f, nil
	}
	return nil, apperrors.NewValidationError(field, v, "not a number")
}

func flag(field string, v any) (bool, error) {
	b, err := optionalFlag(field, v)
	if err != nil || b == nil {
		return false, err
	}
	return *b, nil
}

func optionalFlag(field string, v any) (*bool, error) {
	if IsMissing(v) {
		return nil, nil
	}
	switch x := v.(type) {
	case bool:
		return &x, nil
	case float64:
		b := x != 0
		return &b, nil
	case int:
		b := x != 0
		return &b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "1":
			return models.Bool(true), nil
		case "false", "no", "n", "0":
			return models.Bool(false), nil
		}
	}
	return nil, apperrors.NewValidationError(field, v, "not a boolean")
}

// tags reads confirmations given as a list, a JSON array or a string
// separated by '|', ';' or ','.
func tags(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return x, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, t := range x {
			out = append(out, str(t))
		}
		return out, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return []string{}, nil
		}
		if strings.HasPrefix(s, "[") {
			var out []string
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, apperrors.NewValidationError("confirmations", s, "malformed list")
			}
			return out, nil
		}
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ';' || r == ',' })
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	}
	return nil, apperrors.NewValidationError("confirmations", v, "unsupported value")
}
