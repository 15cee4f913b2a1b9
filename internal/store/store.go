// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"fmt"
	"strings"

	"trading-journal/internal/models"
)

// TradeStore persists journaled trades.
type TradeStore interface {
	// InsertTrade stores t and returns the assigned id. CreatedAt is set
	// by the store when zero.
	InsertTrade(ctx context.Context, t *models.Trade) (int64, error)
	GetTrade(ctx context.Context, id int64) (*models.Trade, error)
	ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	// UpdateTrade replaces every column except id and created_at.
	UpdateTrade(ctx context.Context, t *models.Trade) error
	DeleteTrade(ctx context.Context, id int64) error
	// NormalizeHTFTrends rewrites legacy trend labels to their canonical
	// values and returns the number of rows changed.
	NormalizeHTFTrends(ctx context.Context) (int64, error)
}

// SetupStore persists setup names.
type SetupStore interface {
	ListSetups(ctx context.Context) ([]models.Setup, error)
	AddSetup(ctx context.Context, name string) (*models.Setup, error)
	// SeedSetups inserts names only when no setup exists yet.
	SeedSetups(ctx context.Context, names []string) error
}

// Store is the full storage collaborator used by the journal service.
type Store interface {
	TradeStore
	SetupStore
	Ping(ctx context.Context) error
	Close() error
}

// DefaultSetups are seeded into an empty setups table.
var DefaultSetups = []string{
	"Breakout",
	"Pullback",
	"Reversal",
	"Momentum",
	"Range Bound",
	"Trend Following",
}

// SortField is a column trades can be ordered by.
type SortField string

const (
	SortByDateTime  SortField = "datetime"
	SortByRMultiple SortField = "r_multiple"
	SortBySetup     SortField = "setup_name"
	SortByOutcome   SortField = "outcome"
	SortByID        SortField = "id"
)

// ParseSortField validates a client-supplied sort column.
// An empty string selects SortByDateTime.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.TrimSpace(s)); f {
	case "":
		return SortByDateTime, nil
	case SortByDateTime, SortByRMultiple, SortBySetup, SortByOutcome, SortByID:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported sort field %q", s)
	}
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	SortBy      SortField
	Ascending   bool
	FlaggedOnly bool
	Symbol      string
	SetupName   string
	Limit       int
}

// orderClause renders the ORDER BY expression for f. Sort columns come
// from a fixed set, so the result is safe to splice into SQL.
func (f TradeFilter) orderClause() string {
	field := f.SortBy
	if field == "" {
		field = SortByDateTime
	}
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	switch field {
	case SortByID:
		return "id " + dir
	case SortByRMultiple, SortByOutcome:
		// Open trades have no result; both engines list them last.
		return fmt.Sprintf("%s %s NULLS LAST, id %s", field, dir, dir)
	}
	return fmt.Sprintf("%s %s, id %s", field, dir, dir)
}
