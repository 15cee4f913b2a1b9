// Package journal implements the trade journal service: validated writes
// with derived metrics, reads, statistics, setups and batch import.
package journal

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"trading-journal/internal/calc"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/importer"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/stats"
	"trading-journal/internal/store"
)

// Service coordinates the store with the shared trade arithmetic.
type Service struct {
	store  store.Store
	logger zerolog.Logger
}

// NewService creates a journal service over s.
func NewService(s store.Store, logger zerolog.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Preview computes the derived values for in without persisting anything.
// Inputs that are missing make the dependent values nil. Directions are
// read the same way as on create, so an unknown one yields nothing.
func Preview(in models.TradeInput) calc.Derived {
	followed := true
	if in.FollowedRules != nil {
		followed = *in.FollowedRules
	}
	dir, _ := models.ParseDirection(in.Direction)
	return calc.Derive(calc.Input{
		Direction:     dir,
		EntryPrice:    in.EntryPrice,
		StopLoss:      in.StopLoss,
		TakeProfit:    in.TakeProfit,
		PositionSize:  in.PositionSize,
		ExitPrice:     in.ExitPrice,
		SLMoved:       in.SLMoved,
		FollowedRules: followed,
	})
}

// Preview is the service form of the package-level Preview.
func (s *Service) Preview(in models.TradeInput) calc.Derived {
	return Preview(in)
}

// CreateTrade validates in, computes the derived fields and stores the trade.
func (s *Service) CreateTrade(ctx context.Context, in models.TradeInput) (*models.Trade, error) {
	t, err := buildTrade(in)
	if err != nil {
		return nil, err
	}
	calc.Apply(t)

	if _, err := s.store.InsertTrade(ctx, t); err != nil {
		return nil, apperrors.Wrap(err, "create trade")
	}
	logging.LogTrade(s.logger, "created", t.ID, t.Symbol, t.IsFlagged)
	return t, nil
}

// UpdateTrade replaces the editable fields of trade id with in and
// recomputes every derived field, including the review flag.
func (s *Service) UpdateTrade(ctx context.Context, id int64, in models.TradeInput) (*models.Trade, error) {
	existing, err := s.store.GetTrade(ctx, id)
	if err != nil {
		return nil, apperrors.Wrapf(err, "update trade %d", id)
	}

	t, err := buildTrade(in)
	if err != nil {
		return nil, err
	}
	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt
	calc.Apply(t)

	if err := s.store.UpdateTrade(ctx, t); err != nil {
		return nil, apperrors.Wrapf(err, "update trade %d", id)
	}
	logging.LogTrade(logging.WithTradeID(s.logger, id), "updated", id, t.Symbol, t.IsFlagged)
	return t, nil
}

// DeleteTrade removes trade id.
func (s *Service) DeleteTrade(ctx context.Context, id int64) error {
	if err := s.store.DeleteTrade(ctx, id); err != nil {
		return apperrors.Wrapf(err, "delete trade %d", id)
	}
	s.logger.Info().Int64("trade_id", id).Msg("Trade deleted")
	return nil
}

// GetTrade returns trade id.
func (s *Service) GetTrade(ctx context.Context, id int64) (*models.Trade, error) {
	t, err := s.store.GetTrade(ctx, id)
	if err != nil {
		return nil, apperrors.Wrapf(err, "get trade %d", id)
	}
	return t, nil
}

// ListTrades returns trades matching filter.
func (s *Service) ListTrades(ctx context.Context, filter store.TradeFilter) ([]models.Trade, error) {
	trades, err := s.store.ListTrades(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "list trades")
	}
	return trades, nil
}

// allTrades reads every trade in insertion order, the order the
// aggregator uses for first-seen tie-breaks.
func (s *Service) allTrades(ctx context.Context) ([]models.Trade, error) {
	return s.ListTrades(ctx, store.TradeFilter{SortBy: store.SortByID, Ascending: true})
}

// Stats computes the journal summary over every stored trade.
func (s *Service) Stats(ctx context.Context) (models.StatsSummary, error) {
	trades, err := s.allTrades(ctx)
	if err != nil {
		return models.StatsSummary{}, err
	}
	return stats.Compute(trades), nil
}

// Report bundles the summary with per-setup figures.
type Report struct {
	Summary  models.StatsSummary     `json:"summary"`
	Setups   []models.SetupBreakdown `json:"setups"`
	Flagged  int                     `json:"flagged"`
	OpenRisk float64                 `json:"open_risk"`
}

// SetupReport computes the summary and the per-setup breakdown.
func (s *Service) SetupReport(ctx context.Context) (*Report, error) {
	trades, err := s.allTrades(ctx)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Summary: stats.Compute(trades),
		Setups:  stats.Breakdown(trades),
		Flagged: stats.FlaggedCount(trades),
	}
	for i := range trades {
		if !trades[i].IsClosed() {
			r.OpenRisk += trades[i].RiskAmount
		}
	}
	return r, nil
}

// ListSetups returns every setup.
func (s *Service) ListSetups(ctx context.Context) ([]models.Setup, error) {
	setups, err := s.store.ListSetups(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "list setups")
	}
	return setups, nil
}

// AddSetup creates a setup. Names are unique.
func (s *Service) AddSetup(ctx context.Context, name string) (*models.Setup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", nil, "is required")
	}
	setup, err := s.store.AddSetup(ctx, name)
	if err != nil {
		return nil, apperrors.Wrapf(err, "add setup %q", name)
	}
	s.logger.Info().Str("setup", name).Msg("Setup added")
	return setup, nil
}

// NormalizeHTFTrends migrates legacy trend labels on stored trades.
func (s *Service) NormalizeHTFTrends(ctx context.Context) (int64, error) {
	n, err := s.store.NormalizeHTFTrends(ctx)
	if err != nil {
		return 0, apperrors.Wrap(err, "normalize htf trends")
	}
	s.logger.Info().Int64("rows", n).Msg("HTF trends normalized")
	return n, nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// RowStatus describes one import candidate.
type RowStatus struct {
	Index    int      `json:"index"`
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing"`
}

// Validation summarizes completeness across a batch of candidates.
type Validation struct {
	Rows            []RowStatus `json:"rows"`
	Complete        int         `json:"complete"`
	FirstIncomplete int         `json:"first_incomplete"`
}

// ValidateCandidates reports which candidates are ready to import.
func ValidateCandidates(cs []importer.Candidate) Validation {
	v := Validation{Rows: make([]RowStatus, 0, len(cs)), FirstIncomplete: importer.FirstIncomplete(cs, 0)}
	for i, c := range cs {
		missing := importer.MissingFields(c, importer.RequiredFields)
		if missing == nil {
			missing = []string{}
		}
		row := RowStatus{Index: i, Complete: len(missing) == 0, Missing: missing}
		if row.Complete {
			v.Complete++
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Imported []int64 `json:"imported"`
	Skipped  []int   `json:"skipped"`
	Failed   []error `json:"-"`
}

// ImportCandidates creates a trade for every complete candidate through the
// normal create path. Incomplete rows are skipped; rows that fail to convert
// or save are collected in Failed and do not stop the batch.
func (s *Service) ImportCandidates(ctx context.Context, cs []importer.Candidate) (*ImportResult, error) {
	res := &ImportResult{}
	log := logging.WithOperation(s.logger, "import")

	for i, c := range cs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !importer.IsComplete(c, importer.RequiredFields) {
			res.Skipped = append(res.Skipped, i)
			continue
		}
		in, err := importer.ToInput(c)
		if err == nil {
			var t *models.Trade
			if t, err = s.CreateTrade(ctx, in); err == nil {
				res.Imported = append(res.Imported, t.ID)
				continue
			}
		}
		log.Warn().Err(err).Int("row", i).Msg("Import row failed")
		res.Failed = append(res.Failed, apperrors.NewRowError(i, err))
	}

	log.Info().
		Int("imported", len(res.Imported)).
		Int("skipped", len(res.Skipped)).
		Int("failed", len(res.Failed)).
		Msg("Import finished")
	return res, nil
}
