package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/journal"
	"trading-journal/internal/models"
	"trading-journal/internal/store"
	"trading-journal/pkg/utils"
)

func newTradeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Record and review trades",
		Long:  "Add, list, show, update, delete and preview journaled trades.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeUpdateCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))
	cmd.AddCommand(newTradePreviewCmd())

	return cmd
}

// tradeFlags binds the editable trade fields to command flags. Only flags
// the user actually set are copied onto an input, so update can start from
// the stored trade.
type tradeFlags struct {
	symbol, timeframe, direction, datetime string
	entry, stop, target, risk, size, exit  float64
	setup, htf, reason, mistake            string
	confirmations                          []string
	slMoved, manual, brokeRules, noRepeat  bool
	clearExit                              bool
}

func (f *tradeFlags) register(cmd *cobra.Command, withClear bool) {
	fl := cmd.Flags()
	fl.StringVarP(&f.symbol, "symbol", "s", "", "instrument symbol")
	fl.StringVar(&f.timeframe, "timeframe", "", "chart timeframe (1m, 5m, 15m, 1h, 4h, D, W)")
	fl.StringVarP(&f.direction, "direction", "d", "", "Long or Short")
	fl.StringVar(&f.datetime, "at", "", "entry time, e.g. 2024-03-01T09:30 (default: now)")
	fl.Float64Var(&f.entry, "entry", 0, "entry price")
	fl.Float64Var(&f.stop, "sl", 0, "stop-loss price")
	fl.Float64Var(&f.target, "tp", 0, "take-profit price")
	fl.Float64Var(&f.risk, "risk", 0, "risk amount in currency")
	fl.Float64Var(&f.size, "size", 0, "position size")
	fl.Float64Var(&f.exit, "exit", 0, "exit price")
	fl.StringVar(&f.setup, "setup", "", "setup name")
	fl.StringVar(&f.htf, "htf", "", "higher timeframe trend (Up, Down, Range)")
	fl.StringVar(&f.reason, "reason", "", "entry reason")
	fl.StringSliceVar(&f.confirmations, "confirm", nil, "confirmations (Delta, Volume, VWAP, Structure)")
	fl.BoolVar(&f.slMoved, "sl-moved", false, "stop-loss was moved")
	fl.BoolVar(&f.manual, "manual", false, "manual interference")
	fl.BoolVar(&f.brokeRules, "broke-rules", false, "rules were not followed")
	fl.StringVar(&f.mistake, "mistake", "", "biggest mistake")
	fl.BoolVar(&f.noRepeat, "no-repeat", false, "would not take this trade again")
	if withClear {
		fl.BoolVar(&f.clearExit, "clear-exit", false, "remove the exit and reopen the trade")
	}
}

// apply copies every flag the user set onto in.
func (f *tradeFlags) apply(cmd *cobra.Command, in *models.TradeInput) {
	changed := cmd.Flags().Changed
	if changed("symbol") {
		in.Symbol = strings.ToUpper(strings.TrimSpace(f.symbol))
	}
	if changed("timeframe") {
		in.Timeframe = f.timeframe
	}
	if changed("direction") {
		in.Direction = normalizeDirection(f.direction)
	}
	if changed("at") {
		in.DateTime = f.datetime
	}
	numbers := []struct {
		name string
		val  float64
		dst  **float64
	}{
		{"entry", f.entry, &in.EntryPrice},
		{"sl", f.stop, &in.StopLoss},
		{"tp", f.target, &in.TakeProfit},
		{"risk", f.risk, &in.RiskAmount},
		{"size", f.size, &in.PositionSize},
		{"exit", f.exit, &in.ExitPrice},
	}
	for _, n := range numbers {
		if changed(n.name) {
			*n.dst = models.Float(n.val)
		}
	}
	if f.clearExit {
		in.ExitPrice = nil
	}
	if changed("setup") {
		in.SetupName = f.setup
	}
	if changed("htf") {
		in.HTFTrend = f.htf
	}
	if changed("reason") {
		in.EntryReason = f.reason
	}
	if changed("confirm") {
		in.Confirmations = f.confirmations
	}
	if changed("sl-moved") {
		in.SLMoved = f.slMoved
	}
	if changed("manual") {
		in.ManualInterference = f.manual
	}
	if changed("broke-rules") {
		in.FollowedRules = models.Bool(!f.brokeRules)
	}
	if changed("mistake") {
		in.BiggestMistake = f.mistake
	}
	if changed("no-repeat") {
		in.WouldTakeAgain = models.Bool(!f.noRepeat)
	}
}

// normalizeDirection accepts long/short in any case, leaving unknown values
// for the service to reject.
func normalizeDirection(s string) string {
	if dir, ok := models.ParseDirection(s); ok {
		return string(dir)
	}
	return s
}

func parseTradeID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid trade id %q", arg)
	}
	return id, nil
}

func newTradeAddCmd(app *App) *cobra.Command {
	var f tradeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new trade",
		Long: `Record a new trade. P&L, R-multiple, outcome and the review flag are
computed from the prices; they cannot be set directly.`,
		Example: `  journal trade add -s NIFTY -d Long --entry 22100 --sl 22050 --tp 22250 --size 50 \
      --risk 2500 --timeframe 5m --setup Breakout --htf Up --reason "range break" --confirm Volume,Delta
  journal trade add -s INFY -d Short --entry 1500 --sl 1510 --tp 1480 --size 20 --exit 1485`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			in := models.TradeInput{DateTime: time.Now().Format(time.RFC3339)}
			f.apply(cmd, &in)

			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			trade, err := svc.CreateTrade(ctx, in)
			if err != nil {
				output.Error("Failed to record trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade #%d recorded", trade.ID)
			printTradeSummary(output, trade)
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	var (
		sortBy  string
		asc     bool
		flagged bool
		symbol  string
		setup   string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		Example: `  journal trade list
  journal trade list --sort r_multiple --asc
  journal trade list --flagged`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			field, err := store.ParseSortField(sortBy)
			if err != nil {
				return err
			}
			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			trades, err := svc.ListTrades(ctx, store.TradeFilter{
				SortBy:      field,
				Ascending:   asc,
				FlaggedOnly: flagged,
				Symbol:      strings.ToUpper(strings.TrimSpace(symbol)),
				SetupName:   setup,
				Limit:       limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades recorded.")
				return nil
			}
			printTradeTable(output, trades, app.Config.UI.DateFormat)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "datetime", "sort by datetime, r_multiple, setup_name, outcome or id")
	cmd.Flags().BoolVar(&asc, "asc", false, "ascending order")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "only trades flagged for review")
	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().StringVar(&setup, "setup", "", "filter by setup name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of trades")
	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			id, err := parseTradeID(args[0])
			if err != nil {
				return err
			}
			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			trade, err := svc.GetTrade(ctx, id)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			printTradeDetail(output, trade, app.Config.UI.DateFormat)
			return nil
		},
	}
}

func newTradeUpdateCmd(app *App) *cobra.Command {
	var f tradeFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a trade",
		Long: `Update a trade. Only the flags given are changed; derived values and the
review flag are recomputed.`,
		Example: `  journal trade update 12 --exit 22240
  journal trade update 12 --sl-moved --mistake "moved stop to breakeven early"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			id, err := parseTradeID(args[0])
			if err != nil {
				return err
			}
			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			existing, err := svc.GetTrade(ctx, id)
			if err != nil {
				return err
			}

			in := models.InputFromTrade(existing)
			f.apply(cmd, &in)

			trade, err := svc.UpdateTrade(ctx, id, in)
			if err != nil {
				output.Error("Failed to update trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade #%d updated", trade.ID)
			printTradeSummary(output, trade)
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a trade",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			id, err := parseTradeID(args[0])
			if err != nil {
				return err
			}
			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			if err := svc.DeleteTrade(ctx, id); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]any{"id": id, "deleted": true})
			}
			output.Success("✓ Trade #%d deleted", id)
			return nil
		},
	}
}

// newTradePreviewCmd computes derived values without touching the store.
func newTradePreviewCmd() *cobra.Command {
	var f tradeFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview P&L, R-multiple and risk-reward without saving",
		Example: `  journal trade preview -d Long --entry 100 --sl 95 --tp 110
  journal trade preview -d Short --entry 100 --sl 105 --tp 90 --size 10 --exit 92`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var in models.TradeInput
			f.apply(cmd, &in)
			d := journal.Preview(in)

			if output.IsJSON() {
				return output.JSON(d)
			}
			output.Bold("Preview")
			output.Printf("  Risk:Reward:  %s\n", utils.FormatRiskReward(d.RiskReward))
			output.Printf("  P&L:          %s\n", output.PnL(d.PnL))
			output.Printf("  R-multiple:   %s\n", output.R(d.RMultiple))
			output.Printf("  Outcome:      %s\n", output.Outcome(d.Outcome))
			if d.Flagged() {
				output.Warning("  ⚑ This trade would be flagged for review")
			}
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func printTradeSummary(output *Output, t *models.Trade) {
	output.Printf("  %s %s @ %s  SL %s  TP %s\n",
		t.Symbol, t.Direction, FormatPrice(&t.EntryPrice), FormatPrice(&t.StopLoss), FormatPrice(&t.TakeProfit))
	if t.IsClosed() {
		output.Printf("  Exit %s  P&L %s  %s  %s\n",
			FormatPrice(t.ExitPrice), output.PnL(t.PnL), output.R(t.RMultiple), output.Outcome(t.Outcome))
	}
	if t.IsFlagged {
		output.Warning("  ⚑ Flagged for review")
	}
}

func printTradeTable(output *Output, trades []models.Trade, dateFormat string) {
	table := NewTable(output, "ID", "Date", "Symbol", "Side", "TF", "Setup", "Entry", "Exit", "P&L", "R", "Result", "")
	for i := range trades {
		t := &trades[i]
		table.AddRow(
			strconv.FormatInt(t.ID, 10),
			FormatDateTime(t.DateTime, dateFormat),
			t.Symbol,
			string(t.Direction),
			orDash(string(t.Timeframe)),
			utils.TruncateString(orDash(t.SetupName), 18),
			FormatPrice(&t.EntryPrice),
			FormatPrice(t.ExitPrice),
			output.PnL(t.PnL),
			output.R(t.RMultiple),
			output.Outcome(t.Outcome),
			output.Flag(t.IsFlagged),
		)
	}
	table.Render()
}

func printTradeDetail(output *Output, t *models.Trade, dateFormat string) {
	d := journal.Preview(models.InputFromTrade(t))

	output.Bold("Trade #%d  %s %s", t.ID, t.Symbol, t.Direction)
	output.Printf("  Date:           %s\n", FormatDateTime(t.DateTime, dateFormat))
	output.Printf("  Timeframe:      %s\n", orDash(string(t.Timeframe)))
	output.Printf("  Setup:          %s\n", orDash(t.SetupName))
	output.Printf("  HTF trend:      %s\n", orDash(string(t.HTFTrend)))
	output.Printf("  Confirmations:  %s\n", FormatConfirmations(t.Confirmations))
	output.Printf("  Entry reason:   %s\n", orDash(t.EntryReason))
	output.Println()

	output.Bold("Risk")
	output.Printf("  Entry:          %s\n", FormatPrice(&t.EntryPrice))
	output.Printf("  Stop-loss:      %s\n", FormatPrice(&t.StopLoss))
	output.Printf("  Take-profit:    %s\n", FormatPrice(&t.TakeProfit))
	output.Printf("  Size:           %g\n", t.PositionSize)
	output.Printf("  Risk amount:    %s\n", utils.FormatCurrency(t.RiskAmount))
	output.Printf("  Risk:Reward:    %s\n", utils.FormatRiskReward(d.RiskReward))
	output.Println()

	output.Bold("Result")
	output.Printf("  Exit:           %s\n", FormatPrice(t.ExitPrice))
	output.Printf("  P&L:            %s\n", output.PnL(t.PnL))
	output.Printf("  R-multiple:     %s\n", output.R(t.RMultiple))
	output.Printf("  Outcome:        %s\n", output.Outcome(t.Outcome))
	output.Println()

	output.Bold("Review")
	output.Printf("  SL moved:       %s\n", yesNo(t.SLMoved))
	output.Printf("  Manual:         %s\n", yesNo(t.ManualInterference))
	output.Printf("  Followed rules: %s\n", yesNo(t.FollowedRules))
	output.Printf("  Take again:     %s\n", yesNo(t.WouldTakeAgain))
	output.Printf("  Mistake:        %s\n", orDash(t.BiggestMistake))
	if t.IsFlagged {
		output.Warning("  ⚑ Flagged for review")
	}
}
