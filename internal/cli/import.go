package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"trading-journal/internal/importer"
	"trading-journal/internal/journal"
	"trading-journal/internal/store"
)

func newImportCmd(app *App) *cobra.Command {
	var (
		sets        []string
		dryRun      bool
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import trades from a CSV export",
		Long: `Import trades from a CSV file. Common broker headers (ticker, side, qty,
avg price, ...) are mapped onto journal fields; P&L columns are ignored.

Rows missing required fields are skipped unless they are filled in with
--set (applied to every row lacking the field) or fixed one by one with
--interactive.`,
		Example: `  journal import tradebook.csv --dry-run
  journal import tradebook.csv --set timeframe=5m --set htf_trend=Up -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			cs, err := importer.ReadCSV(f)
			f.Close()
			if err != nil {
				return err
			}
			if len(cs) == 0 {
				output.Info("No rows found in %s", args[0])
				return nil
			}

			for _, kv := range sets {
				field, value, ok := strings.Cut(kv, "=")
				if !ok || strings.TrimSpace(field) == "" {
					return fmt.Errorf("invalid --set %q, expected field=value", kv)
				}
				n := importer.FillMissing(cs, 0, strings.TrimSpace(field), strings.TrimSpace(value))
				app.Logger.Debug().Str("field", field).Int("rows", n).Msg("Filled missing values")
			}

			if interactive && !output.IsJSON() {
				fixRows(output, cmd.InOrStdin(), cs)
			}

			v := journal.ValidateCandidates(cs)
			if dryRun {
				if output.IsJSON() {
					return output.JSON(v)
				}
				printValidation(output, v)
				return nil
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			res, err := svc.ImportCandidates(ctx, cs)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				failed := make([]string, len(res.Failed))
				for i, e := range res.Failed {
					failed[i] = e.Error()
				}
				return output.JSON(map[string]any{
					"imported": res.Imported,
					"skipped":  res.Skipped,
					"failed":   failed,
				})
			}
			output.Success("✓ Imported %d of %d rows", len(res.Imported), len(cs))
			if len(res.Skipped) > 0 {
				output.Warning("Skipped %d incomplete rows", len(res.Skipped))
			}
			for _, e := range res.Failed {
				output.Error("  %v", e)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "fill a missing field on every row, as field=value")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report row completeness without importing")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for missing fields row by row")
	return cmd
}

func printValidation(output *Output, v journal.Validation) {
	output.Bold("%d of %d rows ready to import", v.Complete, len(v.Rows))
	for _, r := range v.Rows {
		if r.Complete {
			continue
		}
		output.Printf("  row %d: missing %s\n", r.Index+1, strings.Join(r.Missing, ", "))
	}
}

// fixRows prompts for the missing fields of each incomplete row. A blank
// answer skips the row; end of input stops the session.
func fixRows(output *Output, in io.Reader, cs []importer.Candidate) {
	scanner := bufio.NewScanner(in)
	ask := func(prompt string) (string, bool) {
		output.Printf("%s", prompt)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	s := importer.NewSession(cs)
	for !s.Done() {
		row := s.Index() + 1
		output.Bold("Row %d of %d", row, len(cs))

		skipped := false
		for _, field := range s.Missing() {
			value, ok := ask(fmt.Sprintf("  %s: ", field))
			if !ok {
				output.Println()
				return
			}
			if value == "" {
				skipped = true
				break
			}
			s.Set(field, value)

			answer, ok := ask("  use for every later row missing it? [y/N] ")
			if !ok {
				output.Println()
				return
			}
			if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
				n := s.ApplyToAll(field)
				output.Dim("  filled %s on %d rows", field, n)
			}
		}

		if skipped {
			output.Warning("  row %d skipped", row)
			s.Skip()
			continue
		}
		if err := s.Apply(); err != nil {
			output.Warning("  row %d still incomplete, skipped", row)
			s.Skip()
		}
	}
}

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Export every trade to CSV",
		Long:  "Export every trade to CSV. Use - to write to stdout. The file can be imported again.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			trades, err := svc.ListTrades(ctx, store.TradeFilter{SortBy: store.SortByID, Ascending: true})
			if err != nil {
				return err
			}

			if args[0] == "-" {
				return importer.WriteCSV(cmd.OutOrStdout(), trades)
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := importer.WriteCSV(f, trades); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]any{"path": args[0], "trades": len(trades)})
			}
			output.Success("✓ Exported %d trades to %s", len(trades), args[0])
			return nil
		},
	}
}
