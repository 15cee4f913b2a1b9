package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trading-journal/internal/models"
	"trading-journal/pkg/utils"
)

func newStatsCmd(app *App) *cobra.Command {
	var bySetup bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show win rate, average R and best/worst setup",
		Example: `  journal stats
  journal stats --setups`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}

			if !bySetup {
				summary, err := svc.Stats(ctx)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(summary)
				}
				printSummary(output, summary)
				return nil
			}

			report, err := svc.SetupReport(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(report)
			}
			printSummary(output, report.Summary)
			output.Printf("  Flagged:        %d\n", report.Flagged)
			output.Printf("  Open risk:      %s\n", utils.FormatCurrency(report.OpenRisk))
			output.Println()

			if len(report.Setups) == 0 {
				return nil
			}
			output.Bold("By setup")
			table := NewTable(output, "Setup", "Trades", "Closed", "Wins", "Win %", "Avg R", "Flagged")
			for _, s := range report.Setups {
				avg := s.AvgR
				table.AddRow(
					s.Name,
					strconv.Itoa(s.Trades),
					strconv.Itoa(s.Closed),
					strconv.Itoa(s.Wins),
					utils.FormatPercentage(s.WinRate),
					output.R(&avg),
					strconv.Itoa(s.Flagged),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&bySetup, "setups", false, "include a per-setup breakdown")
	return cmd
}

func printSummary(output *Output, s models.StatsSummary) {
	best, worst := s.BestSetup.AvgR, s.WorstSetup.AvgR
	output.Bold("Journal statistics")
	output.Printf("  Total trades:   %d\n", s.TotalTrades)
	output.Printf("  Win rate:       %s\n", utils.FormatPercentage(s.WinRate))
	output.Printf("  Average R:      %s\n", output.R(&s.AvgR))
	output.Printf("  Best setup:     %s (%s)\n", s.BestSetup.Name, output.R(&best))
	output.Printf("  Worst setup:    %s (%s)\n", s.WorstSetup.Name, output.R(&worst))
}

func newSetupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Manage setup names",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List setups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			setups, err := svc.ListSetups(ctx)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(setups)
			}
			for _, s := range setups {
				output.Println(s.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a setup",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}
			setup, err := svc.AddSetup(ctx, strings.Join(args, " "))
			if err != nil {
				output.Error("Failed to add setup: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(setup)
			}
			output.Success("✓ Setup %q added", setup.Name)
			return nil
		},
	})

	return cmd
}
