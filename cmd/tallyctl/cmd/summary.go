package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/project"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <project-id>",
	Short: "Print the financial summary of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

func runSummary(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid project id %q", args[0])
	}

	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.Projects.Summary(ctx, id)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printSummaryJSON(cmd, s)
	}

	return printSummary(cmd, s)
}

// printSummaryJSON uses the same keys as the summary API response.
func printSummaryJSON(cmd *cobra.Command, s *project.Summary) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(s)
}

func printSummary(cmd *cobra.Command, s *project.Summary) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	rows := []struct {
		label string
		value string
	}{
		{"Invoices", fmt.Sprintf("%d", s.InvoiceCount)},
		{"Invoice total", formatCents(s.InvoiceTotal)},
		{"Total spent", formatCents(s.TotalSpent)},
		{"Remaining cost", formatCents(s.RemainingCost)},
		{"Budget variance", formatCents(s.BudgetVariance)},
		{"Budget variance %", formatPercent(s.BudgetVariancePercent)},
		{"Revenue variance", formatCents(s.RevenueVariance)},
		{"Revenue variance %", formatPercent(s.RevenueVariancePercent)},
		{"Planned margin", formatPercent(s.PlannedMargin)},
		{"Actual margin", formatPercent(s.ActualMargin)},
		{"Margin variance", formatPercent(s.MarginVariancePercent)},
		{"Estimated net profit", formatCents(s.EstimatedNetProfit)},
	}

	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.label, r.value)
	}

	return tw.Flush()
}

func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func formatPercent(p *float64) string {
	if p == nil {
		return "n/a"
	}

	return decimal.NewFromFloat(*p).StringFixed(2) + "%"
}
