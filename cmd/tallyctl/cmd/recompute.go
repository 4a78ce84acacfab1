package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/logger"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute [project-id]",
	Short: "Rebuild stored invoice totals from the invoices",
	Long: `Recompute rescans the non-cancelled invoices of a project and overwrites
its stored total. Use it after an outage of the aggregation worker.`,
	Example: `  tallyctl recompute 6f1c2d4e-0000-4000-8000-000000000000
  tallyctl recompute --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecompute,
}

func init() {
	rootCmd.AddCommand(recomputeCmd)

	recomputeCmd.Flags().Bool("all", false, "Recompute every project")
}

func runRecompute(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")

	ids, err := recomputeTargets(args, all)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if all {
		projects, err := a.Projects.List(ctx)
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}

		for _, p := range projects {
			ids = append(ids, p.ID)
		}
	}

	log := logger.WithComponent("recompute")

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tTOTAL")

	var failed int

	for _, id := range ids {
		total, err := a.Trigger.Recompute(ctx, id)
		if err != nil {
			failed++

			log.Error().Err(err).Str("project_id", id.String()).Msg("recompute failed")
			fmt.Fprintf(tw, "%s\tFAILED\n", id)

			continue
		}

		fmt.Fprintf(tw, "%s\t%s\n", id, formatCents(total))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d projects failed", failed, len(ids))
	}

	return nil
}

func recomputeTargets(args []string, all bool) ([]uuid.UUID, error) {
	switch {
	case all && len(args) > 0:
		return nil, errors.New("pass either a project id or --all, not both")
	case all:
		return nil, nil
	case len(args) == 0:
		return nil, errors.New("project id or --all required")
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid project id %q", args[0])
	}

	return []uuid.UUID{id}, nil
}
