package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/metrics"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/runner"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <before.json> <after.json>",
	Short: "Compare two run reports metric by metric",
	Long: `Compare loads two persisted run reports and prints the precision,
recall and F1 deltas, overall and per category.

Runs with different matching settings (tolerance, vocabulary) are
compared with a warning, since their numbers are not directly
commensurable.

Example:
  reveval compare experiments/runs/old.json experiments/runs/new.json`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	before, err := runner.LoadJSON(args[0])
	if err != nil {
		return fmt.Errorf("load before: %w", err)
	}
	after, err := runner.LoadJSON(args[1])
	if err != nil {
		return fmt.Errorf("load after: %w", err)
	}

	if before.Config.Matching != after.Config.Matching {
		fmt.Fprintf(os.Stderr, "Warning: runs used different matching settings (tolerance %d/%s vs %d/%s)\n\n",
			before.Config.Matching.LineTolerance, before.Config.Matching.VocabularyVersion,
			after.Config.Matching.LineTolerance, after.Config.Matching.VocabularyVersion)
	}

	delta := metrics.NewAggregator().Compare(before.Metrics, after.Metrics)
	runner.RenderDelta(os.Stdout, before, after, delta)
	return nil
}
