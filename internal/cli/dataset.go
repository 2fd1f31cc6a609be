package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/dataset"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/taxonomy"
)

var datasetCategory string

// datasetCmd represents the dataset command
var datasetCmd = &cobra.Command{
	Use:   "dataset <dir>",
	Short: "Validate and summarize an annotated dataset",
	Long: `Dataset loads a dataset directory, runs the same validation a run
would, and prints the category distribution. A dataset that loads here
will load in a run.

Example:
  reveval dataset datasets/cpp-bugs
  reveval dataset datasets/cpp-bugs --category logic-errors`,
	Args: cobra.ExactArgs(1),
	RunE: runDataset,
}

func init() {
	rootCmd.AddCommand(datasetCmd)

	datasetCmd.Flags().StringVar(&datasetCategory, "category", "", "list examples containing this expected category")
}

func runDataset(cmd *cobra.Command, args []string) error {
	dir := args[0]

	ds, err := dataset.Load(dir)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	vocab := taxonomy.Default()

	fmt.Printf("Dataset:  %s\n", dir)
	fmt.Printf("Examples: %d (%d clean)\n", ds.Size(), len(ds.CleanExamples()))

	dist := ds.CategoryDistribution()
	if len(dist) > 0 {
		fmt.Println("\nExpected issues per category:")
		cats := make([]string, 0, len(dist))
		for c := range dist {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			marker := ""
			if !vocab.Contains(c) {
				marker = "  <- not in vocabulary " + vocab.Version()
			}
			fmt.Printf("  %-28s %d%s\n", c, dist[c], marker)
		}
	}

	if datasetCategory != "" {
		matches := ds.FilterByCategory(datasetCategory)
		fmt.Printf("\nExamples with %q expected issues: %d\n", datasetCategory, len(matches))
		for i := range matches {
			fmt.Printf("  %s (%s)\n", matches[i].ID, matches[i].Path)
		}
	}

	return nil
}
