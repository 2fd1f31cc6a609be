package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/dataset"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/llm"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/runner"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/worker"
)

var (
	chunkBudget   int
	contextLines  int
	language      string
	lineTolerance int
	vocabVersion  string

	llmProvider string
	llmModel    string
	llmBaseURL  string
	llmRPS      float64

	chunkWorkers int
	fileWorkers  int
	runTimeout   time.Duration

	reportDir  string
	noCache    bool
	noAudit    bool
	includeRaw bool
	noMarkdown bool
	idsFile    string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <dataset-dir>",
	Short: "Evaluate a reviewer against an annotated dataset",
	Long: `Run evaluates every example in a dataset directory:
- Chunk each example file to the token budget
- Send each chunk to the configured reviewer
- Merge per-chunk findings back into file coordinates
- Match detections against expected issues (one-to-one, greedy)
- Aggregate precision, recall and F1 per category and overall

Without --provider the run is dry: chunking, merging and matching are
exercised with an always-clean reviewer, useful for dataset validation.

Example:
  reveval run datasets/cpp-bugs --provider openai --model gpt-4o-mini
  reveval run datasets/cpp-bugs --provider ollama --model codellama --rps 2
  reveval run datasets/cpp-bugs --budget 1200 --tolerance 2`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Chunking and matching flags
	runCmd.Flags().IntVar(&chunkBudget, "budget", 2000, "approximate token budget per chunk")
	runCmd.Flags().IntVar(&contextLines, "context-lines", 0, "non-authoritative overlap lines between chunks")
	runCmd.Flags().StringVar(&language, "language", "cpp", "default source language (cpp, c, go, java, python)")
	runCmd.Flags().IntVar(&lineTolerance, "tolerance", 1, "line tolerance for matching detections to expected issues")
	runCmd.Flags().StringVar(&vocabVersion, "vocabulary", "v1", "category vocabulary version")

	// Reviewer flags
	runCmd.Flags().StringVar(&llmProvider, "provider", "", "reviewer provider (openai, ollama, empty for dry run)")
	runCmd.Flags().StringVar(&llmModel, "model", "gpt-4o-mini", "reviewer model name")
	runCmd.Flags().StringVar(&llmBaseURL, "base-url", "", "override reviewer endpoint URL")
	runCmd.Flags().Float64Var(&llmRPS, "rps", 0, "reviewer requests per second (0 = unlimited)")

	// Concurrency flags
	runCmd.Flags().IntVar(&chunkWorkers, "chunk-workers", 4, "concurrent reviewer calls per example")
	runCmd.Flags().IntVar(&fileWorkers, "file-workers", 2, "concurrent example evaluations")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "total run timeout")

	// Output flags
	runCmd.Flags().StringVar(&reportDir, "report-dir", "experiments/runs", "directory for run reports")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable reviewer response cache")
	runCmd.Flags().BoolVar(&noAudit, "no-audit", false, "omit per-issue match results from reports")
	runCmd.Flags().BoolVar(&includeRaw, "include-raw", false, "keep raw reviewer responses in reports")
	runCmd.Flags().BoolVar(&noMarkdown, "no-md", false, "skip Markdown report")
	runCmd.Flags().StringVar(&idsFile, "ids-file", "", "evaluate only example IDs listed in this file")
}

func runRun(cmd *cobra.Command, args []string) error {
	datasetDir := args[0]

	cfg := buildRunConfig()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	ds, err := dataset.Load(datasetDir)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	if idsFile != "" {
		ds, err = filterDataset(ds, idsFile)
		if err != nil {
			return err
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Dataset:   %s (%d examples)\n", datasetDir, ds.Size())
		if provider == nil {
			fmt.Fprintf(os.Stderr, "Reviewer:  (dry run)\n")
		} else {
			fmt.Fprintf(os.Stderr, "Reviewer:  %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		}
		fmt.Fprintf(os.Stderr, "Budget:    %d tokens, tolerance %d line(s)\n", cfg.Chunking.Budget, cfg.Matching.LineTolerance)
		fmt.Fprintln(os.Stderr)
	}

	r := runner.New(cfg, provider)
	report, err := r.Run(context.Background(), ds, datasetDir)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	jsonPath := filepath.Join(cfg.Output.ReportDir, report.RunID+".json")
	if err := runner.WriteJSON(report, jsonPath, cfg.Output.PrettyJSON); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", jsonPath)
	}

	if cfg.Output.MarkdownOut {
		mdPath := filepath.Join(cfg.Output.ReportDir, report.RunID+".md")
		if err := runner.WriteMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", mdPath)
		}
	}

	runner.RenderSummary(os.Stdout, report)
	return nil
}

func buildRunConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Chunking.Budget = chunkBudget
	cfg.Chunking.ContextLines = contextLines
	cfg.Chunking.Language = language
	cfg.Matching.LineTolerance = lineTolerance
	cfg.Matching.VocabularyVersion = vocabVersion
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.LLM.BaseURL = llmBaseURL
	cfg.LLM.RequestsPerSecond = llmRPS
	cfg.Concurrency.ChunkWorkers = chunkWorkers
	cfg.Concurrency.FileWorkers = fileWorkers
	cfg.Concurrency.RunTimeout = runTimeout
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.ReportDir = reportDir
	cfg.Output.AuditTrail = !noAudit
	cfg.Output.IncludeRaw = includeRaw
	cfg.Output.MarkdownOut = !noMarkdown

	// Config file / env values fill anything flags left at defaults
	if v := viper.GetString("llm.api_key"); v != "" {
		cfg.LLM.APIKey = v
	}
	return cfg
}

// buildProvider resolves the reviewer provider, reading API keys from
// the environment the way CI secrets are usually injected.
func buildProvider(cfg *model.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "":
		return nil, nil
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}

	provider, err := llm.NewProvider(llm.ConfigFrom(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("reviewer setup: %w", err)
	}
	return provider, nil
}

// filterDataset narrows a dataset to the IDs listed in a file.
func filterDataset(ds *dataset.Dataset, path string) (*dataset.Dataset, error) {
	ids, err := worker.ReadIDsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ids file: %w", err)
	}

	var subset []dataset.Example
	for _, id := range ids {
		ex, ok := ds.ByID(id)
		if !ok {
			return nil, fmt.Errorf("example %q not in dataset", id)
		}
		subset = append(subset, ex)
	}
	return dataset.FromExamples(subset...)
}
