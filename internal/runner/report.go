package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
)

// WriteJSON persists a run report as JSON.
func WriteJSON(report *model.RunReport, path string, pretty bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// LoadJSON reads a previously persisted run report.
func LoadJSON(path string) (*model.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &report, nil
}

// WriteMarkdown renders a human-readable run summary.
func WriteMarkdown(report *model.RunReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Run %s\n\n", report.RunID))
	b.WriteString(fmt.Sprintf("- Date: %s\n", report.CreatedAt.Format("2006-01-02 15:04:05 UTC")))
	b.WriteString(fmt.Sprintf("- Dataset: %s (%d examples)\n", report.DatasetDir, report.ExampleCount))
	b.WriteString(fmt.Sprintf("- Model: %s\n", modelLabel(report)))
	b.WriteString(fmt.Sprintf("- Chunk budget: %d tokens, line tolerance: %d, vocabulary: %s\n",
		report.Config.Chunking.Budget, report.Config.Matching.LineTolerance, report.Config.Matching.VocabularyVersion))
	b.WriteString(fmt.Sprintf("- Duration: %s\n", report.Duration.Round(time.Millisecond)))
	if report.Metrics.Incomplete {
		b.WriteString(fmt.Sprintf("- **Incomplete run**: %d example(s) failed or were abandoned\n", len(report.FailedExamples())))
	}
	b.WriteString("\n## Metrics\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	b.WriteString(fmt.Sprintf("| Precision | %.4f |\n", report.Metrics.Precision))
	b.WriteString(fmt.Sprintf("| Recall | %.4f |\n", report.Metrics.Recall))
	b.WriteString(fmt.Sprintf("| F1 | %.4f |\n", report.Metrics.F1))
	b.WriteString(fmt.Sprintf("| TP / FP / FN | %d / %d / %d |\n",
		report.Metrics.Counts.TP, report.Metrics.Counts.FP, report.Metrics.Counts.FN))

	if len(report.Metrics.PerCategory) > 0 {
		b.WriteString("\n## Per-category\n\n")
		b.WriteString("| Category | Precision | Recall | F1 | TP | FP | FN |\n|---|---|---|---|---|---|---|\n")
		for _, cat := range sortedCategories(report.Metrics.PerCategory) {
			cm := report.Metrics.PerCategory[cat]
			b.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.4f | %d | %d | %d |\n",
				cat, cm.Precision, cm.Recall, cm.F1, cm.Counts.TP, cm.Counts.FP, cm.Counts.FN))
		}
	}

	b.WriteString("\n## Examples\n\n")
	b.WriteString("| Example | Chunks | TP | FP | FN | Notes |\n|---|---|---|---|---|---|\n")
	for i := range report.Examples {
		ex := &report.Examples[i]
		note := ""
		if ex.Failed() {
			note = "failed: " + ex.Error
		} else if ex.UsedFallback {
			note = "fallback chunking"
		}
		b.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %s |\n",
			ex.ExampleID, ex.ChunkCount, ex.Counts.TP, ex.Counts.FP, ex.Counts.FN, note))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a compact run summary.
func RenderSummary(w io.Writer, report *model.RunReport) {
	fmt.Fprintf(w, "Run:       %s\n", report.RunID)
	fmt.Fprintf(w, "Examples:  %d", report.ExampleCount)
	if failed := len(report.FailedExamples()); failed > 0 {
		fmt.Fprintf(w, " (%d failed)", failed)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Precision: %.4f\n", report.Metrics.Precision)
	fmt.Fprintf(w, "Recall:    %.4f\n", report.Metrics.Recall)
	fmt.Fprintf(w, "F1:        %.4f\n", report.Metrics.F1)
	fmt.Fprintf(w, "Counts:    TP=%d FP=%d FN=%d\n",
		report.Metrics.Counts.TP, report.Metrics.Counts.FP, report.Metrics.Counts.FN)
	if report.Metrics.Incomplete {
		fmt.Fprintln(w, "Warning:   incomplete run, metrics cover evaluated examples only")
	}
}

// RenderDelta prints a run-over-run comparison.
func RenderDelta(w io.Writer, before, after *model.RunReport, delta model.MetricsDelta) {
	fmt.Fprintf(w, "Before: %s\n", before.RunID)
	fmt.Fprintf(w, "After:  %s\n", after.RunID)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-10s %10s %10s %+10s\n", "Metric", "Before", "After", "Delta")
	fmt.Fprintf(w, "%-10s %10.4f %10.4f %+10.4f\n", "Precision", delta.Precision.Before, delta.Precision.After, delta.Precision.Delta)
	fmt.Fprintf(w, "%-10s %10.4f %10.4f %+10.4f\n", "Recall", delta.Recall.Before, delta.Recall.After, delta.Recall.Delta)
	fmt.Fprintf(w, "%-10s %10.4f %10.4f %+10.4f\n", "F1", delta.F1.Before, delta.F1.After, delta.F1.Delta)

	if len(delta.PerCategory) > 0 {
		fmt.Fprintln(w)
		for _, cat := range sortedDeltaCategories(delta.PerCategory) {
			d := delta.PerCategory[cat]["f1"]
			fmt.Fprintf(w, "%-25s F1 %.4f -> %.4f (%+.4f)\n", cat, d.Before, d.After, d.Delta)
		}
	}

	if before.Metrics.Incomplete || after.Metrics.Incomplete {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Warning: at least one run is incomplete; deltas may be skewed")
	}
}

func modelLabel(report *model.RunReport) string {
	if report.Config.LLM.Provider == "" {
		return "(dry run)"
	}
	return fmt.Sprintf("%s/%s", report.Config.LLM.Provider, report.Config.LLM.Model)
}

func sortedCategories(m map[string]model.CategoryMetrics) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDeltaCategories(m map[string]map[string]model.MetricDelta) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
