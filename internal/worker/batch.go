package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/dataset"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
)

// Evaluator defines the interface for evaluating a single dataset example
type Evaluator interface {
	EvaluateExample(ctx context.Context, ex dataset.Example) (*model.ExampleReport, error)
}

// EvalJob represents one example evaluation job
type EvalJob struct {
	Example   dataset.Example
	Evaluator Evaluator
}

// Execute executes the evaluation job
func (j *EvalJob) Execute(ctx context.Context) Result {
	report, err := j.Evaluator.EvaluateExample(ctx, j.Example)
	if err != nil {
		return &EvalResult{
			ExampleID: j.Example.ID,
			Report:    nil,
			Error:     err,
		}
	}
	return &EvalResult{
		ExampleID: j.Example.ID,
		Report:    report,
		Error:     nil,
	}
}

// EvalResult represents the result of an evaluation job
type EvalResult struct {
	ExampleID string
	Report    *model.ExampleReport
	Error     error
}

// GetError returns the error from the evaluation result
func (r *EvalResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates multiple examples concurrently
type BatchProcessor struct {
	evaluator   Evaluator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(evaluator Evaluator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		evaluator:   evaluator,
		concurrency: concurrency,
	}
}

// ProcessExamples evaluates multiple examples concurrently
func (b *BatchProcessor) ProcessExamples(ctx context.Context, examples []dataset.Example) []*EvalResult {
	if len(examples) == 0 {
		return []*EvalResult{}
	}

	// Create worker pool
	pool := NewPool(b.concurrency)
	pool.Start()

	// Stop accepting work when the run deadline hits
	stop := context.AfterFunc(ctx, pool.Shutdown)
	defer stop()

	// Submit from a separate goroutine so results can be drained while
	// jobs are still queueing. Both pool channels are bounded, so
	// submitting everything before collecting wedges once the dataset
	// outgrows the buffers.
	go func() {
		for _, ex := range examples {
			job := &EvalJob{
				Example:   ex,
				Evaluator: b.evaluator,
			}
			pool.Submit(job)
		}
		pool.Close()
	}()

	evalResults := make([]*EvalResult, 0, len(examples))
	for result := range pool.Results() {
		evalResults = append(evalResults, result.(*EvalResult))
	}

	return evalResults
}

// ReadIDsFromFile reads example IDs from a file (one per line), used to
// evaluate a subset of a dataset.
func ReadIDsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate IDs
		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}
