package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/cache"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/chunk"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/dataset"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/llm"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/match"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/merge"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/metrics"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/taxonomy"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/worker"
)

const maxReviewAttempts = 3

// Runner orchestrates one experiment: chunk each example, collect
// reviewer responses, merge them back into file coordinates, match
// against the expected issues and aggregate the counts.
type Runner struct {
	cfg      *model.Config
	vocab    *taxonomy.Vocabulary
	merger   *merge.Merger
	matcher  *match.Matcher
	agg      *metrics.Aggregator
	provider llm.Provider // nil means dry run: every chunk reviews clean
	cache    cache.Cache
	limiter  *worker.Limiter
}

// New creates a runner. A nil provider disables reviewer calls; the
// harness then exercises chunking, merging and matching only.
func New(cfg *model.Config, provider llm.Provider) *Runner {
	vocab := taxonomy.ForVersion(cfg.Matching.VocabularyVersion)

	var c cache.Cache
	if cfg.Cache.Enabled && provider != nil {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = filepath.Join(cfg.Output.ReportDir, "cache")
		}
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
	}

	return &Runner{
		cfg:      cfg,
		vocab:    vocab,
		merger:   merge.New(vocab),
		matcher:  match.New(cfg.Matching, vocab),
		agg:      metrics.NewAggregator(),
		provider: provider,
		cache:    c,
		limiter:  worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst),
	}
}

// EvaluateExample runs the full pipeline for one dataset example.
func (r *Runner) EvaluateExample(ctx context.Context, ex dataset.Example) (*model.ExampleReport, error) {
	start := time.Now()

	chunkCfg := r.cfg.Chunking
	if ex.Language != "" {
		chunkCfg.Language = ex.Language
	}
	path := ex.Path
	if path == "" {
		path = ex.ID
	}

	res := chunk.New(chunkCfg).Split(path, ex.Code)

	perChunk := make([][]model.DetectedIssue, len(res.Chunks))
	raws := make([]string, len(res.Chunks))
	var tokens int64

	// Review chunks concurrently; the merge below is the barrier, so
	// every chunk result is in before any remapping happens.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.chunkWorkers())
	for i := range res.Chunks {
		ch := res.Chunks[i]
		idx := i
		g.Go(func() error {
			content, used, err := r.review(gctx, ch, chunkCfg.Language, path)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", idx, err)
			}
			perChunk[idx] = llm.Parse(content, idx)
			raws[idx] = content
			atomic.AddInt64(&tokens, int64(used))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := r.merger.Merge(res.Chunks, perChunk)
	matches := r.matcher.Match(ex.Expected, merged)
	counts := r.agg.Aggregate(matches).Counts

	report := &model.ExampleReport{
		ExampleID:    ex.ID,
		Path:         path,
		Language:     chunkCfg.Language,
		ChunkCount:   len(res.Chunks),
		UsedFallback: res.UsedFallback,
		Detected:     merged,
		Counts:       counts,
		TokensUsed:   int(tokens),
		Duration:     time.Since(start),
	}
	if r.cfg.Output.AuditTrail {
		report.Matches = matches
	}
	if r.cfg.Output.IncludeRaw {
		report.RawResponses = raws
	}
	return report, nil
}

func (r *Runner) chunkWorkers() int {
	n := r.cfg.Concurrency.ChunkWorkers
	if n <= 0 {
		n = 1
	}
	return n
}

// review resolves one chunk's raw reviewer response, consulting the
// cache first. Transient reviewer errors are retried with backoff.
func (r *Runner) review(ctx context.Context, ch chunk.Chunk, language, path string) (string, int, error) {
	if r.provider == nil {
		return "[]", 0, nil
	}

	req := llm.ReviewRequest{
		Header:     ch.Header,
		Code:       ch.Body,
		Path:       path,
		Language:   language,
		Categories: r.vocab.Categories(),
		Model:      r.cfg.LLM.Model,
		MaxTokens:  r.cfg.LLM.MaxTokens,
	}
	prompt := llm.BuildPrompt(req)
	key := cache.ResponseKey(r.cfg.LLM.Model, prompt)

	if r.cache != nil {
		if data, found := r.cache.Get(key); found {
			return string(data), 0, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxReviewAttempts; attempt++ {
		backoff := time.Duration(attempt) * time.Second
		if err := r.limiter.WaitWithDelay(ctx, r.cfg.LLM.Model, backoff); err != nil {
			return "", 0, err
		}

		resp, err := r.provider.Review(ctx, req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return "", 0, err
			}
			continue
		}

		if r.cache != nil {
			_ = r.cache.Set(key, []byte(resp.Content), 0)
		}
		return resp.Content, resp.TokensUsed, nil
	}

	return "", 0, fmt.Errorf("review failed after %d attempts: %w", maxReviewAttempts, lastErr)
}

// Run evaluates a whole dataset and aggregates the metrics. Examples
// that error out (or are abandoned when the run timeout expires) are
// excluded from the counts and flag the run incomplete.
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset, datasetDir string) (*model.RunReport, error) {
	start := time.Now()
	examples := ds.All()

	if r.cfg.Concurrency.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Concurrency.RunTimeout)
		defer cancel()
	}

	batch := worker.NewBatchProcessor(r, r.cfg.Concurrency.FileWorkers)
	results := batch.ProcessExamples(ctx, examples)

	reports := make([]model.ExampleReport, 0, len(examples))
	evaluated := make(map[string]bool, len(results))
	var allMatches []model.MatchResult
	incomplete := false

	for _, res := range results {
		evaluated[res.ExampleID] = true
		if res.Error != nil {
			incomplete = true
			reports = append(reports, model.ExampleReport{
				ExampleID: res.ExampleID,
				Error:     res.Error.Error(),
			})
			continue
		}
		reports = append(reports, *res.Report)
		allMatches = append(allMatches, res.Report.Matches...)
	}

	// Examples the pool never got to before the deadline.
	for _, ex := range examples {
		if !evaluated[ex.ID] {
			incomplete = true
			reports = append(reports, model.ExampleReport{
				ExampleID: ex.ID,
				Error:     "abandoned: run timeout expired",
			})
		}
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].ExampleID < reports[j].ExampleID })

	runMetrics := r.aggregateRun(reports, allMatches)
	runMetrics.Incomplete = incomplete

	return &model.RunReport{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Config:       *r.cfg,
		DatasetDir:   datasetDir,
		ExampleCount: len(examples),
		Examples:     reports,
		Metrics:      runMetrics,
		Duration:     time.Since(start),
	}, nil
}

// aggregateRun recomputes run metrics from the surviving match results.
// When the audit trail is disabled the per-example counts are folded
// instead, losing the per-category split for unmatched categories only
// if no matches were retained at all.
func (r *Runner) aggregateRun(reports []model.ExampleReport, allMatches []model.MatchResult) model.RunMetrics {
	if len(allMatches) > 0 || r.cfg.Output.AuditTrail {
		return r.agg.Aggregate(allMatches)
	}

	var perExample []model.RunMetrics
	for i := range reports {
		if reports[i].Failed() {
			continue
		}
		perExample = append(perExample, model.RunMetrics{
			Precision: reports[i].Counts.Precision(),
			Recall:    reports[i].Counts.Recall(),
			F1:        reports[i].Counts.F1(),
			Counts:    reports[i].Counts,
		})
	}
	return r.agg.Fold(perExample...)
}

// Compare produces the metric deltas between two runs.
func (r *Runner) Compare(before, after *model.RunReport) model.MetricsDelta {
	return r.agg.Compare(before.Metrics, after.Metrics)
}
