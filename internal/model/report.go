package model

import "time"

// ExampleReport records everything the harness did for one dataset
// example: how the file was chunked, what the reviewer said, and how
// the detections matched the expected issues.
type ExampleReport struct {
	ExampleID string `json:"example_id"`
	Path      string `json:"path,omitempty"`
	Language  string `json:"language,omitempty"`

	// Chunking outcome
	ChunkCount   int  `json:"chunk_count"`
	UsedFallback bool `json:"used_fallback,omitempty"`

	// Merged detections in file coordinates
	Detected []DetectedIssue `json:"detected,omitempty"`

	// Per-issue audit trail
	Matches []MatchResult `json:"matches,omitempty"`

	// Raw match counts for this example
	Counts Counts `json:"counts"`

	// Raw reviewer responses, one per chunk, kept only when configured
	RawResponses []string `json:"raw_responses,omitempty"`

	TokensUsed int           `json:"tokens_used,omitempty"`
	Duration   time.Duration `json:"duration_ns,omitempty"`

	// Error is set when this example could not be evaluated; its
	// expected issues are then excluded from the run metrics and the
	// run is flagged incomplete.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the example evaluation errored out.
func (r *ExampleReport) Failed() bool {
	return r.Error != ""
}

// RunReport is the persisted output of one experiment run.
type RunReport struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	// Settings the run was executed with, kept verbatim so runs with
	// different tolerances or budgets are never compared blindly.
	Config Config `json:"config"`

	DatasetDir   string `json:"dataset_dir"`
	ExampleCount int    `json:"example_count"`

	Examples []ExampleReport `json:"examples"`
	Metrics  RunMetrics      `json:"metrics"`

	Duration time.Duration `json:"duration_ns"`
}

// FailedExamples lists the IDs of examples that errored out.
func (r *RunReport) FailedExamples() []string {
	var ids []string
	for i := range r.Examples {
		if r.Examples[i].Failed() {
			ids = append(ids, r.Examples[i].ExampleID)
		}
	}
	return ids
}
