package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// LineRange is an inclusive range of 1-indexed source lines.
// A single-line location is represented as Start == End.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewLine returns a single-line range.
func NewLine(line int) LineRange {
	return LineRange{Start: line, End: line}
}

// IsValid reports whether the range addresses at least one line.
func (r LineRange) IsValid() bool {
	return r.Start >= 1 && r.End >= r.Start
}

// Overlaps reports whether two ranges share at least one line.
func (r LineRange) Overlaps(o LineRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// Distance returns the number of lines separating two ranges.
// Overlapping ranges have distance 0.
func (r LineRange) Distance(o LineRange) int {
	if r.Overlaps(o) {
		return 0
	}
	if r.End < o.Start {
		return o.Start - r.End
	}
	return r.Start - o.End
}

// UnmarshalJSON accepts either a bare line number or a {start, end}
// object, so fixtures annotated with a single "line" field load
// unchanged.
func (r *LineRange) UnmarshalJSON(data []byte) error {
	var line int
	if err := json.Unmarshal(data, &line); err == nil {
		*r = NewLine(line)
		return nil
	}
	type plain LineRange
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("line range: %w", err)
	}
	*r = LineRange(p)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML fixtures.
func (r *LineRange) UnmarshalYAML(value *yaml.Node) error {
	var line int
	if err := value.Decode(&line); err == nil {
		*r = NewLine(line)
		return nil
	}
	type plain LineRange
	var p plain
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("line range: %w", err)
	}
	*r = LineRange(p)
	return nil
}

// Severity levels for ground-truth issues.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ExpectedIssue is a hand-annotated ground-truth issue. Immutable once
// loaded; owned by the dataset for the lifetime of a run.
type ExpectedIssue struct {
	ID       int       `json:"id" yaml:"id"`                               // Unique within one example
	Lines    LineRange `json:"lines" yaml:"lines"`                         // Single line or {start, end}
	Category string    `json:"category" yaml:"category"`                   // Closed-vocabulary category
	BugType  string    `json:"bug_type,omitempty" yaml:"bug_type,omitempty"` // Fine-grained label (e.g. "off-by-one")
	Severity Severity  `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// DetectedIssue is one issue reported by the external reviewer,
// after parsing its structured or semi-structured output.
type DetectedIssue struct {
	Lines        LineRange `json:"lines,omitempty"`       // Zero value when Locationless
	Locationless bool      `json:"locationless"`          // Line mention absent or unparseable
	Category     string    `json:"category,omitempty"`    // Free text as reported
	Description  string    `json:"description,omitempty"` // Free-text explanation
	ChunkIndex   int       `json:"chunk_index,omitempty"` // Which chunk reported it
}

// Classification of a match result.
type Classification string

const (
	TruePositive  Classification = "true_positive"
	FalsePositive Classification = "false_positive"
	FalseNegative Classification = "false_negative"
)

// MatchResult pairs an expected issue with a detected issue, or records
// that one side went unclaimed. ExpectedID is nil for an FP, Detected is
// nil for an FN, both are set for a TP. Created by the matcher, consumed
// by the aggregator, never mutated afterward.
type MatchResult struct {
	ExpectedID     *int           `json:"expected_id,omitempty"`
	Detected       *DetectedIssue `json:"detected,omitempty"`
	Classification Classification `json:"classification"`
	Category       string         `json:"category"` // Resolved bucket for per-category metrics
}
