// Package dataset loads hand-curated ground-truth examples for the
// evaluation harness. Examples are JSON or YAML fixture files, one
// example per file, annotated with the issues a reviewer is expected to
// find. Loaded examples are immutable for the lifetime of a run.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
)

// Example is one annotated evaluation case: a code snippet with the
// issues a correct review must report. An example with no expected
// issues is a negative (clean) case.
type Example struct {
	ID          string                `json:"id" yaml:"id"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Path        string                `json:"file_path" yaml:"file_path"` // virtual path shown to the reviewer
	Language    string                `json:"language,omitempty" yaml:"language,omitempty"`
	Code        string                `json:"code" yaml:"code"`
	Expected    []model.ExpectedIssue `json:"expected_issues" yaml:"expected_issues"`
}

// IsClean reports whether this is a negative example.
func (e *Example) IsClean() bool {
	return len(e.Expected) == 0
}

// CategoryCounts tallies expected issues per category.
func (e *Example) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, issue := range e.Expected {
		counts[issue.Category]++
	}
	return counts
}

// Dataset is an ordered collection of examples loaded from one
// directory.
type Dataset struct {
	examples []Example
}

// Load reads all *.json, *.yaml, and *.yml fixtures from dir, in
// lexical filename order for reproducible run ordering.
func Load(dir string) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no fixture files in %s", dir)
	}
	sort.Strings(names)

	ds := &Dataset{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		ex, err := loadExample(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		ds.examples = append(ds.examples, ex)
	}

	if err := ds.validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// FromExamples builds a dataset from in-memory examples, applying the
// same validation as Load. Order is preserved.
func FromExamples(examples ...Example) (*Dataset, error) {
	ds := &Dataset{examples: examples}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func loadExample(path string) (Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Example{}, err
	}

	var ex Example
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &ex)
	} else {
		err = yaml.Unmarshal(data, &ex)
	}
	if err != nil {
		return Example{}, fmt.Errorf("parse fixture: %w", err)
	}

	if ex.ID == "" {
		ex.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if ex.Path == "" {
		ex.Path = ex.ID
	}
	return ex, nil
}

// validate rejects fixtures the matcher cannot score meaningfully.
func (d *Dataset) validate() error {
	seen := make(map[string]bool)
	for _, ex := range d.examples {
		if seen[ex.ID] {
			return fmt.Errorf("duplicate example id %q", ex.ID)
		}
		seen[ex.ID] = true
		if ex.Code == "" {
			return fmt.Errorf("example %q has no code", ex.ID)
		}
		ids := make(map[int]bool)
		for _, issue := range ex.Expected {
			if !issue.Lines.IsValid() {
				return fmt.Errorf("example %q issue %d: invalid line range", ex.ID, issue.ID)
			}
			if ids[issue.ID] {
				return fmt.Errorf("example %q: duplicate issue id %d", ex.ID, issue.ID)
			}
			ids[issue.ID] = true
		}
	}
	return nil
}

// All returns the examples in load order.
func (d *Dataset) All() []Example {
	return d.examples
}

// Size returns the number of examples.
func (d *Dataset) Size() int {
	return len(d.examples)
}

// ByID returns the example with the given id.
func (d *Dataset) ByID(id string) (Example, bool) {
	for _, ex := range d.examples {
		if ex.ID == id {
			return ex, true
		}
	}
	return Example{}, false
}

// FilterByCategory returns examples containing at least one expected
// issue of the given category.
func (d *Dataset) FilterByCategory(category string) []Example {
	var out []Example
	for _, ex := range d.examples {
		for _, issue := range ex.Expected {
			if issue.Category == category {
				out = append(out, ex)
				break
			}
		}
	}
	return out
}

// CleanExamples returns the negative examples.
func (d *Dataset) CleanExamples() []Example {
	var out []Example
	for _, ex := range d.examples {
		if ex.IsClean() {
			out = append(out, ex)
		}
	}
	return out
}

// CategoryDistribution counts examples per category across the
// dataset.
func (d *Dataset) CategoryDistribution() map[string]int {
	counts := make(map[string]int)
	for _, ex := range d.examples {
		for cat := range ex.CategoryCounts() {
			counts[cat]++
		}
	}
	return counts
}
