// Package merge recombines per-chunk reviewer output into one
// file-level issue list: chunk-local lines become file-global lines and
// issues reported redundantly across overlapping chunk boundaries
// collapse to a single representative.
package merge

import (
	"sort"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/chunk"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/taxonomy"
)

// Merger converts and deduplicates chunk results. Pure and
// synchronous; the caller is responsible for having collected all
// chunks of a file before merging (the full-file barrier).
type Merger struct {
	vocab *taxonomy.Vocabulary
}

// New creates a merger using the given category vocabulary for
// duplicate compatibility decisions.
func New(vocab *taxonomy.Vocabulary) *Merger {
	return &Merger{vocab: vocab}
}

// Merge remaps every chunk-local issue location to file-global
// coordinates and drops cross-chunk duplicates, keeping the first-seen
// representative. perChunk must be indexed identically to chunks.
// Issues without usable location information are retained and marked
// locationless; they participate in matching by category only.
func (m *Merger) Merge(chunks []chunk.Chunk, perChunk [][]model.DetectedIssue) []model.DetectedIssue {
	var global []model.DetectedIssue

	for i, c := range chunks {
		if i >= len(perChunk) {
			break
		}
		for _, d := range perChunk[i] {
			d.ChunkIndex = c.Index
			if d.Locationless || !d.Lines.IsValid() {
				d.Locationless = true
				d.Lines = model.LineRange{}
			} else {
				d.Lines = model.LineRange{
					Start: c.ToGlobal(d.Lines.Start),
					End:   c.ToGlobal(d.Lines.End),
				}
			}
			global = append(global, d)
		}
	}

	deduped := m.dedupe(global)

	// Stable presentation order: located issues by line, locationless
	// last, original order otherwise.
	sort.SliceStable(deduped, func(i, j int) bool {
		a, b := deduped[i], deduped[j]
		if a.Locationless != b.Locationless {
			return !a.Locationless
		}
		if a.Locationless {
			return false
		}
		return a.Lines.Start < b.Lines.Start
	})

	return deduped
}

// dedupe collapses issues that describe the same real-world finding:
// overlapping global line ranges from different chunks with compatible
// categories. First-seen wins, so chunk order decides the
// representative deterministically.
func (m *Merger) dedupe(issues []model.DetectedIssue) []model.DetectedIssue {
	var kept []model.DetectedIssue

	for _, d := range issues {
		dup := false
		for _, k := range kept {
			if m.sameIssue(k, d) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, d)
		}
	}
	return kept
}

// sameIssue decides whether two issues from different chunks are the
// same finding. Locationless issues never merge; a wrong collapse there
// would hide a potential false positive.
func (m *Merger) sameIssue(a, b model.DetectedIssue) bool {
	if a.ChunkIndex == b.ChunkIndex {
		return false
	}
	if a.Locationless || b.Locationless {
		return false
	}
	if !a.Lines.Overlaps(b.Lines) {
		return false
	}
	return m.categoriesCompatible(a.Category, b.Category)
}

// categoriesCompatible applies the merge compatibility rule: exact
// match, or either side unset, or both normalize to the same
// vocabulary entry.
func (m *Merger) categoriesCompatible(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return true
	}
	na := m.vocab.Normalize(a)
	nb := m.vocab.Normalize(b)
	if na == taxonomy.CategoryUnknown || nb == taxonomy.CategoryUnknown {
		return false
	}
	return na == nb
}
