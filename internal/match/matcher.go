// Package match pairs ground-truth issues with reviewer detections and
// classifies every issue as a true positive, false positive, or false
// negative.
//
// The pairing is a scored greedy one-to-one matching, not an optimal
// bipartite assignment. At the issue counts this harness sees (tens per
// file), determinism and O(n*m) cost matter more than squeezing out the
// last globally-optimal pair.
package match

import (
	"sort"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/taxonomy"
)

// Matcher pairs expected and detected issues under a line-tolerance
// window and category compatibility rules. Pure and deterministic.
type Matcher struct {
	tolerance int
	vocab     *taxonomy.Vocabulary
}

// New creates a matcher. The tolerance window and the vocabulary are
// experiment configuration, not constants of the harness.
func New(cfg model.MatchingConfig, vocab *taxonomy.Vocabulary) *Matcher {
	tol := cfg.LineTolerance
	if tol < 0 {
		tol = 0
	}
	return &Matcher{tolerance: tol, vocab: vocab}
}

// candidate is one admissible expected/detected pairing with its score.
type candidate struct {
	expIdx int
	detIdx int
	score  int
}

// Pair scores. Category agreement dominates, then line proximity:
// every line of distance costs one point below the proximity ceiling.
const (
	scoreCategoryExact      = 1000
	scoreCategoryCompatible = 500
	scoreProximityCeiling   = 100
)

// Match classifies every issue on both sides. Each ExpectedIssue pairs
// with at most one DetectedIssue and vice versa; unclaimed expected
// issues become false negatives, unclaimed detections false positives.
func (m *Matcher) Match(expected []model.ExpectedIssue, detected []model.DetectedIssue) []model.MatchResult {
	candidates := m.collectCandidates(expected, detected)

	// Highest score first; ties break on lowest expected id, then
	// lowest detected index, so the selection order never depends on
	// map iteration or input shuffling.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if expected[a.expIdx].ID != expected[b.expIdx].ID {
			return expected[a.expIdx].ID < expected[b.expIdx].ID
		}
		return a.detIdx < b.detIdx
	})

	expClaimed := make([]bool, len(expected))
	detClaimed := make([]bool, len(detected))
	pairedDet := make([]int, len(expected))
	for i := range pairedDet {
		pairedDet[i] = -1
	}

	for _, c := range candidates {
		if expClaimed[c.expIdx] || detClaimed[c.detIdx] {
			continue
		}
		expClaimed[c.expIdx] = true
		detClaimed[c.detIdx] = true
		pairedDet[c.expIdx] = c.detIdx
	}

	results := make([]model.MatchResult, 0, len(expected)+len(detected))

	for i, e := range expected {
		id := e.ID
		if j := pairedDet[i]; j >= 0 {
			d := detected[j]
			results = append(results, model.MatchResult{
				ExpectedID:     &id,
				Detected:       &d,
				Classification: model.TruePositive,
				Category:       e.Category,
			})
		} else {
			results = append(results, model.MatchResult{
				ExpectedID:     &id,
				Classification: model.FalseNegative,
				Category:       e.Category,
			})
		}
	}

	for j, d := range detected {
		if detClaimed[j] {
			continue
		}
		d := d
		results = append(results, model.MatchResult{
			Detected:       &d,
			Classification: model.FalsePositive,
			Category:       m.vocab.Normalize(d.Category),
		})
	}

	return results
}

// collectCandidates builds the admissible pair set. A pair qualifies
// when the line ranges overlap or sit within the tolerance window, or
// when the detection is locationless but category-compatible.
func (m *Matcher) collectCandidates(expected []model.ExpectedIssue, detected []model.DetectedIssue) []candidate {
	var out []candidate
	for i, e := range expected {
		for j, d := range detected {
			score, ok := m.scorePair(e, d)
			if !ok {
				continue
			}
			out = append(out, candidate{expIdx: i, detIdx: j, score: score})
		}
	}
	return out
}

// scorePair scores one admissible pair. Exact category beats
// compatible category; among equal category agreement, smaller line
// distance scores higher.
func (m *Matcher) scorePair(e model.ExpectedIssue, d model.DetectedIssue) (int, bool) {
	exact := taxonomy.ExactMatch(e.Category, d.Category)
	compatible := exact || m.vocab.Compatible(e.Category, d.Category)

	if d.Locationless {
		if !compatible {
			return 0, false
		}
		score := scoreCategoryCompatible
		if exact {
			score = scoreCategoryExact
		}
		// No proximity credit without a location.
		return score, true
	}

	dist := e.Lines.Distance(d.Lines)
	if dist > m.tolerance {
		return 0, false
	}

	score := 0
	switch {
	case exact:
		score = scoreCategoryExact
	case compatible:
		score = scoreCategoryCompatible
	}
	proximity := scoreProximityCeiling - dist
	if proximity < 0 {
		proximity = 0
	}
	return score + proximity, true
}
