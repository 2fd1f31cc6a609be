// Package metrics folds match classifications into precision, recall,
// and F1, overall and per category, and compares runs.
package metrics

import (
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
)

// Aggregator computes RunMetrics from match results.
type Aggregator struct{}

// NewAggregator creates an aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate folds one run's match results into RunMetrics. All ratios
// with a zero denominator are defined as 0, and per-category metrics
// partition results by the category of whichever side produced them:
// the expected issue's category for TPs and FNs, the detection's
// resolved category for FPs.
func (a *Aggregator) Aggregate(results []model.MatchResult) model.RunMetrics {
	var total model.Counts
	perCat := make(map[string]model.Counts)

	for _, r := range results {
		c := perCat[r.Category]
		switch r.Classification {
		case model.TruePositive:
			total.TP++
			c.TP++
		case model.FalsePositive:
			total.FP++
			c.FP++
		case model.FalseNegative:
			total.FN++
			c.FN++
		}
		perCat[r.Category] = c
	}

	return fromCounts(total, perCat)
}

// Fold combines per-file metrics into one dataset-level RunMetrics by
// summing raw counts first and recomputing the ratios. Averaging the
// per-file ratios would weight a two-issue file like a fifty-issue
// file, so it is never done here.
func (a *Aggregator) Fold(runs ...model.RunMetrics) model.RunMetrics {
	var total model.Counts
	perCat := make(map[string]model.Counts)
	incomplete := false

	for _, r := range runs {
		total = total.Add(r.Counts)
		for cat, cm := range r.PerCategory {
			perCat[cat] = perCat[cat].Add(cm.Counts)
		}
		if r.Incomplete {
			incomplete = true
		}
	}

	out := fromCounts(total, perCat)
	out.Incomplete = incomplete
	return out
}

// Compare produces the before/after delta of two runs for regression
// reporting. Categories present in either run appear in the result;
// a missing side contributes zeros.
func (a *Aggregator) Compare(before, after model.RunMetrics) model.MetricsDelta {
	delta := model.MetricsDelta{
		Precision: diff(before.Precision, after.Precision),
		Recall:    diff(before.Recall, after.Recall),
		F1:        diff(before.F1, after.F1),
	}

	cats := make(map[string]struct{})
	for c := range before.PerCategory {
		cats[c] = struct{}{}
	}
	for c := range after.PerCategory {
		cats[c] = struct{}{}
	}
	if len(cats) == 0 {
		return delta
	}

	per := make(map[string]map[string]model.MetricDelta, len(cats))
	for c := range cats {
		b := before.PerCategory[c]
		f := after.PerCategory[c]
		per[c] = map[string]model.MetricDelta{
			"precision": diff(b.Precision, f.Precision),
			"recall":    diff(b.Recall, f.Recall),
			"f1":        diff(b.F1, f.F1),
		}
	}
	delta.PerCategory = per
	return delta
}

func diff(before, after float64) model.MetricDelta {
	return model.MetricDelta{Before: before, After: after, Delta: after - before}
}

func fromCounts(total model.Counts, perCat map[string]model.Counts) model.RunMetrics {
	out := model.RunMetrics{
		Precision: total.Precision(),
		Recall:    total.Recall(),
		F1:        total.F1(),
		Counts:    total,
	}
	if len(perCat) > 0 {
		out.PerCategory = make(map[string]model.CategoryMetrics, len(perCat))
		for cat, c := range perCat {
			out.PerCategory[cat] = model.CategoryMetrics{
				Precision: c.Precision(),
				Recall:    c.Recall(),
				F1:        c.F1(),
				Counts:    c,
			}
		}
	}
	return out
}
