package model

// Counts holds raw classification tallies. Fold runs by summing these,
// never by averaging derived ratios.
type Counts struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Add returns the element-wise sum of two tallies.
func (c Counts) Add(o Counts) Counts {
	return Counts{TP: c.TP + o.TP, FP: c.FP + o.FP, FN: c.FN + o.FN}
}

// Precision is TP/(TP+FP), defined as 0 when the denominator is 0.
func (c Counts) Precision() float64 {
	if c.TP+c.FP == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FP)
}

// Recall is TP/(TP+FN), defined as 0 when the denominator is 0.
func (c Counts) Recall() float64 {
	if c.TP+c.FN == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FN)
}

// F1 is the harmonic mean of precision and recall, 0 when both are 0.
func (c Counts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// CategoryMetrics are the derived ratios for one category bucket.
type CategoryMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Counts    Counts  `json:"counts"`
}

// RunMetrics is the scored outcome of one file, dataset, or experiment
// run. Derived and recomputed per run, never persisted as mutable state.
type RunMetrics struct {
	Precision   float64                    `json:"precision"`
	Recall      float64                    `json:"recall"`
	F1          float64                    `json:"f1"`
	Counts      Counts                     `json:"counts"`
	PerCategory map[string]CategoryMetrics `json:"per_category,omitempty"`

	// Incomplete marks a run whose remaining file evaluations were
	// abandoned by timeout or cancellation.
	Incomplete bool `json:"incomplete,omitempty"`
}

// MetricDelta is one before/after pair in a run comparison.
type MetricDelta struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Delta  float64 `json:"delta"`
}

// MetricsDelta compares two runs metric by metric for regression
// reporting.
type MetricsDelta struct {
	Precision   MetricDelta                       `json:"precision"`
	Recall      MetricDelta                       `json:"recall"`
	F1          MetricDelta                       `json:"f1"`
	PerCategory map[string]map[string]MetricDelta `json:"per_category,omitempty"`
}
