package taxonomy

import "strings"

// CategoryUnknown is the bucket for detections whose category cannot be
// normalized into the vocabulary. Such issues are reported under their
// own bucket, never discarded.
const CategoryUnknown = "unknown"

// Vocabulary is a versioned, closed set of bug categories plus the
// normalization rules that map free-text reviewer categories into it.
// A vocabulary is passed explicitly wherever category decisions are
// made, so experiments with different taxonomies stay reproducible.
type Vocabulary struct {
	version    string
	categories []string
	aliases    map[string]string
	keywords   []keywordRule
}

// keywordRule maps a substring hit to a canonical category.
type keywordRule struct {
	substr   string
	category string
}

// Version returns the vocabulary version identifier.
func (v *Vocabulary) Version() string {
	return v.version
}

// Categories returns the closed category set, in stable order.
func (v *Vocabulary) Categories() []string {
	out := make([]string, len(v.categories))
	copy(out, v.categories)
	return out
}

// Contains reports whether category is a canonical vocabulary entry.
func (v *Vocabulary) Contains(category string) bool {
	for _, c := range v.categories {
		if c == category {
			return true
		}
	}
	return false
}

// Normalize maps a free-text category to its canonical vocabulary entry.
// Lookup order: direct alias table (with hyphen/underscore folding),
// then keyword substring rules. Unmatched input normalizes to
// CategoryUnknown.
func (v *Vocabulary) Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return CategoryUnknown
	}

	if c, ok := v.aliases[s]; ok {
		return c
	}
	if c, ok := v.aliases[strings.ReplaceAll(s, "_", "-")]; ok {
		return c
	}
	if c, ok := v.aliases[strings.ReplaceAll(s, "-", "_")]; ok {
		return c
	}

	for _, rule := range v.keywords {
		if strings.Contains(s, rule.substr) {
			return rule.category
		}
	}

	return CategoryUnknown
}

// Compatible reports whether a free-text detected category can stand in
// for a canonical expected category. An exact canonical match is always
// compatible; otherwise the detected text must normalize to the expected
// category. An empty detected category is compatible with nothing here;
// locationless handling is the caller's policy.
func (v *Vocabulary) Compatible(expected, detected string) bool {
	if detected == "" {
		return false
	}
	d := strings.ToLower(strings.TrimSpace(detected))
	if d == expected {
		return true
	}
	return v.Normalize(detected) == expected
}

// ExactMatch reports whether the detected category, after case and
// whitespace folding only, equals the expected canonical category.
func ExactMatch(expected, detected string) bool {
	return strings.ToLower(strings.TrimSpace(detected)) == expected
}

// Default returns the v1 vocabulary: the five semantic-review categories
// the ground-truth datasets are annotated with, plus the alias and
// keyword rules accumulated from observed reviewer output.
func Default() *Vocabulary {
	categories := []string{
		"logic-errors",           // off-by-one, wrong operators, boolean mistakes
		"api-misuse",             // wrong API usage, missing cleanup in error paths
		"semantic-inconsistency", // behavior does not match naming/docs
		"edge-case-handling",     // missing boundary checks, unhandled edge cases
		"code-intent-mismatch",   // code does not match stated requirements
	}

	aliases := map[string]string{
		"logic-errors":           "logic-errors",
		"api-misuse":             "api-misuse",
		"semantic-inconsistency": "semantic-inconsistency",
		"edge-case-handling":     "edge-case-handling",
		"code-intent-mismatch":   "code-intent-mismatch",

		"code-quality":     "edge-case-handling",
		"error-handling":   "edge-case-handling",
		"null-check":       "edge-case-handling",
		"boundary-check":   "edge-case-handling",
		"division-by-zero": "edge-case-handling",
		"empty-check":      "edge-case-handling",
		"input-validation": "edge-case-handling",

		"logic-error":      "logic-errors",
		"logical-error":    "logic-errors",
		"off-by-one":       "logic-errors",
		"boolean-logic":    "logic-errors",
		"integer-division": "logic-errors",
		"arithmetic-error": "logic-errors",
		"operator-error":   "logic-errors",

		"resource-leak":   "api-misuse",
		"memory-leak":     "api-misuse",
		"file-leak":       "api-misuse",
		"api-usage":       "api-misuse",
		"cleanup-missing": "api-misuse",

		"naming-issue":           "semantic-inconsistency",
		"side-effect":            "semantic-inconsistency",
		"documentation-mismatch": "semantic-inconsistency",
		"misleading-name":        "semantic-inconsistency",

		"requirement-mismatch":   "code-intent-mismatch",
		"specification-mismatch": "code-intent-mismatch",
	}

	// Keyword rules are ordered; first hit wins.
	keywords := []keywordRule{
		{"logic", "logic-errors"},
		{"boolean", "logic-errors"},
		{"operator", "logic-errors"},
		{"api", "api-misuse"},
		{"resource", "api-misuse"},
		{"leak", "api-misuse"},
		{"semantic", "semantic-inconsistency"},
		{"naming", "semantic-inconsistency"},
		{"side", "semantic-inconsistency"},
		{"edge", "edge-case-handling"},
		{"boundary", "edge-case-handling"},
		{"empty", "edge-case-handling"},
		{"null", "edge-case-handling"},
		{"intent", "code-intent-mismatch"},
		{"requirement", "code-intent-mismatch"},
		{"mismatch", "code-intent-mismatch"},
		{"quality", "edge-case-handling"},
		{"check", "edge-case-handling"},
		{"validation", "edge-case-handling"},
	}

	return &Vocabulary{
		version:    "v1",
		categories: categories,
		aliases:    aliases,
		keywords:   keywords,
	}
}

// ForVersion returns the vocabulary for a version identifier. Unknown
// versions fall back to the default so a stale config cannot abort a
// run.
func ForVersion(version string) *Vocabulary {
	switch version {
	case "", "v1":
		return Default()
	default:
		return Default()
	}
}
