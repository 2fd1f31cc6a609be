package match

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/taxonomy"
)

func newMatcher(tolerance int) *Matcher {
	return New(model.MatchingConfig{LineTolerance: tolerance}, taxonomy.Default())
}

func classCounts(results []model.MatchResult) (tp, fp, fn int) {
	for _, r := range results {
		switch r.Classification {
		case model.TruePositive:
			tp++
		case model.FalsePositive:
			fp++
		case model.FalseNegative:
			fn++
		}
	}
	return
}

func TestMatcher_ExactHit(t *testing.T) {
	m := newMatcher(1)

	expected := []model.ExpectedIssue{{ID: 1, Lines: model.NewLine(29), Category: "logic-errors"}}
	detected := []model.DetectedIssue{{Lines: model.NewLine(29), Category: "logic-errors"}}

	results := m.Match(expected, detected)
	tp, fp, fn := classCounts(results)
	assert.Equal(t, 1, tp)
	assert.Equal(t, 0, fp)
	assert.Equal(t, 0, fn)
}

func TestMatcher_MissedIssue(t *testing.T) {
	m := newMatcher(1)

	expected := []model.ExpectedIssue{{ID: 1, Lines: model.NewLine(50), Category: "api-misuse"}}

	results := m.Match(expected, nil)
	require.Len(t, results, 1)
	assert.Equal(t, model.FalseNegative, results[0].Classification)
	assert.Equal(t, "api-misuse", results[0].Category)
	require.NotNil(t, results[0].ExpectedID)
	assert.Equal(t, 1, *results[0].ExpectedID)
	assert.Nil(t, results[0].Detected)
}

func TestMatcher_SpuriousDetection(t *testing.T) {
	m := newMatcher(1)

	detected := []model.DetectedIssue{{Lines: model.NewLine(10), Category: "semantic-inconsistency"}}

	results := m.Match(nil, detected)
	require.Len(t, results, 1)
	assert.Equal(t, model.FalsePositive, results[0].Classification)
	assert.Equal(t, "semantic-inconsistency", results[0].Category)
	assert.Nil(t, results[0].ExpectedID)
}

func TestMatcher_ToleranceWindow(t *testing.T) {
	expected := []model.ExpectedIssue{{ID: 1, Lines: model.NewLine(40), Category: "logic-errors"}}

	within := []model.DetectedIssue{{Lines: model.NewLine(42), Category: "logic-errors"}}
	results := New(model.MatchingConfig{LineTolerance: 2}, taxonomy.Default()).Match(expected, within)
	tp, _, _ := classCounts(results)
	assert.Equal(t, 1, tp, "distance 2 within tolerance 2 must match")

	results = New(model.MatchingConfig{LineTolerance: 1}, taxonomy.Default()).Match(expected, within)
	tp, fp, fn := classCounts(results)
	assert.Equal(t, 0, tp, "distance 2 outside tolerance 1 must not match")
	assert.Equal(t, 1, fp)
	assert.Equal(t, 1, fn)
}

func TestMatcher_ExactCategoryBeatsCompatible(t *testing.T) {
	m := newMatcher(3)

	expected := []model.ExpectedIssue{{ID: 1, Lines: model.NewLine(20), Category: "logic-errors"}}
	detected := []model.DetectedIssue{
		{Lines: model.NewLine(20), Category: "off-by-one", Description: "compatible"},
		{Lines: model.NewLine(22), Category: "logic-errors", Description: "exact but farther"},
	}

	results := m.Match(expected, detected)
	for _, r := range results {
		if r.Classification == model.TruePositive {
			assert.Equal(t, "exact but farther", r.Detected.Description,
				"exact category outranks proximity with compatible category")
		}
	}
}

func TestMatcher_CloserDetectionWins(t *testing.T) {
	m := newMatcher(3)

	expected := []model.ExpectedIssue{{ID: 1, Lines: model.NewLine(20), Category: "logic-errors"}}
	detected := []model.DetectedIssue{
		{Lines: model.NewLine(23), Category: "logic-errors", Description: "far"},
		{Lines: model.NewLine(20), Category: "logic-errors", Description: "near"},
	}

	results := m.Match(expected, detected)
	tp, fp, _ := classCounts(results)
	assert.Equal(t, 1, tp)
	assert.Equal(t, 1, fp, "the losing overlapping detection stays a false positive")
	for _, r := range results {
		if r.Classification == model.TruePositive {
			assert.Equal(t, "near", r.Detected.Description)
		}
	}
}

func TestMatcher_LocationlessMatchesByCategory(t *testing.T) {
	m := newMatcher(1)

	expected := []model.ExpectedIssue{{ID: 1, Lines: model.NewLine(70), Category: "api-misuse"}}
	detected := []model.DetectedIssue{{Locationless: true, Category: "resource-leak"}}

	results := m.Match(expected, detected)
	tp, _, _ := classCounts(results)
	assert.Equal(t, 1, tp, "locationless detection pairs via category compatibility")
}

func TestMatcher_LocationlessIncompatibleStaysFP(t *testing.T) {
	m := newMatcher(1)

	expected := []model.ExpectedIssue{{ID: 1, Lines: model.NewLine(70), Category: "api-misuse"}}
	detected := []model.DetectedIssue{{Locationless: true, Category: "off-by-one"}}

	results := m.Match(expected, detected)
	tp, fp, fn := classCounts(results)
	assert.Equal(t, 0, tp)
	assert.Equal(t, 1, fp)
	assert.Equal(t, 1, fn)
}

func TestMatcher_RangeSpanningOneTPOnly(t *testing.T) {
	// One expected range overlapped by several detections yields
	// exactly one TP; the rest are distinct-but-overlapping reports
	// and stay FPs.
	m := newMatcher(0)

	expected := []model.ExpectedIssue{{ID: 1, Lines: model.LineRange{Start: 10, End: 30}, Category: "edge-case-handling"}}
	detected := []model.DetectedIssue{
		{Lines: model.NewLine(12), Category: "edge-case-handling"},
		{Lines: model.NewLine(25), Category: "edge-case-handling"},
		{Lines: model.NewLine(29), Category: "edge-case-handling"},
	}

	results := m.Match(expected, detected)
	tp, fp, fn := classCounts(results)
	assert.Equal(t, 1, tp)
	assert.Equal(t, 2, fp)
	assert.Equal(t, 0, fn)
}

func TestMatcher_ConservationLaw(t *testing.T) {
	m := newMatcher(2)

	expected := []model.ExpectedIssue{
		{ID: 1, Lines: model.NewLine(10), Category: "logic-errors"},
		{ID: 2, Lines: model.NewLine(40), Category: "api-misuse"},
		{ID: 3, Lines: model.NewLine(90), Category: "edge-case-handling"},
	}
	detected := []model.DetectedIssue{
		{Lines: model.NewLine(11), Category: "logic-errors"},
		{Lines: model.NewLine(70), Category: "semantic-inconsistency"},
		{Locationless: true, Category: "boundary-check"},
		{Lines: model.NewLine(200), Category: "logic-errors"},
	}

	results := m.Match(expected, detected)
	tp, fp, fn := classCounts(results)
	assert.Equal(t, len(expected), tp+fn, "TP+FN must equal |expected|")
	assert.Equal(t, len(detected), tp+fp, "TP+FP must equal |detected|")
}

func TestMatcher_Determinism(t *testing.T) {
	m := newMatcher(2)

	expected := []model.ExpectedIssue{
		{ID: 2, Lines: model.NewLine(20), Category: "logic-errors"},
		{ID: 1, Lines: model.NewLine(21), Category: "logic-errors"},
	}
	detected := []model.DetectedIssue{
		{Lines: model.NewLine(20), Category: "logic-errors", Description: "a"},
		{Lines: model.NewLine(21), Category: "logic-errors", Description: "b"},
	}

	first := m.Match(expected, detected)
	for i := 0; i < 10; i++ {
		again := m.Match(expected, detected)
		require.True(t, reflect.DeepEqual(first, again), "matching must be bit-identical across runs")
	}
}

func TestMatcher_UnknownCategoryFPBucket(t *testing.T) {
	m := newMatcher(1)

	detected := []model.DetectedIssue{{Lines: model.NewLine(5), Category: "mystery-stuff"}}
	results := m.Match(nil, detected)
	require.Len(t, results, 1)
	assert.Equal(t, taxonomy.CategoryUnknown, results[0].Category,
		"unnormalizable category lands in the unknown bucket, never discarded")
}
