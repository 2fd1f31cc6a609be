package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/chunk"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/taxonomy"
)

func twoChunks() []chunk.Chunk {
	return []chunk.Chunk{
		{Index: 0, OffsetLine: 1, AuthStart: 1, AuthEnd: 100},
		{Index: 1, OffsetLine: 96, AuthStart: 101, AuthEnd: 200, ContextLines: 5},
	}
}

func TestMerger_RemapsToGlobalLines(t *testing.T) {
	m := New(taxonomy.Default())

	perChunk := [][]model.DetectedIssue{
		{{Lines: model.NewLine(29), Category: "logic-errors"}},
		{{Lines: model.NewLine(10), Category: "api-misuse"}},
	}

	got := m.Merge(twoChunks(), perChunk)
	require.Len(t, got, 2)

	assert.Equal(t, 29, got[0].Lines.Start, "chunk 0 is identity-mapped")
	// Chunk 1 starts at global 96 (5 context lines before auth 101):
	// local 10 -> 96 + 10 - 1 = 105.
	assert.Equal(t, 105, got[1].Lines.Start)
}

func TestMerger_DeduplicatesBoundaryOverlap(t *testing.T) {
	// The same bug reported by both chunks in the boundary overlap
	// region must merge into a single issue before matching.
	m := New(taxonomy.Default())

	perChunk := [][]model.DetectedIssue{
		{{Lines: model.NewLine(98), Category: "logic-errors", Description: "first sighting"}},
		{{Lines: model.NewLine(3), Category: "logic-error", Description: "second sighting"}}, // local 3 -> global 98
	}

	got := m.Merge(twoChunks(), perChunk)
	require.Len(t, got, 1, "overlapping compatible issues must collapse")
	assert.Equal(t, "first sighting", got[0].Description, "first-seen representative wins")
}

func TestMerger_KeepsDistinctCategories(t *testing.T) {
	m := New(taxonomy.Default())

	perChunk := [][]model.DetectedIssue{
		{{Lines: model.NewLine(98), Category: "logic-errors"}},
		{{Lines: model.NewLine(3), Category: "memory-leak"}}, // same global line, api-misuse family
	}

	got := m.Merge(twoChunks(), perChunk)
	assert.Len(t, got, 2, "incompatible categories are distinct findings")
}

func TestMerger_SameChunkNeverDedupes(t *testing.T) {
	// Two reports from one chunk are the reviewer repeating itself,
	// which stays visible as a false positive.
	m := New(taxonomy.Default())

	perChunk := [][]model.DetectedIssue{
		{
			{Lines: model.NewLine(10), Category: "logic-errors"},
			{Lines: model.NewLine(10), Category: "logic-errors"},
		},
	}

	got := m.Merge(twoChunks()[:1], perChunk)
	assert.Len(t, got, 2)
}

func TestMerger_LocationlessRetained(t *testing.T) {
	m := New(taxonomy.Default())

	perChunk := [][]model.DetectedIssue{
		{{Locationless: true, Category: "api-misuse", Description: "somewhere"}},
		{{Lines: model.LineRange{Start: 0, End: 0}, Category: "logic-errors"}}, // unparseable range
	}

	got := m.Merge(twoChunks(), perChunk)
	require.Len(t, got, 2)
	for _, d := range got {
		assert.True(t, d.Locationless, "invalid locations are marked, never dropped")
		assert.False(t, d.Lines.IsValid())
	}
}

func TestMerger_SortsLocatedFirstByLine(t *testing.T) {
	m := New(taxonomy.Default())

	perChunk := [][]model.DetectedIssue{
		{
			{Locationless: true, Category: "api-misuse"},
			{Lines: model.NewLine(50), Category: "logic-errors"},
			{Lines: model.NewLine(7), Category: "edge-case-handling"},
		},
	}

	got := m.Merge(twoChunks()[:1], perChunk)
	require.Len(t, got, 3)
	assert.Equal(t, 7, got[0].Lines.Start)
	assert.Equal(t, 50, got[1].Lines.Start)
	assert.True(t, got[2].Locationless)
}

func TestMerger_EmptyInput(t *testing.T) {
	m := New(taxonomy.Default())
	assert.Empty(t, m.Merge(nil, nil))
	assert.Empty(t, m.Merge(twoChunks(), [][]model.DetectedIssue{{}, {}}))
}
