package llm

import (
	"testing"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
)

func TestParse_BareJSONArray(t *testing.T) {
	content := `[{"line": 42, "category": "logic-errors", "description": "off-by-one in loop bound"}]`

	issues := Parse(content, 3)
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}

	got := issues[0]
	if got.Lines != model.NewLine(42) {
		t.Errorf("Unexpected lines: %+v", got.Lines)
	}
	if got.Locationless {
		t.Error("Expected located issue")
	}
	if got.Category != "logic-errors" {
		t.Errorf("Unexpected category: %s", got.Category)
	}
	if got.ChunkIndex != 3 {
		t.Errorf("Unexpected chunk index: %d", got.ChunkIndex)
	}
}

func TestParse_FencedJSON(t *testing.T) {
	content := "Here is my review:\n```json\n[{\"line\": 7, \"category\": \"api-misuse\", \"description\": \"missing unlock\"}]\n```\nHope that helps."

	issues := Parse(content, 0)
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	if issues[0].Lines != model.NewLine(7) {
		t.Errorf("Unexpected lines: %+v", issues[0].Lines)
	}
}

func TestParse_EmptyArrayMeansClean(t *testing.T) {
	for _, content := range []string{"[]", "```json\n[]\n```", ""} {
		if issues := Parse(content, 0); len(issues) != 0 {
			t.Errorf("Parse(%q) = %d issues, want 0", content, len(issues))
		}
	}
}

func TestParse_LineRangeObject(t *testing.T) {
	content := `[{"line": {"start": 10, "end": 14}, "category": "edge-case-handling", "description": "empty input unhandled"}]`

	issues := Parse(content, 0)
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	want := model.LineRange{Start: 10, End: 14}
	if issues[0].Lines != want {
		t.Errorf("Unexpected lines: %+v", issues[0].Lines)
	}
}

func TestParse_LineAsString(t *testing.T) {
	content := `[{"line": "23", "category": "logic-errors", "description": "x"},
		{"line": "30-32", "category": "logic-errors", "description": "y"}]`

	issues := Parse(content, 0)
	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d", len(issues))
	}
	if issues[0].Lines != model.NewLine(23) {
		t.Errorf("Unexpected lines[0]: %+v", issues[0].Lines)
	}
	if (issues[1].Lines != model.LineRange{Start: 30, End: 32}) {
		t.Errorf("Unexpected lines[1]: %+v", issues[1].Lines)
	}
}

func TestParse_MissingLineIsLocationless(t *testing.T) {
	content := `[{"category": "semantic-inconsistency", "description": "function name says sort ascending but sorts descending"}]`

	issues := Parse(content, 0)
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	if !issues[0].Locationless {
		t.Error("Expected locationless issue")
	}
}

func TestParse_AlternateFieldNames(t *testing.T) {
	content := `[{"line_number": 5, "category": "logic-errors", "message": "dropped carry bit"}]`

	issues := Parse(content, 0)
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	if issues[0].Lines != model.NewLine(5) {
		t.Errorf("Unexpected lines: %+v", issues[0].Lines)
	}
	if issues[0].Description != "dropped carry bit" {
		t.Errorf("Unexpected description: %s", issues[0].Description)
	}
}

func TestParse_ProseWithLineMention(t *testing.T) {
	content := "There is a bug.\n\nOn line 18 the accumulator is reset inside the loop, so only the last element is summed."

	issues := Parse(content, 2)
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	if issues[0].Lines != model.NewLine(18) {
		t.Errorf("Unexpected lines: %+v", issues[0].Lines)
	}
	if issues[0].ChunkIndex != 2 {
		t.Errorf("Unexpected chunk index: %d", issues[0].ChunkIndex)
	}
}

func TestParse_ProseWithoutLineIsLocationless(t *testing.T) {
	content := "The error handling in this function silently swallows failures."

	issues := Parse(content, 0)
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d", len(issues))
	}
	if !issues[0].Locationless {
		t.Error("Expected locationless issue")
	}
}

func TestParse_CleanPhrasesYieldNothing(t *testing.T) {
	for _, content := range []string{
		"No issues found in this chunk.",
		"The code is clean and handles all edge cases.",
		"LGTM",
	} {
		if issues := Parse(content, 0); len(issues) != 0 {
			t.Errorf("Parse(%q) = %d issues, want 0", content, len(issues))
		}
	}
}
