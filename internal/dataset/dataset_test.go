package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestLoad_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	writeFixture(t, dir, "b_offbyone.json", `{
		"id": "offbyone-001",
		"description": "loop bound off by one",
		"file_path": "loop.cpp",
		"language": "cpp",
		"code": "for (int i = 0; i <= n; i++) {}\n",
		"expected_issues": [
			{"id": 1, "lines": 1, "category": "logic-errors", "bug_type": "off-by-one", "severity": "high"}
		]
	}`)

	writeFixture(t, dir, "a_clean.yaml", `
id: clean-001
file_path: clean.cpp
code: |
  int add(int a, int b) { return a + b; }
expected_issues: []
`)

	ds, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if ds.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", ds.Size())
	}

	// Lexical filename order, not insertion order.
	if got := ds.All()[0].ID; got != "clean-001" {
		t.Errorf("first example = %q, want clean-001", got)
	}

	ex, ok := ds.ByID("offbyone-001")
	if !ok {
		t.Fatal("ByID(offbyone-001) not found")
	}
	if len(ex.Expected) != 1 {
		t.Fatalf("expected issues = %d, want 1", len(ex.Expected))
	}
	issue := ex.Expected[0]
	if issue.Lines.Start != 1 || issue.Lines.End != 1 {
		t.Errorf("scalar line annotation parsed as %+v", issue.Lines)
	}
	if issue.Category != "logic-errors" {
		t.Errorf("category = %q", issue.Category)
	}
}

func TestLoad_LineRangeObject(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "range.json", `{
		"id": "range-001",
		"file_path": "r.cpp",
		"code": "void f() {}\n",
		"expected_issues": [{"id": 1, "lines": {"start": 3, "end": 9}, "category": "edge-case-handling"}]
	}`)

	ds, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	issue := ds.All()[0].Expected[0]
	if issue.Lines.Start != 3 || issue.Lines.End != 9 {
		t.Errorf("range parsed as %+v", issue.Lines)
	}
}

func TestLoad_RejectsBadFixtures(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
	}{
		{"no code", `{"id": "x", "file_path": "x.cpp", "code": "", "expected_issues": []}`},
		{"invalid range", `{"id": "x", "file_path": "x.cpp", "code": "c\n", "expected_issues": [{"id": 1, "lines": 0, "category": "logic-errors"}]}`},
		{"duplicate issue id", `{"id": "x", "file_path": "x.cpp", "code": "c\n", "expected_issues": [
			{"id": 1, "lines": 1, "category": "logic-errors"},
			{"id": 1, "lines": 2, "category": "api-misuse"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFixture(t, dir, "bad.json", tt.fixture)
			if _, err := Load(dir); err == nil {
				t.Error("Load accepted an invalid fixture")
			}
		})
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load accepted an empty dataset directory")
	}
}

func TestDataset_Filters(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "one.json", `{"id": "one", "file_path": "1.cpp", "code": "a\n",
		"expected_issues": [{"id": 1, "lines": 1, "category": "logic-errors"}]}`)
	writeFixture(t, dir, "two.json", `{"id": "two", "file_path": "2.cpp", "code": "b\n",
		"expected_issues": [{"id": 1, "lines": 1, "category": "api-misuse"}, {"id": 2, "lines": 2, "category": "logic-errors"}]}`)
	writeFixture(t, dir, "zed.json", `{"id": "zed", "file_path": "3.cpp", "code": "c\n", "expected_issues": []}`)

	ds, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := len(ds.FilterByCategory("logic-errors")); got != 2 {
		t.Errorf("FilterByCategory(logic-errors) = %d, want 2", got)
	}
	if got := len(ds.CleanExamples()); got != 1 {
		t.Errorf("CleanExamples() = %d, want 1", got)
	}

	dist := ds.CategoryDistribution()
	if dist["logic-errors"] != 2 || dist["api-misuse"] != 1 {
		t.Errorf("CategoryDistribution() = %v", dist)
	}
}
