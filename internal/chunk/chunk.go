package chunk

import "fmt"

// UnitKind classifies a semantic node extracted from a source file.
type UnitKind string

const (
	KindFunction  UnitKind = "function"
	KindClass     UnitKind = "class"
	KindNamespace UnitKind = "namespace"
	KindBlock     UnitKind = "block"  // free statements, includes, globals
	KindWindow    UnitKind = "window" // fallback fixed-size line window
)

// SourceUnit is one semantic node: a function, class, namespace, or a
// run of free statements. Units are non-overlapping, ordered, and cover
// the file contiguously.
type SourceUnit struct {
	StartLine int      `json:"start_line"` // 1-indexed, inclusive
	EndLine   int      `json:"end_line"`   // inclusive
	Kind      UnitKind `json:"kind"`
	ByteSize  int      `json:"byte_size"`
}

// LineCount returns the number of lines the unit spans.
func (u SourceUnit) LineCount() int {
	return u.EndLine - u.StartLine + 1
}

// Chunk is a contiguous run of source units sized to the token budget,
// plus an optional non-authoritative context prefix repeated from the
// previous chunk.
type Chunk struct {
	Index int `json:"index"`

	// OffsetLine is the file-global line number of the chunk body's
	// first line (context included). Chunk-local line k maps to global
	// line OffsetLine + k - 1.
	OffsetLine int `json:"offset_line"`

	// AuthStart/AuthEnd delimit the authoritative line range. The
	// authoritative ranges of all chunks partition the file exactly;
	// lines before AuthStart are repeated context.
	AuthStart int `json:"auth_start"`
	AuthEnd   int `json:"auth_end"`

	// ContextLines counts non-authoritative prefix lines.
	ContextLines int `json:"context_lines,omitempty"`

	// Oversized marks a single unit that alone exceeds the budget and
	// was emitted as its own chunk. A quality warning, not an error.
	Oversized bool `json:"oversized,omitempty"`

	Units []SourceUnit `json:"units"`

	Header string `json:"header"`
	Body   string `json:"body"`
}

// ToGlobal converts a chunk-local 1-indexed line to the file-global
// line, clamped into the chunk's line span so a slightly-off reviewer
// mention never escapes the chunk.
func (c Chunk) ToGlobal(local int) int {
	g := c.OffsetLine + local - 1
	if g < c.OffsetLine {
		g = c.OffsetLine
	}
	if g > c.AuthEnd {
		g = c.AuthEnd
	}
	return g
}

// Result is the outcome of chunking one file.
type Result struct {
	Chunks    []Chunk `json:"chunks"`
	LineCount int     `json:"line_count"`

	// UsedFallback reports that structural parsing failed and
	// fixed-size line windows were used instead. A degraded mode the
	// caller must surface, not an error.
	UsedFallback bool `json:"used_fallback,omitempty"`
}

// header renders the fixed chunk preamble restating file identity and
// line offset for the reviewer.
func header(path string, authStart, authEnd int) string {
	return fmt.Sprintf("// file: %s\n// lines: %d-%d\n", path, authStart, authEnd)
}
