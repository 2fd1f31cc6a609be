package chunk

import (
	"strings"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
)

// bytesPerToken is the estimation coefficient for the language-agnostic
// size unit: tokens ~ ceil(utf8 bytes / 4).
const bytesPerToken = 4

// Chunker splits one source file into an ordered sequence of
// semantically bounded chunks sized to a token budget, preserving
// global line numbers. Pure and deterministic: identical input and
// budget always produce identical boundaries.
type Chunker struct {
	budget       int
	contextLines int
	language     string
}

// New creates a chunker from configuration.
func New(cfg model.ChunkingConfig) *Chunker {
	budget := cfg.Budget
	if budget <= 0 {
		budget = model.DefaultConfig().Chunking.Budget
	}
	ctx := cfg.ContextLines
	if ctx < 0 {
		ctx = 0
	}
	return &Chunker{
		budget:       budget,
		contextLines: ctx,
		language:     strings.ToLower(cfg.Language),
	}
}

// EstimateTokens approximates the token cost of a piece of text.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + bytesPerToken - 1) / bytesPerToken
}

// Split chunks one source file. Structural parse failure degrades to
// fixed-size line windows and is reported via Result.UsedFallback,
// never as an error.
func (c *Chunker) Split(path, source string) Result {
	lines := splitLines(source)
	res := Result{LineCount: len(lines)}
	if len(lines) == 0 {
		return res
	}

	units, ok := scanUnits(lines, c.language)
	if !ok {
		units = windowUnits(lines)
		res.UsedFallback = true
	}

	res.Chunks = c.accumulate(path, lines, units)
	return res
}

// accumulate greedily packs consecutive units into chunks while the
// running token estimate, header and context prefix included, stays
// within budget. A single unit that cannot fit even in an otherwise
// empty chunk becomes its own chunk, flagged oversized.
func (c *Chunker) accumulate(path string, lines []string, units []SourceUnit) []Chunk {
	var chunks []Chunk
	var current []SourceUnit
	running := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, c.build(path, lines, current, len(chunks), false))
		current = nil
		running = 0
	}

	for _, u := range units {
		cost := unitTokens(u)
		if len(current) > 0 && running+cost > c.budget {
			flush()
		}
		if len(current) == 0 {
			running = c.overheadTokens(path, lines, u, len(chunks))
		}
		if len(current) == 0 && running+cost > c.budget {
			chunks = append(chunks, c.build(path, lines, []SourceUnit{u}, len(chunks), true))
			running = 0
			continue
		}
		current = append(current, u)
		running += cost
	}
	flush()

	return chunks
}

// overheadTokens estimates the tokens a chunk starting at first spends
// outside its units: the rendered header plus the context prefix. The
// chunk's final end line is unknown while packing; the first unit's end
// stands in for the byte estimate.
func (c *Chunker) overheadTokens(path string, lines []string, first SourceUnit, index int) int {
	size := len(header(path, first.StartLine, first.EndLine))
	if index > 0 {
		ctx := c.contextLines
		if ctx > first.StartLine-1 {
			ctx = first.StartLine - 1
		}
		for i := first.StartLine - 1 - ctx; i < first.StartLine-1; i++ {
			size += len(lines[i]) + 1
		}
	}
	return (size + bytesPerToken - 1) / bytesPerToken
}

// build renders one chunk from a run of units, prepending up to
// contextLines non-authoritative lines from before the run.
func (c *Chunker) build(path string, lines []string, units []SourceUnit, index int, oversized bool) Chunk {
	authStart := units[0].StartLine
	authEnd := units[len(units)-1].EndLine

	ctxLines := c.contextLines
	if ctxLines > authStart-1 {
		ctxLines = authStart - 1
	}
	if index == 0 {
		ctxLines = 0
	}
	offset := authStart - ctxLines

	var b strings.Builder
	for i := offset - 1; i < authEnd; i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}

	return Chunk{
		Index:        index,
		OffsetLine:   offset,
		AuthStart:    authStart,
		AuthEnd:      authEnd,
		ContextLines: ctxLines,
		Oversized:    oversized,
		Units:        units,
		Header:       header(path, authStart, authEnd),
		Body:         b.String(),
	}
}

func unitTokens(u SourceUnit) int {
	return (u.ByteSize + bytesPerToken - 1) / bytesPerToken
}

// splitLines splits source into lines without a trailing phantom line
// for a final newline.
func splitLines(source string) []string {
	if source == "" {
		return nil
	}
	source = strings.TrimSuffix(source, "\n")
	return strings.Split(source, "\n")
}
