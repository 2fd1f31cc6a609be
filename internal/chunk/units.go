package chunk

import "strings"

// fallbackUnitLines is the fixed window size used when structural
// parsing fails. Windows are still accumulated against the budget, so
// the constant only bounds the granularity of the degraded mode.
const fallbackUnitLines = 50

// scanUnits derives the semantic unit sequence for a file. ok is false
// when the source cannot be structurally parsed (unsupported language
// or unbalanced nesting) and the caller must fall back to line windows.
func scanUnits(lines []string, language string) (units []SourceUnit, ok bool) {
	switch language {
	case "cpp", "c", "go", "java":
		return scanBraceUnits(lines)
	case "python":
		return scanIndentUnits(lines), true
	default:
		return nil, false
	}
}

// scanBraceUnits splits brace-delimited source at top-level block
// boundaries. A unit is a maximal run of lines whose brace depth returns
// to zero at its end: one top-level function, class, or namespace plus
// the free lines attached above it. Unbalanced braces at EOF mean the
// structural parse failed.
func scanBraceUnits(lines []string) ([]SourceUnit, bool) {
	var units []SourceUnit
	depth := 0
	start := 1
	sawBrace := false

	for i, line := range lines {
		open, close := countBraces(line)
		depth += open - close
		if depth < 0 {
			return nil, false
		}
		if open > 0 {
			sawBrace = true
		}

		// A unit closes when depth returns to zero on a line that
		// actually closed a block.
		if depth == 0 && sawBrace && close > 0 {
			units = append(units, makeUnit(lines, start, i+1))
			start = i + 2
			sawBrace = false
		}
	}

	if depth != 0 {
		return nil, false
	}
	if start <= len(lines) {
		units = append(units, makeUnit(lines, start, len(lines)))
	}
	return units, true
}

// scanIndentUnits splits Python source at column-zero definition
// starters, keeping the module header (imports, docstrings, globals) as
// the leading block.
func scanIndentUnits(lines []string) []SourceUnit {
	var units []SourceUnit
	start := 1

	for i, line := range lines {
		if i+1 == start {
			continue
		}
		// Any definition starter directly under a decorator continues
		// that decorator's unit, so stacked decorators stay attached to
		// the def they annotate.
		if isPyDefinitionStart(line) && !(i > 0 && strings.HasPrefix(lines[i-1], "@")) {
			units = append(units, makeUnit(lines, start, i))
			start = i + 1
		}
	}
	if start <= len(lines) {
		units = append(units, makeUnit(lines, start, len(lines)))
	}
	return units
}

func isPyDefinitionStart(line string) bool {
	return strings.HasPrefix(line, "def ") ||
		strings.HasPrefix(line, "class ") ||
		strings.HasPrefix(line, "async def ") ||
		strings.HasPrefix(line, "@")
}

// windowUnits produces the fixed-size line-window units of the fallback
// mode.
func windowUnits(lines []string) []SourceUnit {
	var units []SourceUnit
	for start := 1; start <= len(lines); start += fallbackUnitLines {
		end := start + fallbackUnitLines - 1
		if end > len(lines) {
			end = len(lines)
		}
		u := makeUnit(lines, start, end)
		u.Kind = KindWindow
		units = append(units, u)
	}
	return units
}

func makeUnit(lines []string, start, end int) SourceUnit {
	size := 0
	for i := start - 1; i < end; i++ {
		size += len(lines[i]) + 1
	}
	return SourceUnit{
		StartLine: start,
		EndLine:   end,
		Kind:      classifyUnit(lines[start-1 : end]),
		ByteSize:  size,
	}
}

// classifyUnit guesses the unit kind from its first signature-looking
// line. Only used for reporting; chunk boundaries do not depend on it.
func classifyUnit(lines []string) UnitKind {
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") || strings.HasPrefix(t, "*") || strings.HasPrefix(t, "/*") {
			continue
		}
		switch {
		case strings.HasPrefix(t, "class "), strings.HasPrefix(t, "struct "), strings.HasPrefix(t, "type "):
			return KindClass
		case strings.HasPrefix(t, "namespace "), strings.HasPrefix(t, "package "):
			return KindNamespace
		case strings.Contains(t, "(") && strings.Contains(strings.Join(lines, "\n"), "{"),
			strings.HasPrefix(t, "def "), strings.HasPrefix(t, "async def "), strings.HasPrefix(t, "func "):
			return KindFunction
		default:
			return KindBlock
		}
	}
	return KindBlock
}

// countBraces tallies braces outside string/char literals and line
// comments. Block comments spanning lines are rare enough in the target
// corpora that unbalanced ones simply trip the fallback path.
func countBraces(line string) (open, close int) {
	inString := false
	inChar := false
	var prev byte

	for i := 0; i < len(line); i++ {
		c := line[i]
		if inString {
			if c == '"' && prev != '\\' {
				inString = false
			}
		} else if inChar {
			if c == '\'' && prev != '\\' {
				inChar = false
			}
		} else {
			switch c {
			case '/':
				if i+1 < len(line) && line[i+1] == '/' {
					return open, close
				}
			case '"':
				inString = true
			case '\'':
				inChar = true
			case '{':
				open++
			case '}':
				close++
			}
		}
		if prev == '\\' && c == '\\' {
			prev = 0
			continue
		}
		prev = c
	}
	return open, close
}
