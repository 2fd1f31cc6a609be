package llm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
)

// rawIssue mirrors the JSON shape the prompt asks for. Line fields are
// decoded leniently because models drift between "line", "lines" and
// "line_number", and between numbers and strings.
type rawIssue struct {
	Line        json.RawMessage `json:"line"`
	Lines       json.RawMessage `json:"lines"`
	LineNumber  json.RawMessage `json:"line_number"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Message     string          `json:"message"`
}

var (
	fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	linePattern  = regexp.MustCompile(`(?i)\blines?\s+(\d+)(?:\s*[-–]\s*(\d+))?`)
)

// Parse converts a raw reviewer response into detected issues. It never
// fails: a response with no recognizable issue report parses as clean.
// JSON is tried first (fenced or bare), then free-text line mentions.
func Parse(content string, chunkIndex int) []model.DetectedIssue {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	if issues, ok := parseJSON(content, chunkIndex); ok {
		return issues
	}

	return parseFreeText(content, chunkIndex)
}

// parseJSON looks for a JSON array of issue objects, fenced or bare.
func parseJSON(content string, chunkIndex int) ([]model.DetectedIssue, bool) {
	candidates := []string{content}
	for _, m := range fencePattern.FindAllStringSubmatch(content, -1) {
		candidates = append([]string{strings.TrimSpace(m[1])}, candidates...)
	}

	for _, c := range candidates {
		// Tolerate prose before/after the array.
		start := strings.Index(c, "[")
		end := strings.LastIndex(c, "]")
		if start < 0 || end <= start {
			continue
		}

		var raw []rawIssue
		if err := json.Unmarshal([]byte(c[start:end+1]), &raw); err != nil {
			continue
		}

		issues := make([]model.DetectedIssue, 0, len(raw))
		for _, r := range raw {
			issues = append(issues, r.toDetected(chunkIndex))
		}
		return issues, true
	}

	return nil, false
}

func (r rawIssue) toDetected(chunkIndex int) model.DetectedIssue {
	desc := r.Description
	if desc == "" {
		desc = r.Message
	}

	issue := model.DetectedIssue{
		Category:    strings.TrimSpace(r.Category),
		Description: strings.TrimSpace(desc),
		ChunkIndex:  chunkIndex,
	}

	for _, field := range []json.RawMessage{r.Line, r.Lines, r.LineNumber} {
		if len(field) == 0 {
			continue
		}
		if lines, ok := decodeLines(field); ok {
			issue.Lines = lines
			return issue
		}
	}

	issue.Locationless = true
	return issue
}

// decodeLines accepts a number, a numeric string, a "10-12" string, or
// a {start, end} object.
func decodeLines(data json.RawMessage) (model.LineRange, bool) {
	var lines model.LineRange
	if err := json.Unmarshal(data, &lines); err == nil && lines.IsValid() {
		return lines, true
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return model.LineRange{}, false
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return model.NewLine(n), true
	}
	if m := linePattern.FindStringSubmatch("line " + s); m != nil {
		return rangeFromMatch(m)
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) == 2 {
		start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 == nil && err2 == nil {
			r := model.LineRange{Start: start, End: end}
			if r.IsValid() {
				return r, true
			}
		}
	}
	return model.LineRange{}, false
}

// parseFreeText salvages issues from prose responses. Each paragraph
// mentioning a line number becomes one located issue; responses that
// clearly report a problem but name no line become one locationless
// issue.
func parseFreeText(content string, chunkIndex int) []model.DetectedIssue {
	if looksClean(content) {
		return nil
	}

	var issues []model.DetectedIssue
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		m := linePattern.FindStringSubmatch(para)
		if m == nil {
			continue
		}
		lines, ok := rangeFromMatch(m)
		if !ok {
			continue
		}
		issues = append(issues, model.DetectedIssue{
			Lines:       lines,
			Description: para,
			ChunkIndex:  chunkIndex,
		})
	}

	if len(issues) == 0 {
		issues = append(issues, model.DetectedIssue{
			Locationless: true,
			Description:  content,
			ChunkIndex:   chunkIndex,
		})
	}
	return issues
}

func rangeFromMatch(m []string) (model.LineRange, bool) {
	start, err := strconv.Atoi(m[1])
	if err != nil || start <= 0 {
		return model.LineRange{}, false
	}
	r := model.NewLine(start)
	if m[2] != "" {
		if end, err := strconv.Atoi(m[2]); err == nil && end >= start {
			r.End = end
		}
	}
	return r, true
}

// looksClean recognizes the common "no issues found" phrasings so they
// do not become spurious locationless detections.
func looksClean(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range []string{
		"no issues",
		"no bugs",
		"no defects",
		"no problems",
		"looks correct",
		"code is clean",
		"lgtm",
	} {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
