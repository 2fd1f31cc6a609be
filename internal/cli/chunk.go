package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ApeachM/llm-code-reviewer-sub002/internal/chunk"
	"github.com/ApeachM/llm-code-reviewer-sub002/internal/model"
)

var (
	chunkLanguage string
	chunkBody     bool
)

// chunkCmd represents the chunk command
var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Show how a source file would be chunked",
	Long: `Chunk splits one source file exactly as a run would and prints the
resulting boundaries, sizes and flags. Useful for tuning the token
budget and for checking that functions survive unsplit.

Example:
  reveval chunk src/sort.cpp --budget 1200
  reveval chunk handler.py --language python --body`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)

	chunkCmd.Flags().IntVar(&chunkBudget, "budget", 2000, "approximate token budget per chunk")
	chunkCmd.Flags().IntVar(&contextLines, "context-lines", 0, "non-authoritative overlap lines between chunks")
	chunkCmd.Flags().StringVar(&chunkLanguage, "language", "", "source language (default: from file extension)")
	chunkCmd.Flags().BoolVar(&chunkBody, "body", false, "print chunk bodies, not just boundaries")
}

func runChunk(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	lang := chunkLanguage
	if lang == "" {
		lang = languageFromExt(path)
	}

	c := chunk.New(model.ChunkingConfig{
		Budget:       chunkBudget,
		ContextLines: contextLines,
		Language:     lang,
	})
	res := c.Split(path, string(data))

	fmt.Printf("File:     %s (%d lines, ~%d tokens)\n", path, res.LineCount, chunk.EstimateTokens(string(data)))
	fmt.Printf("Language: %s\n", lang)
	if res.UsedFallback {
		fmt.Println("Warning:  structural parse failed, using fixed line windows")
	}
	fmt.Printf("Chunks:   %d\n\n", len(res.Chunks))

	for _, ch := range res.Chunks {
		flags := ""
		if ch.Oversized {
			flags = " [oversized]"
		}
		if ch.ContextLines > 0 {
			flags += fmt.Sprintf(" [+%d context]", ch.ContextLines)
		}
		fmt.Printf("#%d lines %d-%d, %d unit(s), ~%d tokens%s\n",
			ch.Index, ch.AuthStart, ch.AuthEnd, len(ch.Units), chunk.EstimateTokens(ch.Body), flags)

		if chunkBody {
			fmt.Println(strings.TrimRight(ch.Header+ch.Body, "\n"))
			fmt.Println()
		}
	}

	return nil
}

func languageFromExt(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	switch strings.ToLower(path[idx+1:]) {
	case "cpp", "cc", "cxx", "hpp", "h":
		return "cpp"
	case "c":
		return "c"
	case "go":
		return "go"
	case "java":
		return "java"
	case "py":
		return "python"
	}
	return ""
}
