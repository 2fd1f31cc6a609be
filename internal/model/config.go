package model

import "time"

// Config holds the full harness configuration. Tunables the evaluation
// depends on (chunk budget, line tolerance, vocabulary version) live
// here so that experiment runs with different settings stay reproducible
// and comparable side by side.
type Config struct {
	Chunking    ChunkingConfig    `yaml:"chunking" json:"chunking" mapstructure:"chunking"`
	Matching    MatchingConfig    `yaml:"matching" json:"matching" mapstructure:"matching"`
	LLM         LLMConfig         `yaml:"llm" json:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" json:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" json:"output" mapstructure:"output"`
}

// ChunkingConfig controls how source files are split for review.
type ChunkingConfig struct {
	// Budget is the approximate token budget per chunk. Tokens are
	// estimated from byte length, not model-tokenized.
	Budget int `yaml:"budget" json:"budget" mapstructure:"budget"`
	// ContextLines is the number of trailing lines from the previous
	// chunk repeated at the top of the next one, tagged
	// non-authoritative. 0 disables overlap.
	ContextLines int `yaml:"context_lines" json:"context_lines" mapstructure:"context_lines"`
	// Language hints the structural scanner ("cpp", "go", "python",
	// ""). Unknown values force the line-window fallback.
	Language string `yaml:"language" json:"language" mapstructure:"language"`
}

// MatchingConfig controls expected/detected issue pairing.
type MatchingConfig struct {
	// LineTolerance is the window, in lines, within which a detected
	// issue may miss the expected location and still be a candidate.
	LineTolerance int `yaml:"line_tolerance" json:"line_tolerance" mapstructure:"line_tolerance"`
	// VocabularyVersion selects the category vocabulary used for
	// normalization and compatibility.
	VocabularyVersion string `yaml:"vocabulary_version" json:"vocabulary_version" mapstructure:"vocabulary_version"`
}

// LLMConfig configures the external reviewer endpoint.
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider" mapstructure:"provider"` // "openai", "ollama", "" (disabled)
	Model     string `yaml:"model" json:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" json:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens" mapstructure:"max_tokens"`
	// RequestsPerSecond paces reviewer calls; 0 means unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst" mapstructure:"burst"`
}

// ConcurrencyConfig bounds parallel work in the runner.
type ConcurrencyConfig struct {
	// ChunkWorkers bounds concurrent reviewer calls per file.
	ChunkWorkers int `yaml:"chunk_workers" json:"chunk_workers" mapstructure:"chunk_workers"`
	// FileWorkers bounds concurrent file evaluations per dataset run.
	FileWorkers int `yaml:"file_workers" json:"file_workers" mapstructure:"file_workers"`
	// RunTimeout bounds a whole dataset run; on expiry remaining files
	// are abandoned and the partial metrics are flagged incomplete.
	RunTimeout time.Duration `yaml:"run_timeout" json:"run_timeout" mapstructure:"run_timeout"`
}

// CacheConfig controls reviewer response caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" json:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose     bool   `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
	ReportDir   string `yaml:"report_dir" json:"report_dir" mapstructure:"report_dir"`
	AuditTrail  bool   `yaml:"audit_trail" json:"audit_trail" mapstructure:"audit_trail"` // Include per-issue match results in reports
	IncludeRaw  bool   `yaml:"include_raw" json:"include_raw" mapstructure:"include_raw"` // Keep raw reviewer responses in reports
	PrettyJSON  bool   `yaml:"pretty_json" json:"pretty_json" mapstructure:"pretty_json"`
	MarkdownOut bool   `yaml:"markdown_out" json:"markdown_out" mapstructure:"markdown_out"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Budget:       2000,
			ContextLines: 0,
			Language:     "cpp",
		},
		Matching: MatchingConfig{
			LineTolerance:     1,
			VocabularyVersion: "v1",
		},
		LLM: LLMConfig{
			Provider:          "",
			Timeout:           120,
			MaxTokens:         2048,
			RequestsPerSecond: 0,
			Burst:             1,
		},
		Concurrency: ConcurrencyConfig{
			ChunkWorkers: 4,
			FileWorkers:  2,
			RunTimeout:   30 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			ReportDir:   "experiments/runs",
			AuditTrail:  true,
			PrettyJSON:  true,
			MarkdownOut: true,
		},
	}
}
