package types

import "time"

// LogConfig controls the structured logger.
type LogConfig struct {
	// JSON switches the encoder from console to JSON.
	JSON bool `json:"json" yaml:"json" mapstructure:"json"`

	// Debug lowers the level to debug.
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`
}

// ConversionBackend identifies the résumé-to-text tool.
type ConversionBackend string

const (
	BackendNative     ConversionBackend = "native"
	BackendMarkitdown ConversionBackend = "markitdown"
)

// ConversionConfig holds settings for résumé conversion.
type ConversionConfig struct {
	// Backend selects the conversion tool: native or markitdown.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Image is the container image used by the markitdown backend.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// ExtractionProvider identifies the language-model API.
type ExtractionProvider string

const (
	ProviderClaude ExtractionProvider = "claude"
	ProviderGemini ExtractionProvider = "gemini"
)

// ExtractionConfig holds settings for calls to a Generative AI API.
type ExtractionConfig struct {
	// Provider selects the API: claude or gemini.
	Provider ExtractionProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier. Empty selects the provider default.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key. Usually supplied through .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Timeout bounds a single API call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// RetrievalBackend identifies the retrieval collaborator.
type RetrievalBackend string

const (
	RetrievalSQLite   RetrievalBackend = "sqlite"
	RetrievalLightRAG RetrievalBackend = "lightrag"
	RetrievalNone     RetrievalBackend = "none"
)

// RetrievalConfig holds settings for the retrieval index.
type RetrievalConfig struct {
	// Backend selects sqlite (local full-text index), lightrag (remote
	// graph index over HTTP), or none.
	Backend RetrievalBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// URL is the base URL of the lightrag server.
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// APIKey authenticates against the lightrag server.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Mode is the query mode hint passed to the retriever (default "mix").
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	// TopK is the default number of retrieval hits.
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// Timeout bounds every retrieve and index call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// MatchingConfig holds settings for ranking candidates against a job.
type MatchingConfig struct {
	// LLMJudgment enables per-candidate language-model scoring on top of
	// the deterministic skill coverage score.
	LLMJudgment bool `json:"llm_judgment" yaml:"llm_judgment" mapstructure:"llm_judgment"`

	// Parallelism bounds concurrent per-candidate judgments (default 4).
	Parallelism int `json:"parallelism" yaml:"parallelism" mapstructure:"parallelism"`

	// CandidateTimeout bounds one per-candidate judgment.
	CandidateTimeout time.Duration `json:"candidate_timeout" yaml:"candidate_timeout" mapstructure:"candidate_timeout"`
}

// Config groups every setting of the talent engine.
type Config struct {
	// DataDir is the root of the record store (contains candidates/, evaluations/, cv_cache/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval" mapstructure:"retrieval"`
	Matching   MatchingConfig   `json:"matching" yaml:"matching" mapstructure:"matching"`
}
