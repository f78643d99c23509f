package domain

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the settings loaded from .repograde.yaml.
// Secrets may be given literally or as "env:VAR_NAME".
type Config struct {
	GitHub         GitHubConfig        `yaml:"github"           json:"github"`
	LLM            LLMConfig           `yaml:"llm"              json:"llm"`
	Retry          RetryConfig         `yaml:"retry"            json:"retry"`
	Store          StoreConfig         `yaml:"store"            json:"store"`
	Cache          CacheConfig         `yaml:"cache"            json:"cache"`
	Tools          map[Tool]ToolConfig `yaml:"tools"            json:"tools,omitempty"`
	Scoring        ScoringConfig       `yaml:"scoring"          json:"scoring"`
	Dynamic        DynamicConfig       `yaml:"dynamic"          json:"dynamic"`
	Watch          WatchConfig         `yaml:"watch"            json:"watch"`
	ExcludePaths   []string            `yaml:"exclude_paths"    json:"exclude_paths,omitempty"`
	MaxListingDirs int                 `yaml:"max_listing_dirs" json:"max_listing_dirs"`
	Concurrency    int                 `yaml:"concurrency"      json:"concurrency"`
	Log            LogConfig           `yaml:"log"              json:"log"`
}

type GitHubConfig struct {
	Token   string `yaml:"token"    json:"-"`
	BaseURL string `yaml:"base_url" json:"base_url,omitempty"`
}

type LLMConfig struct {
	BaseURL   string        `yaml:"base_url"   json:"base_url"`
	APIKey    string        `yaml:"api_key"    json:"-"`
	Model     string        `yaml:"model"      json:"model"`
	MaxTokens int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"    json:"timeout"`
}

type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"     json:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval" json:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"     json:"max_interval"`
}

type StoreConfig struct {
	Path     string `yaml:"path"     json:"path"`
	Disabled bool   `yaml:"disabled" json:"disabled,omitempty"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Path    string        `yaml:"path"    json:"path"`
	TTL     time.Duration `yaml:"ttl"     json:"ttl"`
}

// ToolConfig overrides how a single analyzer runs. Zero fields keep the defaults.
type ToolConfig struct {
	Command   []string      `yaml:"command,omitempty"    json:"command,omitempty"`
	MaxFiles  int           `yaml:"max_files,omitempty"  json:"max_files,omitempty"`
	MaxIssues int           `yaml:"max_issues,omitempty" json:"max_issues,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"    json:"timeout,omitempty"`
	Env       []string      `yaml:"env,omitempty"        json:"env,omitempty"`
}

// LintPolicy: 100 - min(errors*ErrorWeight, ErrorCap) - min(warnings*WarningWeight, WarningCap).
type LintPolicy struct {
	ErrorWeight   int `yaml:"error_weight"   json:"error_weight"`
	ErrorCap      int `yaml:"error_cap"      json:"error_cap"`
	WarningWeight int `yaml:"warning_weight" json:"warning_weight"`
	WarningCap    int `yaml:"warning_cap"    json:"warning_cap"`
}

// FormatPolicy: 100 - min(parseErrors*ParseErrorWeight, ParseErrorCap) - min(unformatted*UnformattedWeight, UnformattedCap).
type FormatPolicy struct {
	ParseErrorWeight  int `yaml:"parse_error_weight" json:"parse_error_weight"`
	ParseErrorCap     int `yaml:"parse_error_cap"    json:"parse_error_cap"`
	UnformattedWeight int `yaml:"unformatted_weight" json:"unformatted_weight"`
	UnformattedCap    int `yaml:"unformatted_cap"    json:"unformatted_cap"`
}

// MarkdownPolicy: 100 - min(issues*IssueWeight, Cap).
type MarkdownPolicy struct {
	IssueWeight int `yaml:"issue_weight" json:"issue_weight"`
	Cap         int `yaml:"cap"          json:"cap"`
}

// AuditPolicy: 100 - min(critical*Critical + high*High + moderate*Moderate + low*Low, Cap).
type AuditPolicy struct {
	Critical int `yaml:"critical" json:"critical"`
	High     int `yaml:"high"     json:"high"`
	Moderate int `yaml:"moderate" json:"moderate"`
	Low      int `yaml:"low"      json:"low"`
	Cap      int `yaml:"cap"      json:"cap"`
}

// DepcheckPolicy: 100 - min(unused*Unused + devUnused*DevUnused + missing*Missing, Cap).
type DepcheckPolicy struct {
	Unused    int `yaml:"unused"     json:"unused"`
	DevUnused int `yaml:"dev_unused" json:"dev_unused"`
	Missing   int `yaml:"missing"    json:"missing"`
	Cap       int `yaml:"cap"        json:"cap"`
}

type ScoringConfig struct {
	Lint     LintPolicy     `yaml:"lint"     json:"lint"`
	Format   FormatPolicy   `yaml:"format"   json:"format"`
	Markdown MarkdownPolicy `yaml:"markdown" json:"markdown"`
	Audit    AuditPolicy    `yaml:"audit"    json:"audit"`
	Depcheck DepcheckPolicy `yaml:"depcheck" json:"depcheck"`
}

type DynamicConfig struct {
	MaxFiles            int      `yaml:"max_files"            json:"max_files"`
	MaxFileChars        int      `yaml:"max_file_chars"       json:"max_file_chars"`
	Extensions          []string `yaml:"extensions"           json:"extensions"`
	MaxIssues           int      `yaml:"max_issues"           json:"max_issues"`
	MaxRecommendations  int      `yaml:"max_recommendations"  json:"max_recommendations"`
	WorkflowTemperature float32  `yaml:"workflow_temperature" json:"workflow_temperature"`
	AnalysisTemperature float32  `yaml:"analysis_temperature" json:"analysis_temperature"`
	StrictYAML          bool     `yaml:"strict_yaml"          json:"strict_yaml,omitempty"`
}

type WatchConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval"`
	Timeout  time.Duration `yaml:"timeout"  json:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"  json:"level"`
	Format string `yaml:"format" json:"format"`
}

var defaultTools = map[Tool]ToolConfig{
	ToolESLint:       {Command: []string{"eslint"}, MaxFiles: 50, MaxIssues: 100, Timeout: 2 * time.Minute, Env: []string{"ESLINT_USE_FLAT_CONFIG=true"}},
	ToolStylelint:    {Command: []string{"stylelint"}, MaxFiles: 30, MaxIssues: 100, Timeout: 2 * time.Minute},
	ToolHTMLHint:     {Command: []string{"htmlhint"}, MaxFiles: 30, MaxIssues: 100, Timeout: 2 * time.Minute},
	ToolPrettier:     {Command: []string{"prettier"}, MaxFiles: 40, MaxIssues: 50, Timeout: 2 * time.Minute},
	ToolMarkdownlint: {Command: []string{"markdownlint"}, MaxFiles: 30, MaxIssues: 50, Timeout: 2 * time.Minute},
	ToolNPMAudit:     {Command: []string{"npm"}, MaxFiles: 2, MaxIssues: 50, Timeout: 3 * time.Minute},
	ToolDepcheck:     {Command: []string{"depcheck"}, MaxFiles: 60, MaxIssues: 50, Timeout: 2 * time.Minute},
	ToolCodeScanning: {MaxIssues: 50},
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		GitHub: GitHubConfig{Token: "env:GITHUB_TOKEN"},
		LLM: LLMConfig{
			BaseURL:   "https://api.groq.com/openai/v1",
			APIKey:    "env:GROQ_API_KEY",
			Model:     "llama-3.3-70b-versatile",
			MaxTokens: 4000,
			Timeout:   2 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
		},
		Store: StoreConfig{Path: ".repograde/results.db"},
		Cache: CacheConfig{Path: ".repograde/cache.db", TTL: 10 * time.Minute},
		Scoring: ScoringConfig{
			Lint:     LintPolicy{ErrorWeight: 5, ErrorCap: 50, WarningWeight: 2, WarningCap: 30},
			Format:   FormatPolicy{ParseErrorWeight: 5, ParseErrorCap: 40, UnformattedWeight: 2, UnformattedCap: 50},
			Markdown: MarkdownPolicy{IssueWeight: 2, Cap: 60},
			Audit:    AuditPolicy{Critical: 12, High: 8, Moderate: 4, Low: 1, Cap: 100},
			Depcheck: DepcheckPolicy{Unused: 2, DevUnused: 1, Missing: 5, Cap: 80},
		},
		Dynamic: DynamicConfig{
			MaxFiles:            20,
			MaxFileChars:        5000,
			Extensions:          []string{"js", "jsx", "ts", "tsx", "json", "html", "css", "md", "py", "java"},
			MaxIssues:           15,
			MaxRecommendations:  8,
			WorkflowTemperature: 0.3,
			AnalysisTemperature: 0.2,
		},
		Watch:          WatchConfig{Interval: 10 * time.Second, Timeout: 5 * time.Minute},
		ExcludePaths:   []string{"*.min.js", "*.min.css"},
		MaxListingDirs: 60,
		Concurrency:    4,
		Log:            LogConfig{Level: "info", Format: "console"},
	}
}

// EffectiveTool returns the tool settings with defaults filled in for zero fields.
func (c Config) EffectiveTool(t Tool) ToolConfig {
	eff := defaultTools[t]
	o, ok := c.Tools[t]
	if !ok {
		return eff
	}
	if len(o.Command) > 0 {
		eff.Command = o.Command
	}
	if o.MaxFiles > 0 {
		eff.MaxFiles = o.MaxFiles
	}
	if o.MaxIssues > 0 {
		eff.MaxIssues = o.MaxIssues
	}
	if o.Timeout > 0 {
		eff.Timeout = o.Timeout
	}
	if len(o.Env) > 0 {
		eff.Env = o.Env
	}
	return eff
}

var validLogLevels = []string{"debug", "info", "warn", "error", "disabled"}

// Validate checks the config for invalid values and returns a descriptive error.
func (c Config) Validate() error {
	for t, tc := range c.Tools {
		if _, ok := defaultTools[t]; !ok {
			return fmt.Errorf("unknown tool %q in tools", t)
		}
		if tc.MaxFiles < 0 || tc.MaxIssues < 0 {
			return fmt.Errorf("tools.%s: max_files and max_issues must be >= 0", t)
		}
	}

	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must be >= 0 (got %d)", c.Retry.MaxAttempts)
	}
	if c.Retry.MaxInterval > 0 && c.Retry.InitialInterval > c.Retry.MaxInterval {
		return fmt.Errorf("retry.initial_interval (%s) exceeds retry.max_interval (%s)", c.Retry.InitialInterval, c.Retry.MaxInterval)
	}

	if c.Dynamic.MaxFileChars < 0 || c.Dynamic.MaxFiles < 0 {
		return fmt.Errorf("dynamic.max_files and dynamic.max_file_chars must be >= 0")
	}
	for _, temp := range []float32{c.Dynamic.WorkflowTemperature, c.Dynamic.AnalysisTemperature} {
		if temp < 0 || temp > 2 {
			return fmt.Errorf("dynamic temperatures must be between 0 and 2 (got %.2f)", temp)
		}
	}

	if c.Watch.Interval < 0 || c.Watch.Timeout < 0 {
		return fmt.Errorf("watch.interval and watch.timeout must be >= 0")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0 (got %d)", c.Concurrency)
	}

	if err := c.Scoring.validate(); err != nil {
		return err
	}

	if c.Log.Level != "" && !contains(validLogLevels, c.Log.Level) {
		return fmt.Errorf("unknown log.level %q (valid: %s)", c.Log.Level, strings.Join(validLogLevels, ", "))
	}
	if c.Log.Format != "" && c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log.format %q (valid: console, json)", c.Log.Format)
	}
	return nil
}

func (s ScoringConfig) validate() error {
	values := map[string]int{
		"lint.error_weight":         s.Lint.ErrorWeight,
		"lint.error_cap":            s.Lint.ErrorCap,
		"lint.warning_weight":       s.Lint.WarningWeight,
		"lint.warning_cap":          s.Lint.WarningCap,
		"format.parse_error_weight": s.Format.ParseErrorWeight,
		"format.parse_error_cap":    s.Format.ParseErrorCap,
		"format.unformatted_weight": s.Format.UnformattedWeight,
		"format.unformatted_cap":    s.Format.UnformattedCap,
		"markdown.issue_weight":     s.Markdown.IssueWeight,
		"markdown.cap":              s.Markdown.Cap,
		"audit.critical":            s.Audit.Critical,
		"audit.high":                s.Audit.High,
		"audit.moderate":            s.Audit.Moderate,
		"audit.low":                 s.Audit.Low,
		"audit.cap":                 s.Audit.Cap,
		"depcheck.unused":           s.Depcheck.Unused,
		"depcheck.dev_unused":       s.Depcheck.DevUnused,
		"depcheck.missing":          s.Depcheck.Missing,
		"depcheck.cap":              s.Depcheck.Cap,
	}
	for name, v := range values {
		if v < 0 || v > 100 {
			return fmt.Errorf("scoring.%s must be between 0 and 100 (got %d)", name, v)
		}
	}
	return nil
}

// ResolveSecret expands "env:NAME" to the value of the environment variable NAME.
func ResolveSecret(v string) string {
	if name, ok := strings.CutPrefix(v, "env:"); ok {
		return os.Getenv(name)
	}
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
