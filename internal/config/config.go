// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonathan/screeniq/internal/llm"
	"github.com/jonathan/screeniq/internal/resume"
)

// Defaults
const (
	DefaultPort            = 8080
	DefaultSessionLength   = 10
	DefaultDurationSeconds = 600
	DefaultEvaluateTimeout = 120
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, environment variables or CLI flags.
type Config struct {
	// Model access
	APIKey   string `json:"api_key,omitempty"`  // Gemini API key
	Provider string `json:"provider,omitempty"` // gemini, genai or vertex
	Project  string `json:"project,omitempty"`  // Google Cloud project (vertex)
	Location string `json:"location,omitempty"` // Google Cloud region (vertex)

	// Data sources
	JobsFile    string `json:"jobs_file,omitempty"`    // YAML job catalogue
	RabbitMQURL string `json:"rabbitmq_url,omitempty"` // Broker for session updates
	R2AccountID string `json:"r2_account_id,omitempty"`
	R2Bucket    string `json:"r2_bucket,omitempty"`
	R2AccessKey string `json:"r2_access_key,omitempty"`
	R2SecretKey string `json:"r2_secret_key,omitempty"`

	// Session
	SessionLength   int `json:"session_length,omitempty"`   // Questions per session
	DurationSeconds int `json:"duration_seconds,omitempty"` // Countdown length
	EvaluateTimeout int `json:"evaluate_timeout,omitempty"` // Seconds allowed for the evaluation call

	// Server
	Port int `json:"port,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // Render resume pages in headless Chrome when needed
	Verbose    bool `json:"verbose,omitempty"`     // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables using getenv.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		APIKey:      getenv("GEMINI_API_KEY"),
		Provider:    getenv("LLM_PROVIDER"),
		Project:     getenv("GOOGLE_CLOUD_PROJECT"),
		Location:    getenv("GOOGLE_CLOUD_LOCATION"),
		JobsFile:    getenv("JOBS_FILE"),
		RabbitMQURL: getenv("RABBITMQ_URL"),
		R2AccountID: getenv("R2_ACCOUNT_ID"),
		R2Bucket:    getenv("R2_BUCKET"),
		R2AccessKey: getenv("R2_ACCESS_KEY"),
		R2SecretKey: getenv("R2_SECRET_KEY"),
	}
	if port, err := strconv.Atoi(getenv("PORT")); err == nil {
		cfg.Port = port
	}
	return cfg
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands after merging.
func (c *Config) Validate() error {
	if c.Provider != "" {
		if _, err := llm.ParseProvider(c.Provider); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.SessionLength < 0 {
		return fmt.Errorf("config error: 'session_length' must be non-negative")
	}
	if c.DurationSeconds < 0 {
		return fmt.Errorf("config error: 'duration_seconds' must be non-negative")
	}
	if c.EvaluateTimeout < 0 {
		return fmt.Errorf("config error: 'evaluate_timeout' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}

	r2 := c.R2()
	anyR2 := r2.AccountID != "" || r2.Bucket != "" || r2.AccessKey != "" || r2.SecretKey != ""
	if anyR2 && !r2.Enabled() {
		return fmt.Errorf("config error: r2 settings are incomplete")
	}

	if c.JobsFile != "" {
		if _, err := os.Stat(c.JobsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: jobs file not found: %s", c.JobsFile)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file and environment values beneath CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.Provider, defaults.Provider)
	mergeString(&result.Project, defaults.Project)
	mergeString(&result.Location, defaults.Location)
	mergeString(&result.JobsFile, defaults.JobsFile)
	mergeString(&result.RabbitMQURL, defaults.RabbitMQURL)
	mergeString(&result.R2AccountID, defaults.R2AccountID)
	mergeString(&result.R2Bucket, defaults.R2Bucket)
	mergeString(&result.R2AccessKey, defaults.R2AccessKey)
	mergeString(&result.R2SecretKey, defaults.R2SecretKey)

	mergeInt := func(dst *int, def int) {
		if *dst == 0 {
			*dst = def
		}
	}
	mergeInt(&result.SessionLength, defaults.SessionLength)
	mergeInt(&result.DurationSeconds, defaults.DurationSeconds)
	mergeInt(&result.EvaluateTimeout, defaults.EvaluateTimeout)
	mergeInt(&result.Port, defaults.Port)

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLM builds the model client configuration.
func (c *Config) LLM() (*llm.Config, error) {
	cfg := llm.DefaultGeminiConfig()
	if c.Provider != "" {
		p, err := llm.ParseProvider(c.Provider)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithProvider(p)
	}
	if c.Project != "" {
		cfg.Project = c.Project
	}
	if c.Location != "" {
		cfg.Location = c.Location
	}
	return cfg, nil
}

// R2 returns the object storage settings.
func (c *Config) R2() resume.R2Config {
	return resume.R2Config{
		AccountID: c.R2AccountID,
		Bucket:    c.R2Bucket,
		AccessKey: c.R2AccessKey,
		SecretKey: c.R2SecretKey,
	}
}

// Duration returns the session countdown, defaulting to ten minutes.
func (c *Config) Duration() time.Duration {
	if c.DurationSeconds <= 0 {
		return DefaultDurationSeconds * time.Second
	}
	return time.Duration(c.DurationSeconds) * time.Second
}

// Questions returns the number of questions per session.
func (c *Config) Questions() int {
	if c.SessionLength <= 0 {
		return DefaultSessionLength
	}
	return c.SessionLength
}

// EvaluationTimeout returns the deadline for the evaluation call.
func (c *Config) EvaluationTimeout() time.Duration {
	if c.EvaluateTimeout <= 0 {
		return DefaultEvaluateTimeout * time.Second
	}
	return time.Duration(c.EvaluateTimeout) * time.Second
}

// ListenPort returns the HTTP port.
func (c *Config) ListenPort() int {
	if c.Port <= 0 {
		return DefaultPort
	}
	return c.Port
}
