// Package llm provides centralized LLM configuration and client abstractions.
// Assessment generation and scoring go through the Client interface so the
// backing provider can be switched with configuration alone.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short free text: briefings, job description polish
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: question pools, interview scripts
	TierStandard ModelTier = "standard"
	// TierAdvanced is for judgement calls: scoring a finished assessment
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Gemini API through the generative-ai-go SDK
	ProviderGemini Provider = "gemini"
	// ProviderGenAI is the Gemini API through the unified google.golang.org/genai SDK
	ProviderGenAI Provider = "genai"
	// ProviderVertex is Gemini on Vertex AI, authenticated with application default credentials
	ProviderVertex Provider = "vertex"
)

// ParseProvider converts a config/env string into a Provider.
// An empty string selects ProviderGemini.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderGemini, nil
	case ProviderGemini, ProviderGenAI, ProviderVertex:
		return p, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q (want gemini, genai or vertex)", s)
	}
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string

	// Vertex AI only.
	Project  string
	Location string

	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Location:    "us-central1",
		Temperature: 0.1,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	cp := *c
	cp.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		cp.Models[k] = v
	}
	cp.Models[tier] = model
	return &cp
}

// WithProvider returns a new Config that targets another provider with the same models.
func (c *Config) WithProvider(p Provider) *Config {
	cp := c.WithModel(TierStandard, c.GetModel(TierStandard))
	cp.Provider = p
	return cp
}
