package ai

import (
	"errors"
	"time"

	"github.com/hrygo/thursday/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Embedding EmbeddingConfig
	LLM       LLMConfig
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider string // openai, siliconflow, ollama
	Model    string // text-embedding-3-small
	APIKey   string
	BaseURL  string
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string // openai, siliconflow, ollama
	Model       string // gpt-4o-mini
	APIKey      string
	BaseURL     string
	MaxTokens   int           // default: 256
	Temperature float32       // default: 0.7
	Timeout     time.Duration // bound on a single generation call
}

// DefaultLLMTimeout bounds a single generation request. Timeout and error
// are treated uniformly as a generation failure by callers.
const DefaultLLMTimeout = 25 * time.Second

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Embedding: EmbeddingConfig{
			Provider: p.AIEmbeddingProvider,
			Model:    p.AIEmbeddingModel,
		},
		LLM: LLMConfig{
			Provider:    p.AILLMProvider,
			Model:       p.AILLMModel,
			MaxTokens:   256,
			Temperature: 0.7,
			Timeout:     DefaultLLMTimeout,
		},
	}

	switch p.AIEmbeddingProvider {
	case "siliconflow":
		cfg.Embedding.APIKey = p.AISiliconFlowAPIKey
		cfg.Embedding.BaseURL = p.AISiliconFlowBaseURL
	case "ollama":
		cfg.Embedding.BaseURL = p.AIOllamaBaseURL
	default:
		cfg.Embedding.APIKey = p.AIOpenAIAPIKey
		cfg.Embedding.BaseURL = p.AIOpenAIBaseURL
	}

	switch p.AILLMProvider {
	case "siliconflow":
		cfg.LLM.APIKey = p.AISiliconFlowAPIKey
		cfg.LLM.BaseURL = p.AISiliconFlowBaseURL
	case "ollama":
		cfg.LLM.BaseURL = p.AIOllamaBaseURL
	default:
		cfg.LLM.APIKey = p.AIOpenAIAPIKey
		cfg.LLM.BaseURL = p.AIOpenAIBaseURL
	}

	return cfg
}

// ValidateEmbedding validates the embedding provider configuration.
func (c *Config) ValidateEmbedding() error {
	if c.Embedding.Provider == "" {
		return errors.New("embedding provider is required")
	}
	if c.Embedding.Provider != "ollama" && c.Embedding.APIKey == "" {
		return errors.New("embedding API key is required")
	}
	return nil
}

// ValidateLLM validates the generation provider configuration.
func (c *Config) ValidateLLM() error {
	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	return nil
}
