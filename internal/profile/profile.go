package profile

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// MemoryFile is the path of the persisted question/answer memory.
	// Defaults to <Data>/memory.json.
	MemoryFile string
	// Version is the current version of server
	Version string

	// Matcher selects the retrieval strategy: "embedding" or "substring".
	Matcher string

	// AI Configuration
	AIEmbeddingProvider  string // THURSDAY_AI_EMBEDDING_PROVIDER (default: openai)
	AILLMProvider        string // THURSDAY_AI_LLM_PROVIDER (default: openai)
	AIOpenAIAPIKey       string // THURSDAY_AI_OPENAI_API_KEY
	AIOpenAIBaseURL      string // THURSDAY_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AISiliconFlowAPIKey  string // THURSDAY_AI_SILICONFLOW_API_KEY
	AISiliconFlowBaseURL string // THURSDAY_AI_SILICONFLOW_BASE_URL (default: https://api.siliconflow.cn/v1)
	AIOllamaBaseURL      string // THURSDAY_AI_OLLAMA_BASE_URL (default: http://localhost:11434/v1)
	AIEmbeddingModel     string // THURSDAY_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AILLMModel           string // THURSDAY_AI_LLM_MODEL (default: gpt-4o-mini)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// HasEmbeddingProvider returns true if the embedding strategy can be backed
// by a configured provider.
func (p *Profile) HasEmbeddingProvider() bool {
	switch p.AIEmbeddingProvider {
	case "ollama":
		return p.AIOllamaBaseURL != ""
	case "siliconflow":
		return p.AISiliconFlowAPIKey != ""
	default:
		return p.AIOpenAIAPIKey != ""
	}
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from THURSDAY_* environment variables.
func (p *Profile) FromEnv() {
	p.Matcher = getEnvOrDefault("THURSDAY_MATCHER", p.Matcher)
	p.MemoryFile = getEnvOrDefault("THURSDAY_MEMORY_FILE", p.MemoryFile)

	p.AIEmbeddingProvider = getEnvOrDefault("THURSDAY_AI_EMBEDDING_PROVIDER", "openai")
	p.AILLMProvider = getEnvOrDefault("THURSDAY_AI_LLM_PROVIDER", "openai")
	p.AIOpenAIAPIKey = os.Getenv("THURSDAY_AI_OPENAI_API_KEY")
	p.AIOpenAIBaseURL = getEnvOrDefault("THURSDAY_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AISiliconFlowAPIKey = os.Getenv("THURSDAY_AI_SILICONFLOW_API_KEY")
	p.AISiliconFlowBaseURL = getEnvOrDefault("THURSDAY_AI_SILICONFLOW_BASE_URL", "https://api.siliconflow.cn/v1")
	p.AIOllamaBaseURL = getEnvOrDefault("THURSDAY_AI_OLLAMA_BASE_URL", "http://localhost:11434/v1")
	p.AIEmbeddingModel = getEnvOrDefault("THURSDAY_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	p.AILLMModel = getEnvOrDefault("THURSDAY_AI_LLM_MODEL", "gpt-4o-mini")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Matcher != "embedding" && p.Matcher != "substring" {
		p.Matcher = "embedding"
	}

	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.MemoryFile == "" {
		p.MemoryFile = filepath.Join(dataDir, "memory.json")
	}

	return nil
}
