package ai

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"sync"
)

// MockEmbeddingService is a deterministic embedding service for testing.
// Identical texts always map to identical unit vectors, so an exact query
// scores cosine similarity 1.0 against its stored question.
type MockEmbeddingService struct {
	dimensions int
	Err        error // when set, every call fails with this error
}

// NewMockEmbeddingService creates a mock embedder with small test vectors.
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{dimensions: 16}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.vector(text), nil
}

func (m *MockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.vector(text)
	}
	return vectors, nil
}

// vector generates a deterministic unit vector from the text hash.
func (m *MockEmbeddingService) vector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, m.dimensions)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// MockLLMService is a canned generation service for testing.
type MockLLMService struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Prompts []string // prompts seen, in call order
}

func (m *MockLLMService) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// LastPrompt returns the most recent prompt, or "" if none.
func (m *MockLLMService) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}

var (
	_ EmbeddingService = (*MockEmbeddingService)(nil)
	_ LLMService       = (*MockLLMService)(nil)
)
