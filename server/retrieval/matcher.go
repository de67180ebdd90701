// Package retrieval implements the match index over the question/answer
// memory: a derived, disposable structure rebuilt from the full store after
// every mutation, plus the matchers that rank stored records against a query.
package retrieval

import (
	"context"
	"math"

	"github.com/hrygo/thursday/store"
)

const (
	// ScoreThreshold is the minimum similarity for a strong match.
	ScoreThreshold = 0.9
	// ContextSize is the number of candidate records fused into a
	// generation prompt.
	ContextSize = 3
)

// Candidate is a scored record. Index is the record's position in the
// store's ordered sequence and breaks score ties (earlier wins).
type Candidate struct {
	Record store.Record
	Index  int
	Score  float64
}

// Result is the outcome of matching a query against the index.
type Result struct {
	// Top is the highest-confidence candidate, nil when nothing matched.
	Top *Candidate
	// Strong reports whether Top's answer should be returned verbatim.
	Strong bool
	// Context is the ordered candidate set for prompt fusion when the
	// match is not strong.
	Context []store.Record
}

// Matcher ranks stored records against a query. Rebuild must be called
// once after the store loads and synchronously after every append; it
// recomputes the whole index, never incrementally.
type Matcher interface {
	Rebuild(ctx context.Context, records []store.Record) error
	Match(ctx context.Context, query string) (*Result, error)
	// Name identifies the strategy for logs.
	Name() string
}

// CosineSimilarity calculates cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
