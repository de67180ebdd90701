package retrieval

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/hrygo/thursday/plugin/ai"
	"github.com/hrygo/thursday/store"
)

// EmbeddingMatcher ranks records by cosine similarity between the query
// embedding and an embedding of every stored question. The vectors are the
// match index: recomputed for the whole store on every rebuild.
type EmbeddingMatcher struct {
	embedder ai.EmbeddingService

	records []store.Record
	vectors [][]float32
}

// NewEmbeddingMatcher creates a similarity matcher backed by the given
// embedding service.
func NewEmbeddingMatcher(embedder ai.EmbeddingService) *EmbeddingMatcher {
	return &EmbeddingMatcher{embedder: embedder}
}

func (m *EmbeddingMatcher) Name() string {
	return "embedding"
}

// Rebuild embeds every stored question. All-or-nothing: on failure the
// previous index is left in place untouched.
func (m *EmbeddingMatcher) Rebuild(ctx context.Context, records []store.Record) error {
	if len(records) == 0 {
		m.records = nil
		m.vectors = nil
		return nil
	}

	questions := make([]string, len(records))
	for i, record := range records {
		questions[i] = record.Question
	}

	vectors, err := m.embedder.EmbedBatch(ctx, questions)
	if err != nil {
		return errors.Wrap(err, "embed stored questions")
	}

	m.records = append([]store.Record(nil), records...)
	m.vectors = vectors
	return nil
}

// Match embeds the query and scans every stored vector. The single highest
// score is the top match; the ContextSize highest scores, descending with
// ties broken by insertion order, form the context set.
func (m *EmbeddingMatcher) Match(ctx context.Context, query string) (*Result, error) {
	if len(m.records) == 0 {
		return &Result{}, nil
	}

	queryVector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	candidates := make([]Candidate, len(m.records))
	for i, vector := range m.vectors {
		candidates[i] = Candidate{
			Record: m.records[i],
			Index:  i,
			Score:  CosineSimilarity(queryVector, vector),
		}
	}

	// Descending by score; SliceStable keeps insertion order on ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	top := candidates[0]

	contextSize := ContextSize
	if contextSize > len(candidates) {
		contextSize = len(candidates)
	}
	contextSet := make([]store.Record, contextSize)
	for i := range contextSet {
		contextSet[i] = candidates[i].Record
	}

	return &Result{
		Top:     &top,
		Strong:  top.Score >= ScoreThreshold,
		Context: contextSet,
	}, nil
}

var _ Matcher = (*EmbeddingMatcher)(nil)
