package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/thursday/plugin/ai"
	"github.com/hrygo/thursday/store"
)

// vectorEmbedder maps texts to preset vectors for controlled scores.
type vectorEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e *vectorEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vectors[text], nil
}

func (e *vectorEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vectors[text]
	}
	return out, nil
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestEmbeddingMatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("ExactQuestionIsStrongMatch", func(t *testing.T) {
		m := NewEmbeddingMatcher(ai.NewMockEmbeddingService())
		records := []store.Record{
			{Question: "hi", Answer: "hello"},
			{Question: "what is Go?", Answer: "a programming language"},
		}
		require.NoError(t, m.Rebuild(ctx, records))

		result, err := m.Match(ctx, "hi")
		require.NoError(t, err)
		require.NotNil(t, result.Top)
		assert.True(t, result.Strong)
		assert.InDelta(t, 1.0, result.Top.Score, 1e-6)
		assert.Equal(t, "hello", result.Top.Record.Answer)
	})

	t.Run("ContextSetDescendingWithInsertionOrderTies", func(t *testing.T) {
		embedder := &vectorEmbedder{vectors: map[string][]float32{
			"query": {1, 0},
			"q0":    {0, 1},     // score 0
			"q1":    {1, 1},     // score ~0.707, tied with q2
			"q2":    {1, 1},     // same vector, appended later
			"q3":    {0.8, 0.6}, // score 0.8, highest but not strong
		}}
		m := NewEmbeddingMatcher(embedder)
		records := []store.Record{
			{Question: "q0", Answer: "a0"},
			{Question: "q1", Answer: "a1"},
			{Question: "q2", Answer: "a2"},
			{Question: "q3", Answer: "a3"},
		}
		require.NoError(t, m.Rebuild(ctx, records))

		result, err := m.Match(ctx, "query")
		require.NoError(t, err)
		require.NotNil(t, result.Top)
		assert.False(t, result.Strong)
		assert.Equal(t, "q3", result.Top.Record.Question)

		require.Len(t, result.Context, 3)
		assert.Equal(t, "a3", result.Context[0].Answer)
		assert.Equal(t, "a1", result.Context[1].Answer) // earlier record wins the tie
		assert.Equal(t, "a2", result.Context[2].Answer)
	})

	t.Run("ContextSmallerThanWindow", func(t *testing.T) {
		m := NewEmbeddingMatcher(ai.NewMockEmbeddingService())
		require.NoError(t, m.Rebuild(ctx, []store.Record{{Question: "hi", Answer: "hello"}}))

		result, err := m.Match(ctx, "something else")
		require.NoError(t, err)
		assert.Len(t, result.Context, 1)
	})

	t.Run("EmptyIndexMatchesNothing", func(t *testing.T) {
		m := NewEmbeddingMatcher(ai.NewMockEmbeddingService())
		require.NoError(t, m.Rebuild(ctx, nil))

		result, err := m.Match(ctx, "anything")
		require.NoError(t, err)
		assert.Nil(t, result.Top)
		assert.False(t, result.Strong)
		assert.Empty(t, result.Context)
	})

	t.Run("RebuildFailureKeepsPreviousIndex", func(t *testing.T) {
		embedder := ai.NewMockEmbeddingService()
		m := NewEmbeddingMatcher(embedder)
		require.NoError(t, m.Rebuild(ctx, []store.Record{{Question: "hi", Answer: "hello"}}))

		embedder.Err = errors.New("provider down")
		err := m.Rebuild(ctx, []store.Record{
			{Question: "hi", Answer: "hello"},
			{Question: "new", Answer: "entry"},
		})
		require.Error(t, err)

		embedder.Err = nil
		result, err := m.Match(ctx, "hi")
		require.NoError(t, err)
		require.NotNil(t, result.Top)
		assert.Equal(t, "hello", result.Top.Record.Answer)
		assert.Len(t, result.Context, 1)
	})

	t.Run("QueryEmbedFailure", func(t *testing.T) {
		embedder := ai.NewMockEmbeddingService()
		m := NewEmbeddingMatcher(embedder)
		require.NoError(t, m.Rebuild(ctx, []store.Record{{Question: "hi", Answer: "hello"}}))

		embedder.Err = errors.New("provider down")
		_, err := m.Match(ctx, "hi")
		require.Error(t, err)
	})
}

func TestSubstringMatcher(t *testing.T) {
	ctx := context.Background()

	records := []store.Record{
		{Question: "What is the capital of France?", Answer: "Paris"},
		{Question: "What is Go?", Answer: "a programming language"},
		{Question: "How do I make tea?", Answer: "boil water"},
		{Question: "What is the capital of Japan?", Answer: "Tokyo"},
	}

	t.Run("FirstMatchByInsertionOrderIsStrong", func(t *testing.T) {
		m := NewSubstringMatcher()
		require.NoError(t, m.Rebuild(ctx, records))

		result, err := m.Match(ctx, "capital")
		require.NoError(t, err)
		require.NotNil(t, result.Top)
		assert.True(t, result.Strong)
		assert.Equal(t, "Paris", result.Top.Record.Answer)
	})

	t.Run("MatchIsCaseInsensitive", func(t *testing.T) {
		m := NewSubstringMatcher()
		require.NoError(t, m.Rebuild(ctx, records))

		result, err := m.Match(ctx, "WHAT IS GO")
		require.NoError(t, err)
		require.NotNil(t, result.Top)
		assert.True(t, result.Strong)
		assert.Equal(t, "a programming language", result.Top.Record.Answer)
	})

	t.Run("NoMatchContextIsMostRecent", func(t *testing.T) {
		m := NewSubstringMatcher()
		require.NoError(t, m.Rebuild(ctx, records))

		result, err := m.Match(ctx, "weather tomorrow")
		require.NoError(t, err)
		assert.Nil(t, result.Top)
		assert.False(t, result.Strong)
		require.Len(t, result.Context, 3)
		assert.Equal(t, "a programming language", result.Context[0].Answer)
		assert.Equal(t, "boil water", result.Context[1].Answer)
		assert.Equal(t, "Tokyo", result.Context[2].Answer)
	})

	t.Run("ContextSmallerThanWindow", func(t *testing.T) {
		m := NewSubstringMatcher()
		require.NoError(t, m.Rebuild(ctx, records[:2]))

		result, err := m.Match(ctx, "weather tomorrow")
		require.NoError(t, err)
		assert.Len(t, result.Context, 2)
	})

	t.Run("EmptyIndexMatchesNothing", func(t *testing.T) {
		m := NewSubstringMatcher()
		require.NoError(t, m.Rebuild(ctx, nil))

		result, err := m.Match(ctx, "anything")
		require.NoError(t, err)
		assert.Nil(t, result.Top)
		assert.Empty(t, result.Context)
	})
}

func TestFuse(t *testing.T) {
	t.Run("JoinsAnswersWithSingleSpace", func(t *testing.T) {
		records := []store.Record{
			{Question: "q1", Answer: "X"},
			{Question: "q2", Answer: "Y"},
			{Question: "q3", Answer: "Z"},
		}
		assert.Equal(t, "X Y Z", Fuse(records))
	})

	t.Run("NoDeduplication", func(t *testing.T) {
		records := []store.Record{
			{Answer: "X"},
			{Answer: "X"},
		}
		assert.Equal(t, "X X", Fuse(records))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, "", Fuse(nil))
	})
}
