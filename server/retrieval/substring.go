package retrieval

import (
	"context"
	"strings"

	"github.com/hrygo/thursday/store"
)

// SubstringMatcher matches a record when the lowercase query is a substring
// of the lowercase stored question. The first match by insertion order is
// accepted unconditionally; no similarity threshold applies. When nothing
// matches, the context set is simply the most recently appended records,
// a deliberately weaker heuristic than embedding similarity.
type SubstringMatcher struct {
	records []store.Record
}

// NewSubstringMatcher creates a containment matcher.
func NewSubstringMatcher() *SubstringMatcher {
	return &SubstringMatcher{}
}

func (m *SubstringMatcher) Name() string {
	return "substring"
}

// Rebuild snapshots the store; the records themselves are the index.
func (m *SubstringMatcher) Rebuild(_ context.Context, records []store.Record) error {
	m.records = append([]store.Record(nil), records...)
	return nil
}

func (m *SubstringMatcher) Match(_ context.Context, query string) (*Result, error) {
	if len(m.records) == 0 {
		return &Result{}, nil
	}

	needle := strings.ToLower(query)
	for i, record := range m.records {
		if strings.Contains(strings.ToLower(record.Question), needle) {
			return &Result{
				Top:    &Candidate{Record: record, Index: i, Score: 1},
				Strong: true,
			}, nil
		}
	}

	// No match: fall through to generation with the ContextSize most
	// recently appended records, in insertion order.
	start := len(m.records) - ContextSize
	if start < 0 {
		start = 0
	}
	contextSet := append([]store.Record(nil), m.records[start:]...)

	return &Result{Context: contextSet}, nil
}

var _ Matcher = (*SubstringMatcher)(nil)
