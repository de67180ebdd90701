package retrieval

import (
	"strings"

	"github.com/hrygo/thursday/store"
)

// Fuse merges the candidate records' answers into a single text blob for
// priming the fallback generator: answers joined by a single space, order
// preserved as supplied by the matcher, no deduplication.
func Fuse(records []store.Record) string {
	answers := make([]string, len(records))
	for i, record := range records {
		answers[i] = record.Answer
	}
	return strings.Join(answers, " ")
}
