// Package chat implements the retrieval-and-fallback decision engine: a
// query is answered from memory when a strong match exists, otherwise the
// top candidates are fused into a prompt for the fallback generator.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/hrygo/thursday/plugin/ai"
	"github.com/hrygo/thursday/server/retrieval"
	"github.com/hrygo/thursday/store"
)

// BotName tags every reply. Cosmetic, not part of the decision logic.
const BotName = "Thursday"

// Fixed replies for the soft conditions. Generation failure is absorbed
// into the apology, never surfaced to the caller.
const (
	emptyQueryReply = "Please say something."
	noMemoryReply   = "I don't know. Can you teach me the right answer?"
	apologyReply    = "Sorry, I'm having trouble thinking right now. Please try again."
)

// Engine answers queries against the memory store and its match index.
// A single RWMutex covers {append, rebuild}: readers never observe an
// appended record without the rebuilt index, or the reverse.
type Engine struct {
	store   *store.Store
	matcher retrieval.Matcher
	llm     ai.LLMService
	logger  *slog.Logger

	mu sync.RWMutex
}

// NewEngine creates the decision engine. llm may be nil, in which case the
// no-match path degrades to the apology reply.
func NewEngine(s *store.Store, matcher retrieval.Matcher, llm ai.LLMService, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   s,
		matcher: matcher,
		llm:     llm,
		logger:  logger,
	}
}

// Bootstrap builds the match index from the loaded store. Called once at
// process start, before the first query is served.
func (e *Engine) Bootstrap(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.matcher.Rebuild(ctx, e.store.Records()); err != nil {
		return errors.Wrap(err, "build match index")
	}
	return nil
}

// Reply runs the per-request state machine. It never fails: every query
// path degrades to a valid reply.
func (e *Engine) Reply(ctx context.Context, message string) string {
	query := strings.TrimSpace(message)
	if query == "" {
		return emptyQueryReply
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.store.Len() == 0 {
		// Short-circuit before the matcher is invoked.
		return noMemoryReply
	}

	result, err := e.matcher.Match(ctx, query)
	if err != nil {
		e.logger.Error("match failed", "error", err)
		return apologyReply
	}

	if result.Strong && result.Top != nil {
		return result.Top.Record.Answer
	}

	return e.generate(ctx, query, result.Context)
}

// generate fuses the context set into a prompt and invokes the fallback
// generator. Failures are logged and absorbed into the apology reply.
func (e *Engine) generate(ctx context.Context, query string, contextSet []store.Record) string {
	if e.llm == nil {
		e.logger.Warn("no generation service configured")
		return apologyReply
	}

	prompt := fmt.Sprintf("question: %s context: %s", query, retrieval.Fuse(contextSet))
	reply, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		e.logger.Error("generation failed", "error", err)
		return apologyReply
	}
	return reply
}

// Correct appends a taught question/answer pair and synchronously rebuilds
// the match index, both under the exclusive lock. A rebuild failure fails
// the correction even though the record is already persisted; the record
// becomes searchable on the next successful rebuild.
func (e *Engine) Correct(ctx context.Context, question, answer string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, err := e.store.Append(question, answer)
	if err != nil {
		return errors.Wrap(err, "append correction")
	}

	if err := e.matcher.Rebuild(ctx, e.store.Records()); err != nil {
		return errors.Wrap(err, "rebuild match index")
	}

	e.logger.Info("correction saved", "question", record.Question, "records", e.store.Len())
	return nil
}

// Like acknowledges feedback. Logged only, nothing is persisted.
func (e *Engine) Like(question string) {
	e.logger.Info("like received", "question", question)
}
