// Package assistant is the AI fallback behind the router: it applies the
// scope gate, calls the configured LLM with a bounded timeout and turns any
// upstream failure into a deterministic reply.
package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PabloGalante/partsdesk/internal/adapters/llm"
	"github.com/PabloGalante/partsdesk/internal/app/dialogue"
	"github.com/PabloGalante/partsdesk/internal/app/entities"
	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

const (
	DefaultTimeout = 30 * time.Second

	maxKnowledgeParts = 5
)

var (
	modelTokenRe     = regexp.MustCompile(`(?i)\b[a-z]{2,4}\d{3,7}[a-z]*\d*\b`)
	applianceContext = intent.Phrases{"refrigerator", "dishwasher", "ice maker"}
)

type Responder struct {
	llm      domain.LLMClient
	fallback domain.LLMClient
	catalog  domain.Catalog
	gate     *intent.Gate
	timeout  time.Duration
}

var _ domain.AIBackend = (*Responder)(nil)

// NewResponder wraps client. A nil catalog disables part knowledge in the prompt.
func NewResponder(client domain.LLMClient, catalog domain.Catalog, timeout time.Duration) *Responder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Responder{
		llm:      client,
		fallback: llm.NewMockLLM(),
		catalog:  catalog,
		gate:     intent.NewGate(),
		timeout:  timeout,
	}
}

// GenerateResponse never fails. Out-of-scope messages get the gate's template
// with InScope=false; LLM errors and timeouts get the mock reply.
func (r *Responder) GenerateResponse(ctx context.Context, message string, history []*domain.Turn) domain.AIResponse {
	log := observability.LoggerFromContext(ctx)

	verdict := r.gate.Evaluate(message)
	if !verdict.InScope && !modelNumberInContext(message, history) {
		log.Info("message out of scope", "reason", verdict.Reason)
		return domain.AIResponse{Text: verdict.Reply, InScope: false}
	}
	if verdict.InScope && verdict.Reply != "" {
		return domain.AIResponse{Text: verdict.Reply, InScope: true}
	}

	recent := entities.HistoryParts(domain.Texts(history))
	convCtx := domain.ConversationContext{
		History:       history,
		RecentParts:   recent,
		PartKnowledge: r.partKnowledge(ctx, message, recent),
	}
	if len(history) > 0 {
		convCtx.ConversationID = history[0].ConversationID
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	text, err := r.llm.GenerateReply(callCtx, message, convCtx)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty reply")
	}
	if err != nil {
		log.Warn("llm call failed, using fallback reply",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		text, _ = r.fallback.GenerateReply(ctx, message, convCtx)
	}
	return domain.AIResponse{Text: text, InScope: true}
}

// modelNumberInContext lets a bare model number through when the conversation
// is already about a supported appliance.
func modelNumberInContext(message string, history []*domain.Turn) bool {
	if len(history) == 0 || !modelTokenRe.MatchString(message) {
		return false
	}
	for _, t := range history {
		if applianceContext.Match(strings.ToLower(t.Text)) {
			return true
		}
	}
	return false
}

// partKnowledge describes the parts named in the message or discussed
// recently, plus canned advice for a recognised problem.
func (r *Responder) partKnowledge(ctx context.Context, message string, recent []string) string {
	var b strings.Builder

	if r.catalog != nil {
		seen := map[string]bool{}
		numbers := append(entities.PartNumbers(message), recent...)
		for _, pn := range numbers {
			if seen[pn] || len(seen) == maxKnowledgeParts {
				continue
			}
			seen[pn] = true
			p, err := r.catalog.GetPartData(ctx, pn)
			if err != nil {
				observability.LoggerFromContext(ctx).Warn("part lookup for prompt failed", "part_number", pn, "error", err)
				continue
			}
			if p == nil {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s, %s, %s part", p.PartNumber, p.Name, p.Price, p.Category)
			if len(p.Compatibility) > 0 {
				fmt.Fprintf(&b, ". Fits %s", strings.Join(p.Compatibility, ", "))
			}
			b.WriteString(".\n")
		}
	}

	if a := dialogue.LookupAdvice(message); a != nil {
		fmt.Fprintf(&b, "- Common problem %q: %s. Usual parts: %s.\n",
			a.Problem, strings.Join(a.Solutions, "; "), strings.Join(a.CommonParts, ", "))
	}
	return strings.TrimSpace(b.String())
}
