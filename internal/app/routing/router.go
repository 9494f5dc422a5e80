// Package routing picks exactly one response strategy per user turn and
// assembles the reply.
package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/partsdesk/internal/app/dialogue"
	"github.com/PabloGalante/partsdesk/internal/app/entities"
	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

// Input is everything a strategy may look at for one turn.
type Input struct {
	ConversationID domain.ConversationID
	Message        string
	// History holds earlier turns, oldest first. The current message is not in it.
	History  []*domain.Turn
	Entities entities.Entities
	Signals  intent.Signals
}

// NewInput extracts entities and classifies the message.
func NewInput(id domain.ConversationID, message string, history []*domain.Turn) *Input {
	return &Input{
		ConversationID: id,
		Message:        message,
		History:        history,
		Entities:       entities.Extract(message),
		Signals:        intent.Classify(message),
	}
}

// Outcome is either a handled reply or a pass to the next strategy.
type Outcome struct {
	Text  string
	Cards []domain.ProductReference
	State *domain.DialogueState

	// Undo reverts side effects of the strategy when the turn cannot be stored.
	Undo func(context.Context) error

	handled bool
	// final outcomes are returned as they are, without card attachment.
	final bool
}

// Reply wraps a strategy's answer.
func Reply(text string) Outcome { return Outcome{Text: text, handled: true} }

// Pass lets the next strategy try.
func Pass() Outcome { return Outcome{} }

// Handled reports whether the strategy answered the turn.
func (o Outcome) Handled() bool { return o.handled }

// Strategy fully resolves a turn or passes. Collaborator failures are turned
// into templated text; a returned error means something unexpected broke.
type Strategy interface {
	Name() string
	Run(ctx context.Context, in *Input) (Outcome, error)
}

// Result is what the router hands back for one turn.
type Result struct {
	Text         string
	ProductCards []domain.ProductReference
	State        *domain.DialogueState
	Strategy     string

	// Rollback is set when routing had side effects (an opened ticket) that
	// must be reverted if the turn is not persisted.
	Rollback func(context.Context) error
}

// Suggester proposes catalog parts for free text.
type Suggester interface {
	Suggest(ctx context.Context, text string, limit int) ([]*domain.Part, error)
}

// Deps are the collaborators the strategies call into. Suggester is optional.
type Deps struct {
	Catalog   domain.Catalog
	Guides    domain.GuideStore
	Orders    domain.OrderStore
	Handoff   domain.Handoff
	AI        domain.AIBackend
	Suggester Suggester
}

// Router evaluates its strategies in order; the first one that handles the turn wins.
type Router struct {
	strategies []Strategy
	assembler  *Assembler
}

// NewRouter builds the default cascade: transaction, handoff, install,
// compatibility, troubleshooting and the AI fallback.
func NewRouter(d Deps) *Router {
	asm := NewAssembler(d.Catalog, d.Guides, d.Suggester)
	return &Router{
		assembler: asm,
		strategies: []Strategy{
			&transactionStrategy{orders: d.Orders},
			&handoffStrategy{handoff: d.Handoff},
			&installStrategy{guides: d.Guides},
			&compatStrategy{catalog: d.Catalog},
			&troubleshootStrategy{resolver: dialogue.NewResolver(), gate: intent.NewGate()},
			&fallbackStrategy{ai: d.AI, assembler: asm},
		},
	}
}

// Strategies returns the strategy names in evaluation order.
func (r *Router) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Route answers one user message. History must not contain the message itself.
func (r *Router) Route(ctx context.Context, id domain.ConversationID, message string, history []*domain.Turn) (*Result, error) {
	in := NewInput(id, message, history)

	log := observability.LoggerFromContext(ctx).With("conversation_id", id)

	for _, s := range r.strategies {
		start := time.Now()
		out, err := s.Run(ctx, in)
		if err != nil {
			log.Error("strategy failed", "strategy", s.Name(), "error", err)
			return nil, fmt.Errorf("strategy %s: %w", s.Name(), err)
		}
		if !out.Handled() {
			continue
		}

		if !out.final && out.Cards == nil {
			out.Cards = r.assembler.ProductCards(ctx, in, out.Text)
		}
		log.Info("strategy selected",
			"strategy", s.Name(),
			"cards", len(out.Cards),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return &Result{
			Text:         out.Text,
			ProductCards: out.Cards,
			State:        out.State,
			Strategy:     s.Name(),
			Rollback:     out.Undo,
		}, nil
	}
	return nil, fmt.Errorf("no strategy handled the message")
}
