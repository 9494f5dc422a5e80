package dialogue

import (
	"strings"

	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

// GenericPrompt is returned for troubleshooting requests no flow covers.
const GenericPrompt = "I can help troubleshoot this issue. Please provide more details about what's happening with your appliance."

// Result is either Handled (Text set) or NotApplicable.
type Result struct {
	handled bool
	Text    string
	State   *domain.DialogueState
	// Generic marks the reply given to a troubleshooting request no flow covers.
	Generic bool
	// Continued marks an answer to a question the conversation already had open.
	Continued bool
}

// Handled wraps a reply.
func Handled(text string, state *domain.DialogueState) Result {
	return Result{handled: true, Text: text, State: state}
}

// NotApplicable tells the router to try the next strategy.
func NotApplicable() Result { return Result{} }

// IsHandled reports whether the resolver produced a reply.
func (r Result) IsHandled() bool { return r.handled }

// Resolver owns the guided flows.
type Resolver struct {
	flows map[domain.FlowID]*Flow
	order []domain.FlowID
}

// NewResolver returns a resolver with the drain, cleaning, ice and cooling flows.
func NewResolver() *Resolver {
	r := &Resolver{flows: make(map[domain.FlowID]*Flow)}
	for _, f := range []*Flow{drainFlow(), cleaningFlow(), iceFlow(), coolingFlow()} {
		r.flows[f.ID] = f
		r.order = append(r.order, f.ID)
	}
	return r
}

// Flow returns the flow with the given id.
func (r *Resolver) Flow(id domain.FlowID) (*Flow, bool) {
	f, ok := r.flows[id]
	return f, ok
}

// Resolve handles a troubleshooting request or the answer to an open
// diagnostic question. Purchase intent always yields NotApplicable.
func (r *Resolver) Resolve(message string, history []*domain.Turn) Result {
	text := intent.Normalize(message)
	if intent.HasPurchaseIntent(text) {
		return NotApplicable()
	}

	state, active := r.ActiveState(history)
	flowID := Identify(text, DetectAppliance(text, history))
	request := intent.IsTroubleshootingRequest(text)

	// A fresh request naming a different flow switches flows; anything else
	// that reads like an answer stays in the open one.
	switching := request && flowID != domain.FlowNone && flowID != state.Flow
	if active && intent.HasAnswerToken(text) && !switching {
		return r.Continue(text, state)
	}
	if request {
		return r.Start(flowID)
	}
	return NotApplicable()
}

// Start opens a flow, or asks for details when no flow applies.
func (r *Resolver) Start(id domain.FlowID) Result {
	f, ok := r.flows[id]
	if !ok {
		res := Handled(GenericPrompt, nil)
		res.Generic = true
		return res
	}
	return Handled(f.Opening(), &domain.DialogueState{Flow: f.ID, Step: f.Start})
}

// Continue answers the question asked at state. Unmatched answers get the
// flow's fallback prompt and keep the state.
func (r *Resolver) Continue(text string, state domain.DialogueState) Result {
	res := r.continueFlow(text, state)
	res.Continued = true
	return res
}

func (r *Resolver) continueFlow(text string, state domain.DialogueState) Result {
	f, ok := r.flows[state.Flow]
	if !ok {
		return Handled("Let me know more details about the issue and I'll guide you through the next steps.", nil)
	}
	reply, next, ok := f.answer(state.Step, intent.Normalize(text))
	if !ok {
		keep := state
		return Handled(f.Fallback, &keep)
	}
	return Handled(reply, next)
}

// ActiveState returns the open question in the conversation, if any. The
// state token on the last assistant turn is authoritative; turns without a
// token are read by matching the question text or flow keywords.
func (r *Resolver) ActiveState(history []*domain.Turn) (domain.DialogueState, bool) {
	last := domain.LastAssistant(history)
	if last == nil {
		return domain.DialogueState{}, false
	}
	if last.State != nil {
		return *last.State, last.State.Active()
	}
	return r.inferState(last.Text, domain.Texts(history))
}

func (r *Resolver) inferState(lastText string, history []string) (domain.DialogueState, bool) {
	text := intent.Normalize(lastText)

	var (
		best    domain.DialogueState
		bestLen int
	)
	for _, id := range r.order {
		f := r.flows[id]
		for sid, st := range f.Steps {
			q := intent.Normalize(st.Question)
			if q != "" && len(q) > bestLen && strings.Contains(text, q) {
				best = domain.DialogueState{Flow: f.ID, Step: sid}
				bestLen = len(q)
			}
		}
	}
	if bestLen > 0 {
		return best, true
	}

	if !intent.HasFlowMarkers(history) {
		return domain.DialogueState{}, false
	}
	for _, id := range r.order {
		f := r.flows[id]
		if intent.Phrases(f.Keywords).Match(text) {
			return domain.DialogueState{Flow: f.ID, Step: f.Start}, true
		}
	}
	return domain.DialogueState{}, false
}

// DetectAppliance prefers the appliance named in the message, then any
// mention of a dishwasher in the history, then the refrigerator.
func DetectAppliance(text string, history []*domain.Turn) domain.Appliance {
	text = intent.Normalize(text)
	switch {
	case strings.Contains(text, "dishwasher"):
		return domain.ApplianceDishwasher
	case intent.Phrases{"refrigerator", "fridge", "freezer", "ice maker"}.Match(text):
		return domain.ApplianceRefrigerator
	}
	for _, t := range history {
		if strings.Contains(intent.Normalize(t.Text), "dishwasher") {
			return domain.ApplianceDishwasher
		}
	}
	return domain.ApplianceRefrigerator
}

// Identify picks the flow for a troubleshooting request.
func Identify(text string, appliance domain.Appliance) domain.FlowID {
	text = intent.Normalize(text)
	switch appliance {
	case domain.ApplianceDishwasher:
		text = strings.ReplaceAll(text, "dishwasher", "")
		switch {
		case intent.Phrases{"drain", "water"}.Match(text):
			return domain.FlowDrain
		case intent.Phrases{"clean", "wash"}.Match(text):
			return domain.FlowCleaning
		}
	case domain.ApplianceRefrigerator:
		switch {
		case intent.AnyOf{intent.Words{"ice"}, intent.Phrases{"maker"}}.Match(text):
			return domain.FlowIce
		case intent.Phrases{"cool", "cold", "temperature", "warm"}.Match(text):
			return domain.FlowCooling
		}
	}
	return domain.FlowNone
}
