package routing

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/partsdesk/internal/app/dialogue"
	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

const (
	handoffReason = "User requested human assistance"

	// maxListedModels caps the model numbers quoted in a "No" compatibility answer.
	maxListedModels = 5
)

// ───────────────────────────────────────────────────────────────────────────
// Handoff
// ───────────────────────────────────────────────────────────────────────────

type handoffStrategy struct {
	handoff domain.Handoff
}

func (s *handoffStrategy) Name() string { return "handoff" }

func (s *handoffStrategy) Run(ctx context.Context, in *Input) (Outcome, error) {
	if !in.Signals.Handoff {
		return Pass(), nil
	}
	res := s.handoff.RequestHumanSupport(ctx, domain.HandoffRequest{
		ConversationID: in.ConversationID,
		UserMessage:    in.Message,
		Reason:         handoffReason,
	})
	out := Reply(res.Message)
	if res.TicketID != "" {
		id, ticket := in.ConversationID, res.TicketID
		out.Undo = func(ctx context.Context) error {
			return s.handoff.CancelTicket(ctx, id, ticket)
		}
	}
	return out, nil
}

// ───────────────────────────────────────────────────────────────────────────
// Installation
// ───────────────────────────────────────────────────────────────────────────

type installStrategy struct {
	guides domain.GuideStore
}

func (s *installStrategy) Name() string { return "install" }

func (s *installStrategy) Run(ctx context.Context, in *Input) (Outcome, error) {
	pn := in.Signals.InstallPart
	if !in.Signals.Install || pn == "" {
		return Pass(), nil
	}

	guide, err := s.guides.GetInstallationGuide(ctx, pn)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("installation guide lookup failed", "part_number", pn, "error", err)
		return Reply(fmt.Sprintf("I can't load the installation guide for %s right now. For step-by-step help, call PartSelect at %s.", pn, ContactPhone)), nil
	}
	if guide == nil {
		return Reply(fmt.Sprintf("I couldn't find part %s in our catalog, so I don't have installation instructions for it. Please double-check the part number, it starts with PS followed by digits.", pn)), nil
	}
	return Reply(FormatInstallation(guide)), nil
}

// ───────────────────────────────────────────────────────────────────────────
// Compatibility
// ───────────────────────────────────────────────────────────────────────────

type compatStrategy struct {
	catalog domain.Catalog
}

func (s *compatStrategy) Name() string { return "compatibility" }

func (s *compatStrategy) Run(ctx context.Context, in *Input) (Outcome, error) {
	if !in.Signals.Compatibility {
		return Pass(), nil
	}
	parts, models := in.Entities.PartNumbers, in.Entities.ModelNumbers
	switch {
	case len(parts) > 0 && len(models) > 0:
		return s.check(ctx, parts[0], models[0]), nil
	case len(parts) > 0:
		return s.modelsFor(ctx, parts[0]), nil
	case len(models) > 0:
		return s.partsFor(ctx, models[0]), nil
	}
	return Pass(), nil
}

func (s *compatStrategy) part(ctx context.Context, pn string) *domain.Part {
	p, err := s.catalog.GetPartData(ctx, pn)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("part lookup failed", "part_number", pn, "error", err)
		return nil
	}
	return p
}

func (s *compatStrategy) check(ctx context.Context, pn, model string) Outcome {
	p := s.part(ctx, pn)
	if p == nil {
		return Reply(partNotFound(pn))
	}
	switch p.FitFor(model) {
	case domain.FitExact:
		return Reply(fmt.Sprintf("Yep, %s works perfectly with your %s. That's the right part for your model.", pn, model))
	case domain.FitSeries:
		return Reply(fmt.Sprintf("%s will most likely fit your %s. It's listed for the same model series (%s), but that's a series match, not an exact one, so please confirm the full model number on your appliance's rating plate before ordering.",
			pn, model, strings.Join(p.Compatibility, ", ")))
	}
	if len(p.Compatibility) == 0 {
		return Reply(fmt.Sprintf("No, %s isn't listed as compatible with your %s.", pn, model))
	}
	return Reply(fmt.Sprintf("No, %s isn't compatible with your %s. It fits models like %s.",
		pn, model, strings.Join(firstN(p.Compatibility, maxListedModels), ", ")))
}

func (s *compatStrategy) modelsFor(ctx context.Context, pn string) Outcome {
	p := s.part(ctx, pn)
	if p == nil {
		return Reply(partNotFound(pn))
	}
	models := "None listed"
	if len(p.Compatibility) > 0 {
		models = strings.Join(p.Compatibility, ", ")
	}
	return Reply(fmt.Sprintf("Part %s is compatible with models: %s.", pn, models))
}

// partsFor passes when nothing fits so the AI fallback can take over.
func (s *compatStrategy) partsFor(ctx context.Context, model string) Outcome {
	parts, err := s.catalog.FindCompatibleParts(ctx, model)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("compatible parts lookup failed", "model_number", model, "error", err)
		return Pass()
	}
	if len(parts) == 0 {
		return Pass()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d compatible parts for your %s:\n\n", len(parts), model)
	for _, p := range parts {
		fmt.Fprintf(&b, "• %s - %s (%s)\n", p.PartNumber, p.Name, p.Price)
	}
	b.WriteString("\nWhich specific part are you looking for?")
	return Reply(b.String())
}

func partNotFound(pn string) string {
	return fmt.Sprintf("Part %s not found in our database. Please double-check the part number, or tell me your appliance's model number and I'll look up the parts that fit it.", pn)
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// ───────────────────────────────────────────────────────────────────────────
// Guided troubleshooting
// ───────────────────────────────────────────────────────────────────────────

type troubleshootStrategy struct {
	resolver *dialogue.Resolver
	gate     *intent.Gate
}

func (s *troubleshootStrategy) Name() string { return "troubleshoot" }

func (s *troubleshootStrategy) Run(ctx context.Context, in *Input) (Outcome, error) {
	res := s.resolver.Resolve(in.Message, in.History)
	if !res.IsHandled() {
		return Pass(), nil
	}
	// Answers to an open question stay in the flow. A new request the gate
	// rejects (another appliance, a standalone freezer) goes to the fallback,
	// and so does a request no flow covers when the gate wants to clarify it.
	if !res.Continued {
		if v := s.gate.Evaluate(in.Message); !v.InScope || (res.Generic && v.Reply != "") {
			return Pass(), nil
		}
	}
	out := Reply(res.Text)
	out.State = res.State
	return out, nil
}

// ───────────────────────────────────────────────────────────────────────────
// AI fallback
// ───────────────────────────────────────────────────────────────────────────

type fallbackStrategy struct {
	ai        domain.AIBackend
	assembler *Assembler
}

func (s *fallbackStrategy) Name() string { return "fallback" }

// Run always handles the turn. Out-of-scope redirects are returned verbatim.
func (s *fallbackStrategy) Run(ctx context.Context, in *Input) (Outcome, error) {
	resp := s.ai.GenerateResponse(ctx, in.Message, in.History)
	if !resp.InScope {
		out := Reply(resp.Text)
		out.final = true
		return out, nil
	}
	out := s.assembler.Assemble(ctx, in, resp.Text)
	out.final = true
	return out, nil
}
