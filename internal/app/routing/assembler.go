package routing

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/partsdesk/internal/app/dialogue"
	"github.com/PabloGalante/partsdesk/internal/app/entities"
	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

const (
	maxParallelLookups = 4
	suggestionLimit    = 2
)

var installNotes = []string{
	"Always disconnect power before beginning any appliance repair",
	"Take photos before disconnecting wires to ensure proper reassembly",
	"If you encounter resistance or difficulty, stop and consult a professional technician",
	"PartSelect provides additional installation videos and support resources on their website",
}

// Assembler turns a strategy's raw text into the final reply: detailed
// installation steps on request, product cards, suggested parts and the
// support contact block.
type Assembler struct {
	catalog   domain.Catalog
	guides    domain.GuideStore
	suggester Suggester
}

// NewAssembler returns an assembler. A nil suggester disables keyword suggestions.
func NewAssembler(catalog domain.Catalog, guides domain.GuideStore, suggester Suggester) *Assembler {
	return &Assembler{catalog: catalog, guides: guides, suggester: suggester}
}

// Assemble builds the reply around an in-scope AI answer.
func (a *Assembler) Assemble(ctx context.Context, in *Input, aiText string) Outcome {
	text := aiText
	if g := a.requestedGuide(ctx, in, aiText); g != nil {
		text += formatGuideDetail(g)
	}

	var cards []domain.ProductReference
	if ShouldShowProductCards(in.Message, aiText, in.Signals) {
		parts := a.lookupParts(ctx, cardCandidates(in.Message, aiText))
		if strings.Contains(strings.ToLower(aiText), "replace") {
			parts = a.addSuggestions(ctx, in.Message, parts)
		}
		cards = appendCards(nil, parts...)
	}

	if ShouldShowContact(in.Message, text) {
		text = WithContact(text)
	}

	out := Reply(text)
	if len(cards) > 0 {
		out.Cards = cards
	}
	return out
}

// ProductCards returns the cards for a reply that needs no other assembly.
func (a *Assembler) ProductCards(ctx context.Context, in *Input, responseText string) []domain.ProductReference {
	if !ShouldShowProductCards(in.Message, responseText, in.Signals) {
		return nil
	}
	return appendCards(nil, a.lookupParts(ctx, cardCandidates(in.Message, responseText))...)
}

// ShouldShowProductCards holds when the message names a part, is a bare part
// number, or shows purchase intent for a product the response names by number.
func ShouldShowProductCards(message, responseText string, sig intent.Signals) bool {
	inMessage := len(entities.PartNumbers(message)) > 0
	if inMessage || entities.IsBarePartNumber(message) {
		return true
	}
	inResponse := len(entities.PartNumbers(responseText)) > 0
	return sig.Purchase && inResponse && sig.ProductRequest
}

// cardCandidates prefers the numbers the user typed over those in the response.
func cardCandidates(message, responseText string) []string {
	if pns := entities.PartNumbers(message); len(pns) > 0 {
		return pns
	}
	return entities.PartNumbers(responseText)
}

// lookupParts resolves the numbers concurrently and keeps their order.
// Misses and failed lookups leave nil entries.
func (a *Assembler) lookupParts(ctx context.Context, numbers []string) []*domain.Part {
	if len(numbers) == 0 || a.catalog == nil {
		return nil
	}
	found := make([]*domain.Part, len(numbers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLookups)
	for i, pn := range numbers {
		g.Go(func() error {
			p, err := a.catalog.GetPartData(gctx, pn)
			if err != nil {
				observability.LoggerFromContext(ctx).Warn("part lookup for card failed", "part_number", pn, "error", err)
				return nil
			}
			found[i] = p
			return nil
		})
	}
	_ = g.Wait()
	return found
}

// addSuggestions adds the usual parts for a recognised problem, or keyword
// matches when there is still nothing to show.
func (a *Assembler) addSuggestions(ctx context.Context, message string, parts []*domain.Part) []*domain.Part {
	if adv := dialogue.LookupAdvice(message); adv != nil {
		parts = append(parts, a.lookupParts(ctx, adv.CommonParts)...)
	}
	if len(appendCards(nil, parts...)) > 0 || a.suggester == nil {
		return parts
	}
	suggested, err := a.suggester.Suggest(ctx, message, suggestionLimit)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("part suggestion failed", "error", err)
		return parts
	}
	return append(parts, suggested...)
}

// appendCards adds the non-nil parts to cards, skipping part numbers already present.
func appendCards(cards []domain.ProductReference, parts ...*domain.Part) []domain.ProductReference {
	seen := make(map[string]bool, len(cards)+len(parts))
	for _, c := range cards {
		seen[c.PartNumber] = true
	}
	for _, p := range parts {
		if p == nil || seen[p.PartNumber] {
			continue
		}
		seen[p.PartNumber] = true
		cards = append(cards, p.Reference())
	}
	return cards
}

// requestedGuide returns the guide for the part the user asked to install,
// but only when they asked for the full steps.
func (a *Assembler) requestedGuide(ctx context.Context, in *Input, aiText string) *domain.InstallationGuide {
	if a.guides == nil || !in.Signals.InstallMention || !in.Entities.HasParts() {
		return nil
	}
	offer := aiText
	if last := domain.LastAssistant(in.History); last != nil {
		offer = last.Text + "\n" + aiText
	}
	if !in.Signals.DetailedGuide && !intent.AcceptsWalkThrough(in.Message, offer) {
		return nil
	}

	pn := in.Entities.PartNumbers[0]
	g, err := a.guides.GetInstallationGuide(ctx, pn)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("installation guide lookup failed", "part_number", pn, "error", err)
		return nil
	}
	return g
}

// FormatInstallation renders a guide as the installation strategy's reply.
func FormatInstallation(g *domain.InstallationGuide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Installation Guide for %s**\n", g.PartNumber)
	if g.PartName != "" {
		fmt.Fprintf(&b, "%s\n", g.PartName)
	}
	fmt.Fprintf(&b, "\n**Estimated Time:** %s  \n", g.EstimatedTime)
	fmt.Fprintf(&b, "**Difficulty Level:** %s  \n", strings.ToUpper(g.Difficulty))
	fmt.Fprintf(&b, "**Tools Required:** %s\n\n", strings.Join(g.Tools, ", "))

	b.WriteString("**Step-by-Step Instructions:**\n\n")
	steps := make([]string, 0, len(g.Steps))
	for i, st := range g.Steps {
		line := fmt.Sprintf("**%d.** %s: %s", i+1, st.Title, st.Description)
		if st.Warning != "" {
			line += " ⚠️ " + st.Warning
		}
		steps = append(steps, line)
	}
	b.WriteString(strings.Join(steps, "\n\n"))

	b.WriteString("\n\n**Important Notes:**\n")
	for _, n := range append(append([]string(nil), g.SafetyNotes...), installNotes...) {
		fmt.Fprintf(&b, "• %s\n", n)
	}
	if len(g.Tips) > 0 {
		fmt.Fprintf(&b, "\n**Tips:** %s\n", strings.Join(g.Tips, " • "))
	}
	if g.VideoURL != "" {
		fmt.Fprintf(&b, "\n**Video:** %s\n", g.VideoURL)
	}
	fmt.Fprintf(&b, "\nFor technical support during installation, contact PartSelect at %s.", ContactPhone)
	return b.String()
}

// formatGuideDetail renders the guide appended below an AI answer.
func formatGuideDetail(g *domain.InstallationGuide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\n**Installation Guide for %s (%s)**\n", g.PartName, g.PartNumber)
	fmt.Fprintf(&b, "**Difficulty:** %s • **Time:** %s\n", g.Difficulty, g.EstimatedTime)
	fmt.Fprintf(&b, "**Tools:** %s\n\n", strings.Join(g.Tools, ", "))
	b.WriteString("**Steps:**\n")
	for i, st := range g.Steps {
		fmt.Fprintf(&b, "%d. **%s**: %s", i+1, st.Title, st.Description)
		if st.Warning != "" {
			b.WriteString(" ⚠️ " + st.Warning)
		}
		b.WriteString("\n")
	}
	if len(g.Tips) > 0 {
		fmt.Fprintf(&b, "\n**Tips:** %s", strings.Join(g.Tips, " • "))
	}
	return strings.TrimRight(b.String(), "\n")
}
