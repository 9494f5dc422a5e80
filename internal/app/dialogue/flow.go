// Package dialogue runs the guided troubleshooting flows.
package dialogue

import (
	"strings"

	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

// Branch maps an answer to the reply it produces. An empty Next ends the flow.
type Branch struct {
	When intent.Matcher
	Say  string
	Next domain.StepID
}

// Step is one diagnostic question.
type Step struct {
	ID          domain.StepID
	Instruction string
	Question    string
	Options     []string
	Branches    []Branch
}

// Flow is a tree of steps for one issue family.
type Flow struct {
	ID        domain.FlowID
	Appliance domain.Appliance
	Start     domain.StepID
	Steps     map[domain.StepID]*Step
	// Fallback is asked when no branch matches; the state does not advance.
	Fallback string
	// Keywords identify the flow in assistant text that carries no state.
	Keywords []string
}

func (f *Flow) step(id domain.StepID) *Step {
	return f.Steps[id]
}

// Opening renders the first question of the flow.
func (f *Flow) Opening() string {
	st := f.step(f.Start)

	var b strings.Builder
	b.WriteString("Let's figure out what's going on with your ")
	b.WriteString(string(f.Appliance))
	b.WriteString(". ")
	b.WriteString(st.Instruction)
	b.WriteString("\n\n")
	b.WriteString(st.Question)
	b.WriteString("\n\nPick one of these:\n")
	for _, o := range st.Options {
		b.WriteString("• ")
		b.WriteString(o)
		b.WriteString("\n")
	}
	b.WriteString("\nThis'll help me get you the right fix.")
	return b.String()
}

// answer matches text against the branches of step in order.
func (f *Flow) answer(stepID domain.StepID, text string) (reply string, next *domain.DialogueState, ok bool) {
	st := f.step(stepID)
	if st == nil {
		return "", nil, false
	}
	for _, br := range st.Branches {
		if !br.When.Match(text) {
			continue
		}
		if br.Next == "" {
			return br.Say, &domain.DialogueState{Flow: f.ID}, true
		}
		nextStep := f.step(br.Next)
		reply = br.Say
		if nextStep != nil && nextStep.Question != "" {
			if reply != "" {
				reply += "\n\n"
			}
			reply += nextStep.Question
		}
		return reply, &domain.DialogueState{Flow: f.ID, Step: br.Next}, true
	}
	return "", nil, false
}
