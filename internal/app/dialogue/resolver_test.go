package dialogue_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/partsdesk/internal/app/dialogue"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

func user(text string) *domain.Turn {
	return &domain.Turn{Role: domain.RoleUser, Text: text}
}

func assistant(text string, state *domain.DialogueState) *domain.Turn {
	return &domain.Turn{Role: domain.RoleAssistant, Text: text, State: state}
}

func TestStartDrainFlow(t *testing.T) {
	r := dialogue.NewResolver()

	res := r.Resolve("My dishwasher won't drain", nil)
	require.True(t, res.IsHandled())

	assert.Contains(t, res.Text, "Is there visible food debris or buildup in the drain filter?")
	assert.Equal(t, 3, strings.Count(res.Text, "• "))
	for _, opt := range []string{"• Yes, lots of debris", "• Some debris", "• No debris visible"} {
		assert.Contains(t, res.Text, opt)
	}
	assert.Equal(t, &domain.DialogueState{Flow: domain.FlowDrain, Step: "filter"}, res.State)
	assert.False(t, res.Continued)
}

func TestContinueFromTranscriptWithoutState(t *testing.T) {
	r := dialogue.NewResolver()
	history := []*domain.Turn{
		user("My dishwasher won't drain"),
		assistant("Let's figure out what's going on with your dishwasher. Check the drain filter. Is there debris?", nil),
	}

	res := r.Resolve("yes, lots of debris", history)
	require.True(t, res.IsHandled())
	assert.True(t, strings.HasPrefix(res.Text, "Clean that filter thoroughly with warm water and a soft brush."))
	assert.Contains(t, res.Text, "Did cleaning the filter fix the drainage issue?")
	assert.Equal(t, &domain.DialogueState{Flow: domain.FlowDrain, Step: "verify_filter"}, res.State)
	assert.True(t, res.Continued)
}

func TestContinueFromStateToken(t *testing.T) {
	r := dialogue.NewResolver()
	history := []*domain.Turn{
		user("no debris visible"),
		assistant("reworded hose question", &domain.DialogueState{Flow: domain.FlowDrain, Step: "hose"}),
	}

	res := r.Resolve("looks normal", history)
	require.True(t, res.IsHandled())
	assert.Contains(t, res.Text, "PS11756692")
	assert.Contains(t, res.Text, "technician")
	assert.Equal(t, &domain.DialogueState{Flow: domain.FlowDrain}, res.State, "terminal answers close the flow")
}

func TestStillNotWorkingIsNotFixed(t *testing.T) {
	r := dialogue.NewResolver()
	history := []*domain.Turn{
		assistant("Did cleaning the filter fix the drainage issue?", &domain.DialogueState{Flow: domain.FlowDrain, Step: "verify_filter"}),
	}

	res := r.Resolve("still not working", history)
	require.True(t, res.IsHandled())
	assert.Contains(t, res.Text, "PS11753379")
	assert.NotContains(t, res.Text, "Great!")
}

func TestPurchaseIntentEscapesFlow(t *testing.T) {
	r := dialogue.NewResolver()
	history := []*domain.Turn{
		assistant("Is there visible food debris or buildup in the drain filter? Pick one of these:", &domain.DialogueState{Flow: domain.FlowDrain, Step: "filter"}),
	}

	res := r.Resolve("yes I want to buy a new drain pump", history)
	assert.False(t, res.IsHandled())
}

func TestUnmatchedAnswerKeepsState(t *testing.T) {
	r := dialogue.NewResolver()
	state := &domain.DialogueState{Flow: domain.FlowIce, Step: "power"}
	history := []*domain.Turn{assistant("Is the ice maker switched ON and the wire arm in the DOWN position?", state)}

	res := r.Resolve("I'm not sure", history)
	require.True(t, res.IsHandled())
	assert.Equal(t, "Tell me more about what's happening with the ice maker and I'll guide you to the next step.", res.Text)
	assert.Equal(t, state, res.State)
}

func TestIceFlowThreeLevels(t *testing.T) {
	r := dialogue.NewResolver()

	res := r.Resolve("my fridge ice maker is not working", nil)
	require.True(t, res.IsHandled())
	require.Equal(t, domain.FlowIce, res.State.Flow)

	var history []*domain.Turn
	step := func(msg string) dialogue.Result {
		history = append(history, assistant(res.Text, res.State))
		res = r.Resolve(msg, history)
		require.True(t, res.IsHandled(), msg)
		return res
	}

	step("Yes, both are correct")
	assert.Contains(t, res.Text, "Is water flowing to the water dispenser (if equipped)?")
	assert.Equal(t, domain.StepID("water"), res.State.Step)

	step("No water dispenser")
	assert.Contains(t, res.Text, "Is the water line connected and the shut-off valve open?")
	assert.Equal(t, domain.StepID("line"), res.State.Step)

	step("Connected and open")
	assert.Contains(t, res.Text, "PS12584610")
	assert.False(t, res.State.Active())
}

func TestCoolingAndCleaningBranches(t *testing.T) {
	r := dialogue.NewResolver()

	res := r.Continue("door seals seem loose", domain.DialogueState{Flow: domain.FlowCooling, Step: "settings"})
	assert.Contains(t, res.Text, "PS2163382")

	res = r.Continue("no, vents are clear", domain.DialogueState{Flow: domain.FlowCooling, Step: "vents"})
	assert.Contains(t, res.Text, "PS2355119")

	res = r.Continue("water not hot enough", domain.DialogueState{Flow: domain.FlowCleaning, Step: "spray"})
	assert.Contains(t, res.Text, "120°F")
	assert.Equal(t, domain.StepID("verify_water"), res.State.Step)

	res = r.Continue("it's unusually quiet", domain.DialogueState{Flow: domain.FlowCleaning, Step: "motor"})
	assert.Contains(t, res.Text, "PS11756692")
}

func TestNewRequestSwitchesFlow(t *testing.T) {
	r := dialogue.NewResolver()
	history := []*domain.Turn{
		user("my dishwasher won't drain"),
		assistant("Is the drain hose kinked?", &domain.DialogueState{Flow: domain.FlowDrain, Step: "hose"}),
	}

	res := r.Resolve("also my fridge is not cooling", history)
	require.True(t, res.IsHandled())
	assert.Equal(t, domain.FlowCooling, res.State.Flow)
}

func TestGenericRequest(t *testing.T) {
	r := dialogue.NewResolver()

	res := r.Resolve("my fridge is broken", nil)
	require.True(t, res.IsHandled())
	assert.True(t, res.Generic)
	assert.Equal(t, dialogue.GenericPrompt, res.Text)
	assert.Nil(t, res.State)
}

func TestIdentify(t *testing.T) {
	assert.Equal(t, domain.FlowNone, dialogue.Identify("my dishwasher is broken", domain.ApplianceDishwasher))
	assert.Equal(t, domain.FlowCleaning, dialogue.Identify("dishes not clean", domain.ApplianceDishwasher))
	assert.Equal(t, domain.FlowNone, dialogue.Identify("price of a service", domain.ApplianceRefrigerator))
	assert.Equal(t, domain.FlowIce, dialogue.Identify("no ice", domain.ApplianceRefrigerator))
}

func TestLookupAdvice(t *testing.T) {
	a := dialogue.LookupAdvice("my ice maker stopped")
	require.NotNil(t, a)
	assert.Equal(t, "ice maker not working", a.Problem)

	a = dialogue.LookupAdvice("Dishwasher not cleaning dishes anymore")
	require.NotNil(t, a)
	assert.Equal(t, []string{"PS11739132", "PS11747979"}, a.CommonParts)

	assert.Nil(t, dialogue.LookupAdvice("hello there"))
	assert.Len(t, dialogue.AdviceFor(domain.ApplianceDishwasher), 2)
}
