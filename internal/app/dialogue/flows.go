package dialogue

import (
	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

const anythingElse = "Is there anything else I can help you with?"

type (
	p = intent.Phrases
	w = intent.Words
	a = intent.AnyOf
)

// verify builds a "did that fix it?" step. Negative answers are checked first
// so that "still not working" never reads as "working".
func verify(id domain.StepID, question, unresolved, resolved string) *Step {
	return &Step{
		ID:       id,
		Question: question,
		Branches: []Branch{
			{When: a{p{"still not", "not working", "not draining", "not clean", "not better", "didn't", "did not", "no change", "same"}, w{"no", "nope"}}, Say: unresolved},
			{When: a{p{"fixed", "working", "draining", "better", "cleaner", "it works", "solved"}, w{"yes", "yeah", "yep"}}, Say: resolved},
		},
	}
}

func drainFlow() *Flow {
	const pumps = "Since basic cleaning didn't work, we need to check the pump system. The drain pump (PS11753379) or wash pump motor (PS11756692) likely needs replacement.\n\n" +
		"Do you want to order one of these parts, or would you prefer a technician to diagnose which one exactly?"
	const fixed = "Great! The drainage issue is fixed. To prevent this from happening again, clean the filter monthly and scrape food off dishes before loading.\n\n" + anythingElse

	return &Flow{
		ID:        domain.FlowDrain,
		Appliance: domain.ApplianceDishwasher,
		Start:     "filter",
		Fallback:  "Tell me more about what you're seeing with the drainage issue and I'll guide you to the next step.",
		Keywords:  []string{"drain filter", "drain hose", "drainage", "draining"},
		Steps: map[domain.StepID]*Step{
			"filter": {
				ID:          "filter",
				Instruction: "Check the drain filter at the bottom of your dishwasher tub.",
				Question:    "Is there visible food debris or buildup in the drain filter?",
				Options:     []string{"Yes, lots of debris", "Some debris", "No debris visible"},
				Branches: []Branch{
					{
						When: a{p{"some debris", "a little"}, w{"some"}},
						Say:  "Clean the filter and also check if your garbage disposal (if connected) is working properly. Run the disposal first, then test the dishwasher.",
						Next: "verify_disposal",
					},
					{
						When: a{p{"no debris", "clean"}, w{"no", "none", "nope"}},
						Say:  "Since the filter's clean, let's check the drain hose under your sink. Look for the dishwasher drain hose connection.",
						Next: "hose",
					},
					{
						When: a{p{"lots of debris", "a lot", "debris"}, w{"yes", "yeah", "yep", "lots"}},
						Say:  "Clean that filter thoroughly with warm water and a soft brush. Remove all the food particles and grease buildup. Once it's clean, put it back and run a quick cycle to test.",
						Next: "verify_filter",
					},
				},
			},
			"hose": {
				ID:       "hose",
				Question: "Is the drain hose kinked, bent, or does it look clogged where it connects?",
				Options:  []string{"Kinked/bent", "Seems clogged", "Looks normal"},
				Branches: []Branch{
					{
						When: a{p{"kinked"}, w{"bent"}},
						Say:  "Straighten out that hose and make sure it has a smooth path. Avoid sharp bends. Test the dishwasher again.",
						Next: "verify_hose",
					},
					{
						When: p{"clogged", "blocked"},
						Say: "The drain hose needs cleaning or replacement. Part PS11746240 is the drain hose assembly that should fix this.\n\n" +
							"Would you like to order the replacement hose, or would you prefer a technician to take a look?",
					},
					{
						When: a{p{"normal", "fine"}, w{"good", "ok", "okay"}},
						Say: "If the filter and hose look good, the issue is likely the wash pump motor or drain pump. Part PS11756692 is the pump motor assembly, or PS11753379 is the drain pump.\n\n" +
							"Which would you prefer - ordering the part or having a technician diagnose which pump needs replacement?",
					},
				},
			},
			"verify_filter":   verify("verify_filter", "Did cleaning the filter fix the drainage issue?", pumps, fixed),
			"verify_disposal": verify("verify_disposal", "After cleaning the filter and running the disposal, is the dishwasher draining better?", pumps, fixed),
			"verify_hose":     verify("verify_hose", "Is it draining properly now?", pumps, fixed),
		},
	}
}

func cleaningFlow() *Flow {
	const motor = "Since the basics aren't fixing it, the wash pump motor likely needs replacement. Part PS11756692 should restore proper cleaning performance.\n\n" +
		"Would you like to order the wash pump motor, or would you prefer a technician to take a look?"
	const resolved = "Excellent! The cleaning issue is resolved. Keep using proper detergent amounts and good loading techniques for best results.\n\n" + anythingElse

	return &Flow{
		ID:        domain.FlowCleaning,
		Appliance: domain.ApplianceDishwasher,
		Start:     "loading",
		Fallback:  "Let me know what you're seeing with the cleaning performance and I'll help you with the next step.",
		Keywords:  []string{"detergent", "spray arms", "cleaning performance", "wash motor", "cleaning issue"},
		Steps: map[domain.StepID]*Step{
			"loading": {
				ID:          "loading",
				Instruction: "Check your loading technique and detergent usage.",
				Question:    "Are you using the correct amount of detergent and loading dishes properly?",
				Options:     []string{"Yes, following guidelines", "Not sure about detergent", "Dishes might be overloaded"},
				Branches: []Branch{
					{
						When: p{"not sure", "detergent"},
						Say:  "Use only dishwasher detergent (never hand soap) and follow the amount on the package. Also add rinse aid to help with drying and spotting.",
						Next: "verify_detergent",
					},
					{
						When: p{"overload", "packed", "crowded"},
						Say:  "Load dishes with space between them so water can reach all surfaces. Don't nest utensils together - separate them in the basket.",
						Next: "verify_loading",
					},
					{
						When: a{p{"following", "guidelines", "correct", "properly"}, w{"yes", "yeah", "yep"}},
						Say:  "Good, the basics are covered. Let's look at water temperature and the spray arms.",
						Next: "spray",
					},
				},
			},
			"spray": {
				ID:       "spray",
				Question: "Are the spray arms spinning freely and is your water heater set to 120°F?",
				Options:  []string{"Spray arms blocked", "Water not hot enough", "Both seem fine"},
				Branches: []Branch{
					{
						When: p{"blocked", "clogged", "stuck"},
						Say:  "Remove the spray arms and rinse them under hot water. Use a toothpick to clear any holes that are blocked with food or grease.",
						Next: "verify_spray",
					},
					{
						When: a{p{"not hot", "hot enough", "lukewarm"}, w{"cold"}},
						Say:  "Set your water heater to 120°F. Run hot water at your kitchen sink until it's steaming before starting the dishwasher.",
						Next: "verify_water",
					},
					{
						When: a{p{"both fine", "seem fine", "fine"}, w{"good", "yes"}},
						Say:  "Let's check the wash pump motor. If it's not creating enough pressure, dishes won't get clean. Part PS11756692 is the wash pump motor assembly.",
						Next: "motor",
					},
				},
			},
			"motor": {
				ID:       "motor",
				Question: "Are you hearing the wash motor running during the cycle, or is it unusually quiet?",
				Branches: []Branch{
					{
						When: p{"quiet", "silent", "not running", "no sound", "can't hear", "nothing"},
						Say: "A silent wash motor usually means it has failed. Part PS11756692 is the wash pump motor assembly that replaces it.\n\n" +
							"Would you like to order it, or would you prefer a technician to confirm the diagnosis first?",
					},
					{
						When: p{"running", "hear", "loud", "humming", "noise"},
						Say: "If the motor runs but dishes still come out dirty, the pump isn't building enough pressure. Part PS11756692 usually restores it.\n\n" +
							"Would you like to order the wash pump motor, or have a technician check the pressure first?",
					},
				},
			},
			"verify_detergent": verify("verify_detergent", "After using proper detergent and rinse aid, are the dishes coming out cleaner?", motor, resolved),
			"verify_loading":   verify("verify_loading", "With better loading, are you getting better cleaning results?", motor, resolved),
			"verify_spray":     verify("verify_spray", "After cleaning the spray arms, is the cleaning performance better?", motor, resolved),
			"verify_water":     verify("verify_water", "With hotter water, are the dishes getting cleaner?", motor, resolved),
		},
	}
}

func iceFlow() *Flow {
	const assembly = "Would you like to order it, or would you prefer a technician to confirm first?"

	return &Flow{
		ID:        domain.FlowIce,
		Appliance: domain.ApplianceRefrigerator,
		Start:     "power",
		Fallback:  "Tell me more about what's happening with the ice maker and I'll guide you to the next step.",
		Keywords:  []string{"ice maker", "water dispenser", "water line", "wire arm"},
		Steps: map[domain.StepID]*Step{
			"power": {
				ID:          "power",
				Instruction: "Check the ice maker power and settings.",
				Question:    "Is the ice maker switched ON and the wire arm in the DOWN position?",
				Options:     []string{"Yes, both are correct", "No, one or both are off"},
				Branches: []Branch{
					{
						When: a{p{"one or both", "not on", "was off", "is off", "are off"}, w{"no", "nope", "off"}},
						Say: "Turn on the ice maker and lower the wire arm. Wait 24 hours for ice production to begin. If there's still no ice after a day, come back and we'll check the water supply.\n\n" +
							anythingElse,
					},
					{
						When: a{p{"correct", "both are", "it is", "they are"}, w{"yes", "yeah", "yep", "both", "on"}},
						Say:  "Good, power and settings are fine. Let's check the water supply to your refrigerator.",
						Next: "water",
					},
				},
			},
			"water": {
				ID:       "water",
				Question: "Is water flowing to the water dispenser (if equipped)?",
				Options:  []string{"Yes, water flows normally", "No water or very slow", "No water dispenser"},
				Branches: []Branch{
					{
						When: p{"no water dispenser", "no dispenser", "don't have", "not equipped", "doesn't have"},
						Say:  "No problem. Let's check the water line behind the refrigerator.",
						Next: "line",
					},
					{
						When: a{p{"no water", "slow", "trickle", "weak"}, w{"no", "nope"}},
						Say: "Replace the water filter first, since a clogged filter starves the ice maker. Part PS2179605 is the replacement water filter. If the flow is still weak with a new filter, the water inlet valve may need replacement.\n\n" +
							"Would you like to order the filter, or would you prefer a technician to check the inlet valve?",
					},
					{
						When: a{p{"normal", "flows", "fine"}, w{"yes", "yeah", "yep", "good"}},
						Say:  "Since water is reaching the dispenser, the ice maker assembly itself is the likely culprit. Part PS12584610 is the ice maker assembly replacement.\n\n" + assembly,
					},
				},
			},
			"line": {
				ID:       "line",
				Question: "Is the water line connected and the shut-off valve open?",
				Options:  []string{"Connected and open", "Not connected", "Don't know"},
				Branches: []Branch{
					{
						When: p{"not connected", "disconnected", "closed", "not open", "shut"},
						Say:  "Connect the water line and open the shut-off valve. Wait 24 hours for ice production to start.\n\n" + anythingElse,
					},
					{
						When: p{"don't know", "not sure", "no idea", "can't tell"},
						Say: "A technician can inspect the water line and valve for you. If the line checks out, the ice maker assembly (PS12584610) is the usual fix.\n\n" +
							"Would you like to order the part, or would you prefer to book a technician?",
					},
					{
						When: a{p{"connected", "open"}, w{"yes", "yeah", "yep"}},
						Say:  "With the water line connected and the valve open, the ice maker assembly (PS12584610) likely needs replacement.\n\n" + assembly,
					},
				},
			},
		},
	}
}

func coolingFlow() *Flow {
	return &Flow{
		ID:        domain.FlowCooling,
		Appliance: domain.ApplianceRefrigerator,
		Start:     "settings",
		Fallback:  "Tell me more about the temperatures you're seeing and I'll guide you to the next step.",
		Keywords:  []string{"door seals", "air vents", "temperature settings", "cooling"},
		Steps: map[domain.StepID]*Step{
			"settings": {
				ID:          "settings",
				Instruction: "Check the temperature settings and door seals.",
				Question:    "Are the temperature settings correct (37°F fridge, 0°F freezer) and do the door seals close tightly?",
				Options:     []string{"Settings and seals are good", "Temperature too high", "Door seals seem loose"},
				Branches: []Branch{
					{
						When: p{"too high", "too warm", "set wrong", "not set", "wrong temp"},
						Say:  "Set the refrigerator to 37°F and the freezer to 0°F, then give it 24 hours to settle before checking again.\n\n" + anythingElse,
					},
					{
						When: p{"loose", "torn", "cracked", "gap", "don't seal", "not seal", "doesn't seal"},
						Say: "Clean the door seals with warm soapy water and look for cracks or tears. A damaged gasket lets warm air in. Part PS2163382 is the replacement door gasket.\n\n" +
							"Would you like to order the gasket, or would you prefer a technician to check the seal?",
					},
					{
						When: a{p{"good", "fine", "correct"}, w{"yes", "yeah", "yep"}},
						Say:  "Settings and seals check out. Let's look at air circulation.",
						Next: "vents",
					},
				},
			},
			"vents": {
				ID:       "vents",
				Question: "Are the air vents inside blocked by food items?",
				Options:  []string{"Yes, vents are blocked", "No, vents are clear"},
				Branches: []Branch{
					{
						When: a{p{"not blocked", "clear"}, w{"no", "nope"}},
						Say: "With clear vents and good settings, the evaporator fan motor is the most common cause. Part PS2355119 is the evaporator fan motor, and a failed defrost heater (PS2071928) can cause the same symptom.\n\n" +
							"Would you like to order one of these parts, or would you prefer a technician to diagnose which one it is?",
					},
					{
						When: a{p{"blocked"}, w{"yes", "yeah", "yep"}},
						Say:  "Move items away from the vents so cold air can circulate, then wait 24 hours for the temperature to recover.\n\n" + anythingElse,
					},
				},
			},
		},
	}
}
