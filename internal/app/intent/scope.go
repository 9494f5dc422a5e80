package intent

// Reason explains a gate verdict.
type Reason string

const (
	ReasonAppliance          Reason = "appliance"
	ReasonAllowedContext     Reason = "allowed_context"
	ReasonEmotional          Reason = "emotional"
	ReasonAdversarial        Reason = "adversarial"
	ReasonForbiddenAppliance Reason = "forbidden_appliance"
	ReasonStandaloneFreezer  Reason = "standalone_freezer"
	ReasonFreezerClarify     Reason = "freezer_clarify"
	ReasonUnrelated          Reason = "unrelated"
)

const (
	EmotionalRedirect = "I can only help with refrigerator and dishwasher parts. For other support, please contact appropriate services."
	ApplianceRedirect = "I can only help with refrigerator and dishwasher parts. For other appliance parts, please contact PartSelect general support."
	FreezerRedirect   = "I can only help with refrigerator and dishwasher parts. For standalone freezer parts, please contact PartSelect general support."
	FreezerQuestion   = "Is this the freezer compartment inside your refrigerator, or a standalone freezer unit?"
)

// Verdict is the gate decision. Reply is set whenever the AI backend must not
// be called: out-of-scope redirects and the freezer clarifying question.
type Verdict struct {
	InScope bool
	Reason  Reason
	Reply   string
}

var (
	supportedAppliances = Phrases{"refrigerator", "dishwasher", "fridge"}

	emotionalContent = AnyOf{
		Phrases{"i feel", "feeling", "mental health", "personal problem", "family issue"},
		Words{"sad", "depressed", "angry", "upset", "emotional", "counseling", "therapy", "relationship", "stressed"},
	}

	adversarialContent = Phrases{
		"pretend to be", "act as", "roleplay as", "role play as", "imagine you are",
		"forget previous instructions", "forget your instructions", "ignore previous instructions",
		"new instructions", "override", "my boss said", "company policy changed",
		"special case", "exception", "pretend i'm your manager", "imagine if",
		"hypothetically", "what if you were",
	}

	standaloneFreezer = Phrases{
		"chest freezer", "upright freezer", "deep freezer", "garage freezer",
		"commercial freezer", "standalone freezer", "stand-alone freezer", "standalone ice machine",
	}

	forbiddenAppliances = Words{
		"washing machine", "washer", "dryer", "oven", "microwave", "stove", "cooktop",
		"garbage disposal", "air conditioner", "water heater", "space heater",
		"tv", "television", "computer", "laptop", "car", "automotive",
	}

	freezerInFridge = Phrases{"freezer compartment", "ice maker", "icemaker", "side-by-side", "french door"}

	allowedContext = AnyOf{
		Phrases{
			"ice", "debris", "drain", "filter", "clean", "water", "pump", "motor",
			"assembly", "clog", "part", "install", "leak", "seal", "gasket",
			"order", "payment", "refund", "return", "buy", "purchase",
		},
		Words{"yes", "no", "some", "visible"},
		troubleshootKeywords,
		partNumberPattern,
		Rx(`\b[a-z]{2,4}\d{3,7}[a-z]*\d*\b`),
	}
)

// Gate decides whether a message belongs to the refrigerator and dishwasher domain.
type Gate struct{}

// NewGate returns the scope gate.
func NewGate() *Gate { return &Gate{} }

// Evaluate applies the rules in priority order.
func (g *Gate) Evaluate(message string) Verdict {
	text := Normalize(message)
	emotional := emotionalContent.Match(text)

	switch {
	case supportedAppliances.Match(text) && !emotional:
		return Verdict{InScope: true, Reason: ReasonAppliance}
	case emotional:
		return Verdict{Reason: ReasonEmotional, Reply: EmotionalRedirect}
	case adversarialContent.Match(text):
		return Verdict{Reason: ReasonAdversarial, Reply: ApplianceRedirect}
	case standaloneFreezer.Match(text):
		return Verdict{Reason: ReasonStandaloneFreezer, Reply: FreezerRedirect}
	case forbiddenAppliances.Match(text):
		return Verdict{Reason: ReasonForbiddenAppliance, Reply: ApplianceRedirect}
	case Words{"freezer"}.Match(text) && !freezerInFridge.Match(text):
		return Verdict{InScope: true, Reason: ReasonFreezerClarify, Reply: FreezerQuestion}
	case allowedContext.Match(text):
		return Verdict{InScope: true, Reason: ReasonAllowedContext}
	default:
		return Verdict{Reason: ReasonUnrelated, Reply: ApplianceRedirect}
	}
}
