package intent

var (
	// flowMarkers are phrases guided troubleshooting questions always carry.
	flowMarkers = Phrases{"drain filter", "debris", "pick one"}

	answerTokens = AnyOf{
		Phrases{
			"debris", "clean", "blocked", "kinked", "normal", "fixed", "working",
			"better", "still not", "not sure", "overload", "clogged", "hot enough",
			"seems fine", "connected", "loose", "clear", "slow", "dispenser",
			"don't know", "draining", "quiet", "running", "detergent", "following",
			"packed", "temperature", "correct", "seal", "vent",
		},
		Words{
			"yes", "no", "some", "lots", "bent", "fine", "good", "open", "off",
			"high", "cold", "hot", "both", "yeah", "yep", "nope",
		},
	}

	answerWalkThrough = Words{"yes", "yeah", "sure", "please", "ok", "okay"}
)

// HasAnswerToken reports whether the message reads like an answer to a diagnostic question.
func HasAnswerToken(message string) bool {
	return answerTokens.Match(Normalize(message))
}

// HasFlowMarkers reports whether any of the last two history entries carries a flow marker.
func HasFlowMarkers(history []string) bool {
	start := len(history) - 2
	if start < 0 {
		start = 0
	}
	for _, h := range history[start:] {
		if flowMarkers.Match(Normalize(h)) {
			return true
		}
	}
	return false
}

// IsTroubleshootingContinuation is the transcript-only continuation check:
// history is non-empty, one of its last two entries carries a flow marker and
// the message carries an answer token.
func IsTroubleshootingContinuation(message string, history []string) bool {
	if len(history) == 0 {
		return false
	}
	return HasFlowMarkers(history) && HasAnswerToken(message)
}

// AcceptsWalkThrough reports whether message says yes to a "walk you through" offer made in offerText.
func AcceptsWalkThrough(message, offerText string) bool {
	return Phrases{"walk you through"}.Match(Normalize(offerText)) &&
		answerWalkThrough.Match(Normalize(message))
}
