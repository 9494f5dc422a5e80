package intent

import (
	"regexp"
	"strings"
)

var installPartRe = regexp.MustCompile(`(?i)(PS\d+)`)

// Signals is the full classification of one user message. The flags are not
// mutually exclusive; the router decides precedence.
type Signals struct {
	// Transaction is the first matching transaction-class tag, if any.
	Transaction Tag

	Handoff        bool
	Install        bool
	InstallPart    string
	Compatibility  bool
	Purchase       bool
	Troubleshoot   bool
	ProductRequest bool
	DetailedGuide  bool
	InstallMention bool
}

// Classify evaluates every rule over the message.
func Classify(message string) Signals {
	text := Normalize(message)

	var s Signals
	if tag, ok := transactionRules.First(text); ok {
		s.Transaction = tag
	}

	for _, tag := range messageRules.All(text) {
		switch tag {
		case TagHandoff:
			s.Handoff = true
		case TagInstall:
			s.Install = true
		case TagCompatibility:
			s.Compatibility = true
		case TagPurchase:
			s.Purchase = true
		case TagTroubleshoot:
			s.Troubleshoot = true
		case TagProductRequest:
			s.ProductRequest = true
		case TagDetailedGuide:
			s.DetailedGuide = true
		case TagInstallMention:
			s.InstallMention = true
		}
	}

	if s.Install {
		if m := installPartRe.FindStringSubmatch(message); m != nil {
			s.InstallPart = strings.ToUpper(m[1])
		}
	}
	return s
}
