package intent

import "strings"

const (
	TagOrderInquiry     Tag = "order_inquiry"
	TagTransactionIssue Tag = "transaction_issue"
	TagRefundRequest    Tag = "refund_request"
	TagHandoff          Tag = "handoff"
	TagInstall          Tag = "install"
	TagCompatibility    Tag = "compatibility"
	TagPurchase         Tag = "purchase"
	TagTroubleshoot     Tag = "troubleshoot"
	TagProductRequest   Tag = "product_request"
	TagDetailedGuide    Tag = "detailed_guide"
	TagInstallMention   Tag = "install_mention"
)

var (
	purchaseKeywords = Phrases{
		"buy", "purchase", "order", "get", "need", "want", "wanna",
		"price", "cost", "how much", "shop", "looking for",
	}

	troubleshootKeywords = Phrases{
		"troubleshoot", "fix", "repair", "not working", "broken",
		"won't", "doesn't", "problem", "issue",
	}

	// symptomCompound pairs a symptom word with the appliance name or a negation.
	symptomCompound = AnyOf{
		AllOf{Phrases{"drain"}, Phrases{"dishwasher", "not"}},
		AllOf{Phrases{"cool"}, Phrases{"refrigerator", "fridge", "not"}},
		AllOf{Phrases{"ice"}, Phrases{"not"}},
		AllOf{Phrases{"clean"}, Phrases{"dishwasher", "not"}},
	}

	orderNumberPattern = Rx(`\b\d{6}\b`)
	partNumberPattern  = Rx(`\bps\d+`)

	orderInquiry = AnyOf{
		AllOf{Phrases{"order"}, AnyOf{Phrases{"status", "track", "help", "find"}, orderNumberPattern}},
		Phrases{"can't find my order", "find my order"},
	}

	transactionIssue = AnyOf{Phrases{"payment", "declined", "billing"}, Words{"card"}}

	refundRequest = Phrases{"refund", "return", "money back"}

	handoffPhrases = Phrases{
		"talk to human", "talk to a human", "speak to person", "speak to a person",
		"human representative", "customer service", "real person", "live agent",
		"transfer me", "i want to talk to someone", "connect me to", "human support",
		"talk to person", "talk to a person", "i want to talk to an agent",
	}

	warrantyPhrases = Phrases{"warranty claim", "return policy", "refund request", "defective part"}

	installPattern = Rx(`(how.*?install|install.*?how|installation)`)

	compatibilityPattern = Rx(`(is.*?compatible|compatible.*?with|\bfits\b.*?model|\bwill\b.*?\bfit\b|\bdoes\b.*?\bfit\b)`)

	productRequestVocabulary = Phrases{
		"part", "ice maker", "icemaker", "pump", "filter", "assembly",
		"door bin", "shelf", "gasket", "seal",
	}

	detailedGuidePhrases = Phrases{
		"show me the steps", "give me the steps", "step by step",
		"detailed instructions", "full instructions",
	}

	installMention = AllOf{Phrases{"install", "replace", "how"}, partNumberPattern}
)

// Transaction rules are evaluated in this order; the first match wins.
var transactionRules = RuleSet{
	{Tag: TagOrderInquiry, When: orderInquiry},
	{Tag: TagTransactionIssue, When: transactionIssue},
	{Tag: TagRefundRequest, When: refundRequest},
}

// messageRules holds the remaining independent predicates.
var messageRules = RuleSet{
	{Tag: TagHandoff, When: AnyOf{handoffPhrases, warrantyPhrases}},
	{Tag: TagInstall, When: AllOf{installPattern, partNumberPattern}},
	{Tag: TagCompatibility, When: compatibilityPattern},
	{Tag: TagPurchase, When: purchaseKeywords},
	{Tag: TagTroubleshoot, When: AllOf{Not{purchaseKeywords}, AnyOf{troubleshootKeywords, symptomCompound}}},
	{Tag: TagProductRequest, When: productRequestVocabulary},
	{Tag: TagDetailedGuide, When: detailedGuidePhrases},
	{Tag: TagInstallMention, When: installMention},
}

// Normalize lowercases text and folds typographic apostrophes.
func Normalize(text string) string {
	text = strings.ToLower(text)
	return strings.NewReplacer("’", "'", "‘", "'").Replace(text)
}

// HasPurchaseIntent reports whether the message contains buying vocabulary.
func HasPurchaseIntent(text string) bool {
	return purchaseKeywords.Match(Normalize(text))
}

// IsTroubleshootingRequest is false whenever purchase intent is present.
func IsTroubleshootingRequest(text string) bool {
	return messageRules.Has(Normalize(text), TagTroubleshoot)
}
