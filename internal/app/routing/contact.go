package routing

import (
	"fmt"

	"github.com/PabloGalante/partsdesk/internal/app/intent"
)

const (
	ContactPhone   = "1-866-319-8402"
	ContactHours   = "Monday to Saturday, 8am - 9pm EST"
	ContactWebsite = "https://www.partselect.com"

	contactSeparator = "\n\n---\n\n"
)

var (
	contactTriggers = intent.AnyOf{
		intent.Words{
			"order", "shipping", "delivery", "track", "cancel", "return", "refund", "warranty",
			"failed", "error", "complex", "complicated", "difficult",
			"call", "phone", "human", "representative", "agent", "escalate", "supervisor", "manager",
		},
		intent.Phrases{
			"not working", "still broken", "doesnt work", "doesn't work", "help me install",
			"speak to someone", "verify compatibility", "double check", "make sure",
			"confirm fit", "specific model", "exact model",
		},
	}

	// referralPhrases in assistant text mean the answer defers to the retailer.
	referralPhrases = intent.Phrases{
		"contact partselect", "check with partselect", "partselect support",
		"verify with partselect", "complex installation", "technical support",
	}
)

// ContactBlock is the support contact card appended to replies.
func ContactBlock() string {
	return fmt.Sprintf(`For direct assistance with orders, technical support, or specific compatibility questions, you can contact PartSelect directly:

📞 **%s**
%s

🌐 **%s**
Live chat available on their website

Their support team can help with:
• Order status and shipping
• Technical installation guidance
• Specific model compatibility verification
• Warranty and return questions
• Complex troubleshooting beyond our scope`, ContactPhone, ContactHours, ContactWebsite)
}

// ShouldShowContact reports whether the user asked for something support
// handles or the response itself points at support.
func ShouldShowContact(message, response string) bool {
	return contactTriggers.Match(intent.Normalize(message)) ||
		referralPhrases.Match(intent.Normalize(response))
}

// WithContact appends the contact block to text.
func WithContact(text string) string {
	return text + contactSeparator + ContactBlock()
}
