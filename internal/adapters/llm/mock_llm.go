package llm

import (
	"context"
	"strings"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

// MockLLM answers with canned replies chosen by keywords. It is used in local
// mode and whenever a real provider fails.
type MockLLM struct{}

var _ domain.LLMClient = (*MockLLM)(nil)

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(_ context.Context, userMessage string, _ domain.ConversationContext) (string, error) {
	return MockReply(userMessage), nil
}

// MockReply is deterministic for a given message.
func MockReply(userMessage string) string {
	msg := strings.ToLower(userMessage)
	switch {
	case strings.Contains(msg, "ice") && strings.Contains(msg, "not working"):
		return "Ice maker troubles are frustrating! Let me help you figure this out. Quick question - is your ice maker getting any power at all? You should see lights or hear sounds when you reset it."
	case strings.Contains(msg, "dishwasher") && (strings.Contains(msg, "not") || strings.Contains(msg, "won't") || strings.Contains(msg, "drain")):
		return "That's frustrating! Let's figure this out together. Quick question for you - after the cycle finishes, is there standing water in the bottom of your dishwasher, or does it just seem like it's not draining completely?"
	case strings.Contains(msg, "compatib"):
		return "Great question about compatibility! What's the part number you're looking at, and what's your appliance model? I'll check if they work together."
	case strings.Contains(msg, "install"):
		return "Installation help coming right up! What part are you planning to install? Before you start, disconnect power (and water if the part touches the water supply)."
	case strings.Contains(msg, "order") || strings.Contains(msg, "status"):
		return "I can help you track that order! What's your order number? It should be 6 digits. Once I have it I'll see what's happening with your shipment."
	default:
		return "Hey there! I'm here to help with refrigerator and dishwasher issues. What's going on with yours today? Is something not working right, or are you looking for a specific part?"
	}
}
