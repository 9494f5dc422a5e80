package domain

import "context"

// LLMClient defines how the core application interacts with an LLM service.
type LLMClient interface {
	GenerateReply(ctx context.Context, userMessage string, convCtx ConversationContext) (string, error)
}

// ConversationContext gives the LLM minimal context about the conversation.
type ConversationContext struct {
	ConversationID ConversationID
	History        []*Turn // last N turns, oldest first
	RecentParts    []string
	PartKnowledge  string
}

// AIResponse is the result of the AI fallback. InScope=false means the text is
// a templated redirect and must be returned as is.
type AIResponse struct {
	Text    string
	InScope bool
}

// AIBackend never fails: upstream errors are turned into deterministic replies.
type AIBackend interface {
	GenerateResponse(ctx context.Context, message string, history []*Turn) AIResponse
}

// ConversationStore persists conversations and their turns in insertion order.
type ConversationStore interface {
	GetConversation(ctx context.Context, id ConversationID) (*Conversation, error)
	CreateConversation(ctx context.Context, conv *Conversation) error
	// GetMessages returns the last limit turns oldest first; limit <= 0 returns all.
	GetMessages(ctx context.Context, id ConversationID, limit int) ([]*Turn, error)
	// AppendMessages stores all turns or none of them.
	AppendMessages(ctx context.Context, id ConversationID, turns ...*Turn) error
}

// TicketStore persists handoff tickets keyed by conversation id.
type TicketStore interface {
	// CreateTicket stores t unless the conversation already has a ticket,
	// in which case it returns created=false and no error.
	CreateTicket(ctx context.Context, t *HandoffTicket) (created bool, err error)
	// DeleteTicket removes the conversation's ticket only if its id is ticketID.
	// A missing ticket is not an error.
	DeleteTicket(ctx context.Context, conversationID ConversationID, ticketID TicketID) error
}

// Catalog looks up parts. Misses are (nil, nil) or empty slices.
type Catalog interface {
	GetPartData(ctx context.Context, partNumber string) (*Part, error)
	FindCompatibleParts(ctx context.Context, modelNumber string) ([]*Part, error)
	GetPartsByCategory(ctx context.Context, category Appliance) ([]*Part, error)
	SearchParts(ctx context.Context, query string) ([]*Part, error)
}

// GuideStore returns installation guides; unknown parts yield (nil, nil).
type GuideStore interface {
	GetInstallationGuide(ctx context.Context, partNumber string) (*InstallationGuide, error)
}

// OrderStore answers read-only order questions; unknown ids yield (nil, nil).
type OrderStore interface {
	GetOrderStatus(ctx context.Context, orderID string) (*OrderStatus, error)
	GetTransactionByOrderNumber(ctx context.Context, orderID string) (*Transaction, error)
	GetPaymentIssue(ctx context.Context, transactionID string) (*PaymentIssue, error)
	GetRefundStatus(ctx context.Context, orderID string) (*Refund, error)
}

// Handoff opens human-support tickets, at most one per conversation.
type Handoff interface {
	RequestHumanSupport(ctx context.Context, req HandoffRequest) HandoffResult
	// CancelTicket withdraws a ticket whose reply never reached the user.
	CancelTicket(ctx context.Context, conversationID ConversationID, ticketID TicketID) error
}
