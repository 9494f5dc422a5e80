package domain

// HandoffTicket is a request for a human agent. At most one exists per conversation.
type HandoffTicket struct {
	ID             TicketID
	ConversationID ConversationID
	UserMessage    string
	Reason         string
	CreatedAt      Timestamp
}

// HandoffRequest is the input for opening a ticket.
type HandoffRequest struct {
	ConversationID ConversationID
	UserMessage    string
	Reason         string
}

// HandoffResult is returned to the router. TicketID is empty unless a new ticket was created.
type HandoffResult struct {
	Success  bool
	TicketID TicketID
	Message  string
}
