package handoff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

const (
	// AlreadyCreatedMessage is returned for every request after the first in a conversation.
	AlreadyCreatedMessage = "A support ticket has already been created for this conversation. Is there anything else I can help you with while you wait?"

	// UnavailableMessage is returned when the ticket could not be stored.
	UnavailableMessage = "I wasn't able to create a support ticket right now. Please call PartSelect at 1-866-319-8402 (Monday to Saturday, 8am - 9pm EST) and a specialist will help you directly."
)

// Service opens human-support tickets. The store enforces one ticket per
// conversation, so the rule holds across restarts and replicas.
type Service struct {
	store domain.TicketStore
	now   func() time.Time
	newID func() domain.TicketID
}

var _ domain.Handoff = (*Service)(nil)

// NewService creates a handoff service from a TicketStore.
func NewService(store domain.TicketStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: NewTicketID,
	}
}

// NewTicketID returns "TKT-" followed by eight uppercase hex characters.
func NewTicketID() domain.TicketID {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.TicketID("TKT-" + strings.ToUpper(raw[:8]))
}

// CancelTicket removes a ticket created for a turn that was never stored, so
// a retry of that turn can open a fresh one.
func (s *Service) CancelTicket(ctx context.Context, conversationID domain.ConversationID, ticketID domain.TicketID) error {
	if err := s.store.DeleteTicket(ctx, conversationID, ticketID); err != nil {
		return fmt.Errorf("cancel ticket %s: %w", ticketID, err)
	}
	observability.LoggerFromContext(ctx).Info("handoff ticket cancelled",
		"conversation_id", conversationID,
		"ticket_id", ticketID,
	)
	return nil
}

// RequestHumanSupport never returns an error: store failures become a
// message pointing the user at the phone line.
func (s *Service) RequestHumanSupport(ctx context.Context, req domain.HandoffRequest) domain.HandoffResult {
	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", req.ConversationID,
		"reason", req.Reason,
	)

	ticket := &domain.HandoffTicket{
		ID:             s.newID(),
		ConversationID: req.ConversationID,
		UserMessage:    req.UserMessage,
		Reason:         req.Reason,
		CreatedAt:      s.now(),
	}

	created, err := s.store.CreateTicket(ctx, ticket)
	if err != nil {
		log.Error("failed to create handoff ticket", "error", err)
		return domain.HandoffResult{Success: false, Message: UnavailableMessage}
	}
	if !created {
		log.Info("handoff ticket already exists")
		return domain.HandoffResult{Success: false, Message: AlreadyCreatedMessage}
	}

	log.Info("handoff ticket created", "ticket_id", ticket.ID)
	return domain.HandoffResult{
		Success:  true,
		TicketID: ticket.ID,
		Message: fmt.Sprintf("I've created support ticket %s for you. One of our technical specialists will reach out within 2 hours during business hours (8 AM - 9 PM EST). You can reference this ticket number if you need to follow up. Is there anything else I can help you with in the meantime?",
			ticket.ID),
	}
}
