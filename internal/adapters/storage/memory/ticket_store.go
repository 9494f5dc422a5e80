package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

// TicketStore keeps at most one handoff ticket per conversation in memory.
type TicketStore struct {
	mu      sync.Mutex
	tickets map[domain.ConversationID]*domain.HandoffTicket
}

var _ domain.TicketStore = (*TicketStore)(nil)

func NewTicketStore() *TicketStore {
	return &TicketStore{
		tickets: make(map[domain.ConversationID]*domain.HandoffTicket),
	}
}

func (s *TicketStore) CreateTicket(_ context.Context, t *domain.HandoffTicket) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tickets[t.ConversationID]; exists {
		return false, nil
	}
	cp := *t
	s.tickets[t.ConversationID] = &cp
	return true, nil
}

func (s *TicketStore) DeleteTicket(_ context.Context, conversationID domain.ConversationID, ticketID domain.TicketID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tickets[conversationID]; ok && t.ID == ticketID {
		delete(s.tickets, conversationID)
	}
	return nil
}

// Ticket returns the conversation's ticket, if any.
func (s *TicketStore) Ticket(id domain.ConversationID) (*domain.HandoffTicket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}
