package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

// ConversationStore keeps conversations and their turns in process memory.
// It is NOT persistent and is only suitable for development / local mode.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[domain.ConversationID]*domain.Conversation
	turns         map[domain.ConversationID][]*domain.Turn
}

var _ domain.ConversationStore = (*ConversationStore)(nil)

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[domain.ConversationID]*domain.Conversation),
		turns:         make(map[domain.ConversationID][]*domain.Turn),
	}
}

func (s *ConversationStore) CreateConversation(_ context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[conv.ID]; exists {
		return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrAlreadyExists)
	}

	cp := *conv
	s.conversations[conv.ID] = &cp
	return nil
}

func (s *ConversationStore) GetConversation(_ context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	cp := *conv
	return &cp, nil
}

// AppendMessages adds every turn under one lock, so readers see all of them
// or none.
func (s *ConversationStore) AppendMessages(_ context.Context, id domain.ConversationID, turns ...*domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}

	for _, t := range turns {
		s.turns[id] = append(s.turns[id], cloneTurn(t))
		if t.CreatedAt.After(conv.UpdatedAt) {
			conv.UpdatedAt = t.CreatedAt
		}
	}
	return nil
}

func (s *ConversationStore) GetMessages(_ context.Context, id domain.ConversationID, limit int) ([]*domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[id]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]*domain.Turn, 0, len(turns))
	for _, t := range turns {
		out = append(out, cloneTurn(t))
	}
	return out, nil
}

func cloneTurn(t *domain.Turn) *domain.Turn {
	cp := *t
	cp.ProductCards = append([]domain.ProductReference(nil), t.ProductCards...)
	if t.State != nil {
		st := *t.State
		cp.State = &st
	}
	return &cp
}
