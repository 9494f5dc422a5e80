package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/partsdesk/internal/app/routing"
	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

// DefaultHistoryLimit is how many earlier turns the router sees.
const DefaultHistoryLimit = 10

var (
	ErrEmptyMessage          = errors.New("message must not be empty")
	ErrMissingConversationID = errors.New("conversationId must not be empty")
)

// Router picks and runs the response strategy for one message.
type Router interface {
	Route(ctx context.Context, id domain.ConversationID, message string, history []*domain.Turn) (*routing.Result, error)
}

// Service processes user turns. Turns of one conversation are handled one at
// a time; different conversations run in parallel.
type Service struct {
	store        domain.ConversationStore
	router       Router
	historyLimit int
	now          func() time.Time
	newID        func() domain.MessageID
	locks        *keyedMutex
}

func NewService(store domain.ConversationStore, router Router, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Service{
		store:        store,
		router:       router,
		historyLimit: historyLimit,
		now:          time.Now,
		newID:        func() domain.MessageID { return domain.MessageID(uuid.NewString()) },
		locks:        newKeyedMutex(),
	}
}

type ProcessMessageInput struct {
	ConversationID domain.ConversationID
	Message        string
}

type ProcessMessageOutput struct {
	ConversationID domain.ConversationID
	Text           string
	ProductCards   []domain.ProductReference
	Strategy       string
}

// ProcessMessage routes the message and stores the user and assistant turns
// together. When routing or storing fails nothing of the turn is kept.
func (s *Service) ProcessMessage(ctx context.Context, in ProcessMessageInput) (*ProcessMessageOutput, error) {
	if strings.TrimSpace(string(in.ConversationID)) == "" {
		return nil, ErrMissingConversationID
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrEmptyMessage
	}

	ctx = observability.WithConversationID(ctx, string(in.ConversationID))
	log := observability.LoggerFromContext(ctx)

	unlock := s.locks.Lock(in.ConversationID)
	defer unlock()

	if err := s.ensureConversation(ctx, in.ConversationID); err != nil {
		log.Error("failed to open conversation", "error", err)
		return nil, err
	}

	history, err := s.store.GetMessages(ctx, in.ConversationID, s.historyLimit)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, fmt.Errorf("load history: %w", err)
	}

	received := s.now()
	res, err := s.router.Route(ctx, in.ConversationID, in.Message, history)
	if err != nil {
		log.Error("routing failed", "error", err)
		return nil, fmt.Errorf("route message: %w", err)
	}

	userTurn := &domain.Turn{
		ID:             s.newID(),
		ConversationID: in.ConversationID,
		Role:           domain.RoleUser,
		Text:           in.Message,
		CreatedAt:      received,
	}
	assistantTurn := &domain.Turn{
		ID:             s.newID(),
		ConversationID: in.ConversationID,
		Role:           domain.RoleAssistant,
		Text:           res.Text,
		ProductCards:   res.ProductCards,
		State:          res.State,
		CreatedAt:      s.now(),
	}
	if err := s.store.AppendMessages(ctx, in.ConversationID, userTurn, assistantTurn); err != nil {
		log.Error("failed to store turn", "error", err)
		if res.Rollback != nil {
			if rerr := res.Rollback(context.WithoutCancel(ctx)); rerr != nil {
				log.Error("failed to roll back turn side effects", "error", rerr)
			}
		}
		return nil, fmt.Errorf("store turn: %w", err)
	}

	log.Info("message processed",
		"strategy", res.Strategy,
		"cards", len(res.ProductCards),
		"history_len", len(history),
	)

	return &ProcessMessageOutput{
		ConversationID: in.ConversationID,
		Text:           res.Text,
		ProductCards:   res.ProductCards,
		Strategy:       res.Strategy,
	}, nil
}

func (s *Service) ensureConversation(ctx context.Context, id domain.ConversationID) error {
	_, err := s.store.GetConversation(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get conversation: %w", err)
	}

	now := s.now()
	err = s.store.CreateConversation(ctx, &domain.Conversation{ID: id, CreatedAt: now, UpdatedAt: now})
	if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

// GetTimeline returns the conversation and its last limit turns; limit <= 0
// returns all of them.
func (s *Service) GetTimeline(
	ctx context.Context,
	id domain.ConversationID,
	limit int,
) (*domain.Conversation, []*domain.Turn, error) {

	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", id,
		"limit", limit,
	)

	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error("failed to get conversation", "error", err)
		}
		return nil, nil, err
	}

	turns, err := s.store.GetMessages(ctx, id, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, err
	}

	log.Info("fetched conversation timeline", "message_count", len(turns))

	return conv, turns, nil
}
