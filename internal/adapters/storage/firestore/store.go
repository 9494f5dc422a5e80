package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

type Store struct {
	client *firestore.Client
}

var (
	_ domain.ConversationStore = (*Store)(nil)
	_ domain.TicketStore       = (*Store)(nil)
)

// NewStore creates a Firestore store.
// Uses the project passed (PARTSDESK_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) conversationsCol() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *Store) conversationDoc(id domain.ConversationID) *firestore.DocumentRef {
	return s.conversationsCol().Doc(string(id))
}

func (s *Store) messagesCol(id domain.ConversationID) *firestore.CollectionRef {
	return s.conversationDoc(id).Collection("messages")
}

func (s *Store) ticketDoc(id domain.ConversationID) *firestore.DocumentRef {
	return s.client.Collection("handoff_tickets").Doc(string(id))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type conversationDoc struct {
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
	// Count orders messages inside the conversation.
	Count int64 `firestore:"count"`
}

type cardDoc struct {
	PartNumber string `firestore:"part_number"`
	Name       string `firestore:"name"`
	Price      string `firestore:"price"`
	ImageURL   string `firestore:"image_url"`
	BuyLink    string `firestore:"buy_link"`
}

type messageDoc struct {
	Seq          int64     `firestore:"seq"`
	Role         string    `firestore:"role"`
	Text         string    `firestore:"text"`
	ProductCards []cardDoc `firestore:"product_cards"`
	Flow         *string   `firestore:"flow"`
	Step         *string   `firestore:"step"`
	CreatedAt    time.Time `firestore:"created_at"`
}

type ticketDoc struct {
	ID          string    `firestore:"id"`
	UserMessage string    `firestore:"user_message"`
	Reason      string    `firestore:"reason"`
	CreatedAt   time.Time `firestore:"created_at"`
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	doc := conversationDoc{
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}

	_, err := s.conversationDoc(conv.ID).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("firestore CreateConversation: %w", err)
	}
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	snap, err := s.conversationDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetConversation: %w", err)
	}

	var doc conversationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetConversation decode: %w", err)
	}

	return &domain.Conversation{
		ID:        id,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// AppendMessages writes all turns and bumps the conversation counter in one
// transaction, so concurrent writers never interleave sequence numbers.
func (s *Store) AppendMessages(ctx context.Context, id domain.ConversationID, turns ...*domain.Turn) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		convRef := s.conversationDoc(id)
		snap, err := tx.Get(convRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
			}
			return err
		}
		var conv conversationDoc
		if err := snap.DataTo(&conv); err != nil {
			return fmt.Errorf("decode conversationDoc: %w", err)
		}

		for _, t := range turns {
			conv.Count++
			if err := tx.Create(s.messagesCol(id).Doc(string(t.ID)), toMessageDoc(conv.Count, t)); err != nil {
				return err
			}
			if t.CreatedAt.After(conv.UpdatedAt) {
				conv.UpdatedAt = t.CreatedAt
			}
		}
		return tx.Set(convRef, conv)
	})
	if err != nil {
		return fmt.Errorf("firestore AppendMessages: %w", err)
	}
	return nil
}

func toMessageDoc(seq int64, t *domain.Turn) messageDoc {
	doc := messageDoc{
		Seq:       seq,
		Role:      string(t.Role),
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
	for _, c := range t.ProductCards {
		doc.ProductCards = append(doc.ProductCards, cardDoc{
			PartNumber: c.PartNumber,
			Name:       c.Name,
			Price:      c.Price,
			ImageURL:   c.ImageURL,
			BuyLink:    c.BuyLink,
		})
	}
	if t.State != nil {
		flow, step := string(t.State.Flow), string(t.State.Step)
		doc.Flow, doc.Step = &flow, &step
	}
	return doc
}

func (s *Store) GetMessages(ctx context.Context, id domain.ConversationID, limit int) ([]*domain.Turn, error) {
	q := s.messagesCol(id).OrderBy("seq", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Turn
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore GetMessages: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		t := &domain.Turn{
			ID:             domain.MessageID(snap.Ref.ID),
			ConversationID: id,
			Role:           domain.Role(doc.Role),
			Text:           doc.Text,
			CreatedAt:      doc.CreatedAt,
		}
		for _, c := range doc.ProductCards {
			t.ProductCards = append(t.ProductCards, domain.ProductReference{
				PartNumber: c.PartNumber,
				Name:       c.Name,
				Price:      c.Price,
				ImageURL:   c.ImageURL,
				BuyLink:    c.BuyLink,
			})
		}
		if doc.Flow != nil {
			st := &domain.DialogueState{Flow: domain.FlowID(*doc.Flow)}
			if doc.Step != nil {
				st.Step = domain.StepID(*doc.Step)
			}
			t.State = st
		}
		out = append(out, t)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ─────────────────────────────────────────
// TicketStore implementation
// ─────────────────────────────────────────

// CreateTicket keys the ticket document by conversation id; Create fails with
// AlreadyExists for a second ticket.
func (s *Store) CreateTicket(ctx context.Context, t *domain.HandoffTicket) (bool, error) {
	doc := ticketDoc{
		ID:          string(t.ID),
		UserMessage: t.UserMessage,
		Reason:      t.Reason,
		CreatedAt:   t.CreatedAt,
	}
	if _, err := s.ticketDoc(t.ConversationID).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, fmt.Errorf("firestore CreateTicket: %w", err)
	}
	return true, nil
}

// DeleteTicket checks the stored id inside a transaction so a newer ticket is
// never removed.
func (s *Store) DeleteTicket(ctx context.Context, conversationID domain.ConversationID, ticketID domain.TicketID) error {
	ref := s.ticketDoc(conversationID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}
		var doc ticketDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if doc.ID != string(ticketID) {
			return nil
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return fmt.Errorf("firestore DeleteTicket: %w", err)
	}
	return nil
}
