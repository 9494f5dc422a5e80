package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	role            TEXT NOT NULL,
	text            TEXT NOT NULL,
	product_cards   TEXT,
	flow            TEXT,
	step            TEXT,
	created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);

CREATE TABLE IF NOT EXISTS handoff_tickets (
	conversation_id TEXT PRIMARY KEY,
	id              TEXT NOT NULL UNIQUE,
	user_message    TEXT NOT NULL,
	reason          TEXT NOT NULL,
	created_at      INTEGER NOT NULL
);
`

// Store is a durable ConversationStore and TicketStore backed by a single
// SQLite file.
type Store struct {
	db *sql.DB
}

var (
	_ domain.ConversationStore = (*Store)(nil)
	_ domain.TicketStore       = (*Store)(nil)
)

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// one writer at a time avoids SQLITE_BUSY between our own connections
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialising sqlite: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		string(conv.ID), conv.CreatedAt.UnixNano(), conv.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite CreateConversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", conv.ID, domain.ErrAlreadyExists)
	}
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM conversations WHERE id = ?`, string(id),
	).Scan(&created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite GetConversation: %w", err)
	}
	return &domain.Conversation{
		ID:        id,
		CreatedAt: time.Unix(0, created),
		UpdatedAt: time.Unix(0, updated),
	}, nil
}

// AppendMessages writes every turn in one transaction.
func (s *Store) AppendMessages(ctx context.Context, id domain.ConversationID, turns ...*domain.Turn) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite AppendMessages: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE id = ?`, string(id)).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("sqlite AppendMessages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, text, product_cards, flow, step, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite AppendMessages: %w", err)
	}
	defer stmt.Close()

	var latest int64
	for _, t := range turns {
		var cards sql.NullString
		if len(t.ProductCards) > 0 {
			raw, mErr := json.Marshal(t.ProductCards)
			if mErr != nil {
				return fmt.Errorf("encoding product cards: %w", mErr)
			}
			cards = sql.NullString{String: string(raw), Valid: true}
		}
		var flow, step sql.NullString
		if t.State != nil {
			flow = sql.NullString{String: string(t.State.Flow), Valid: true}
			step = sql.NullString{String: string(t.State.Step), Valid: true}
		}
		at := t.CreatedAt.UnixNano()
		if at > latest {
			latest = at
		}
		if _, err = stmt.ExecContext(ctx, string(t.ID), string(id), string(t.Role), t.Text, cards, flow, step, at); err != nil {
			return fmt.Errorf("sqlite AppendMessages: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = MAX(updated_at, ?) WHERE id = ?`, latest, string(id),
	); err != nil {
		return fmt.Errorf("sqlite AppendMessages: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite AppendMessages commit: %w", err)
	}
	return nil
}

func (s *Store) GetMessages(ctx context.Context, id domain.ConversationID, limit int) ([]*domain.Turn, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, text, product_cards, flow, step, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY seq DESC LIMIT ?`, string(id), limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite GetMessages: %w", err)
	}
	defer rows.Close()

	var out []*domain.Turn
	for rows.Next() {
		var (
			msgID, role, text string
			cards, flow, step sql.NullString
			created           int64
		)
		if err := rows.Scan(&msgID, &role, &text, &cards, &flow, &step, &created); err != nil {
			return nil, fmt.Errorf("sqlite GetMessages scan: %w", err)
		}
		t := &domain.Turn{
			ID:             domain.MessageID(msgID),
			ConversationID: id,
			Role:           domain.Role(role),
			Text:           text,
			CreatedAt:      time.Unix(0, created),
		}
		if cards.Valid && cards.String != "" {
			if err := json.Unmarshal([]byte(cards.String), &t.ProductCards); err != nil {
				return nil, fmt.Errorf("decoding product cards of %s: %w", msgID, err)
			}
		}
		if flow.Valid {
			t.State = &domain.DialogueState{Flow: domain.FlowID(flow.String), Step: domain.StepID(step.String)}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite GetMessages: %w", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ─────────────────────────────────────────
// TicketStore implementation
// ─────────────────────────────────────────

// CreateTicket relies on the conversation_id primary key, so the one ticket
// per conversation rule survives restarts.
func (s *Store) CreateTicket(ctx context.Context, t *domain.HandoffTicket) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO handoff_tickets (conversation_id, id, user_message, reason, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id) DO NOTHING`,
		string(t.ConversationID), string(t.ID), t.UserMessage, t.Reason, t.CreatedAt.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite CreateTicket: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite CreateTicket: %w", err)
	}
	return n == 1, nil
}

func (s *Store) DeleteTicket(ctx context.Context, conversationID domain.ConversationID, ticketID domain.TicketID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM handoff_tickets WHERE conversation_id = ? AND id = ?`,
		string(conversationID), string(ticketID),
	)
	if err != nil {
		return fmt.Errorf("sqlite DeleteTicket: %w", err)
	}
	return nil
}
