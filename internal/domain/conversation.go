package domain

// Conversation is an append-only sequence of turns identified by an opaque id.
type Conversation struct {
	ID        ConversationID
	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// Turn is one message (user or assistant) within a conversation. Immutable once stored.
type Turn struct {
	ID             MessageID
	ConversationID ConversationID
	Role           Role
	Text           string
	ProductCards   []ProductReference
	CreatedAt      Timestamp

	// State is set on assistant turns produced by a guided troubleshooting flow.
	State *DialogueState
}

// FlowID names a guided troubleshooting flow.
type FlowID string

const (
	FlowNone     FlowID = ""
	FlowDrain    FlowID = "drain"
	FlowCleaning FlowID = "cleaning"
	FlowIce      FlowID = "ice"
	FlowCooling  FlowID = "cooling"
)

// StepID names a step inside a flow.
type StepID string

// DialogueState is the position inside a guided flow, persisted on the
// assistant turn that asked the question. An empty Step means the flow
// reached a terminal answer.
type DialogueState struct {
	Flow FlowID `json:"flow"`
	Step StepID `json:"step,omitempty"`
}

// Active reports whether the state still expects an answer.
func (s *DialogueState) Active() bool {
	return s != nil && s.Flow != FlowNone && s.Step != ""
}

// Texts returns the text of every turn, oldest first.
func Texts(turns []*Turn) []string {
	out := make([]string, 0, len(turns))
	for _, t := range turns {
		out = append(out, t.Text)
	}
	return out
}

// LastAssistant returns the most recent assistant turn, or nil.
func LastAssistant(turns []*Turn) *Turn {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleAssistant {
			return turns[i]
		}
	}
	return nil
}
