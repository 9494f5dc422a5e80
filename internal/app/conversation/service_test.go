package conversation_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/PabloGalante/partsdesk/internal/adapters/catalog"
	"github.com/PabloGalante/partsdesk/internal/adapters/llm"
	"github.com/PabloGalante/partsdesk/internal/adapters/orders"
	"github.com/PabloGalante/partsdesk/internal/adapters/storage/memory"
	"github.com/PabloGalante/partsdesk/internal/app/assistant"
	"github.com/PabloGalante/partsdesk/internal/app/conversation"
	"github.com/PabloGalante/partsdesk/internal/app/handoff"
	"github.com/PabloGalante/partsdesk/internal/app/routing"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// echoRouter answers with the message and records what it saw.
type echoRouter struct {
	mu       sync.Mutex
	seen     [][]*domain.Turn
	inFlight map[domain.ConversationID]*atomic.Int32
	overlap  atomic.Bool
	delay    time.Duration
	err      error
}

func (r *echoRouter) Route(_ context.Context, id domain.ConversationID, message string, history []*domain.Turn) (*routing.Result, error) {
	r.mu.Lock()
	r.seen = append(r.seen, history)
	if r.inFlight == nil {
		r.inFlight = map[domain.ConversationID]*atomic.Int32{}
	}
	c, ok := r.inFlight[id]
	if !ok {
		c = &atomic.Int32{}
		r.inFlight[id] = c
	}
	r.mu.Unlock()

	if c.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer c.Add(-1)
	time.Sleep(r.delay)

	if r.err != nil {
		return nil, r.err
	}
	return &routing.Result{
		Text:     "echo: " + message,
		Strategy: "echo",
		State:    &domain.DialogueState{Flow: domain.FlowDrain, Step: "filter"},
		ProductCards: []domain.ProductReference{
			{PartNumber: "PS11752778", Name: "Refrigerator Door Shelf Bin"},
		},
	}, nil
}

func TestProcessMessageStoresTurnPair(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	router := &echoRouter{}
	svc := conversation.NewService(store, router, 10)

	out, err := svc.ProcessMessage(ctx, conversation.ProcessMessageInput{ConversationID: "c1", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", out.Text)
	assert.Equal(t, domain.ConversationID("c1"), out.ConversationID)
	assert.Len(t, out.ProductCards, 1)

	conv, turns, err := svc.GetTimeline(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.ConversationID("c1"), conv.ID)
	require.Len(t, turns, 2)

	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Text)
	assert.Nil(t, turns[0].State)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
	assert.Equal(t, "echo: hello", turns[1].Text)
	assert.Equal(t, &domain.DialogueState{Flow: domain.FlowDrain, Step: "filter"}, turns[1].State)
	assert.Len(t, turns[1].ProductCards, 1)
	assert.NotEqual(t, turns[0].ID, turns[1].ID)
	assert.NotEmpty(t, turns[0].ID)
}

func TestProcessMessageHistoryExcludesCurrentMessage(t *testing.T) {
	ctx := context.Background()
	router := &echoRouter{}
	svc := conversation.NewService(memory.NewConversationStore(), router, 3)

	for i := 0; i < 3; i++ {
		_, err := svc.ProcessMessage(ctx, conversation.ProcessMessageInput{ConversationID: "c1", Message: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	require.Len(t, router.seen, 3)
	assert.Empty(t, router.seen[0])
	assert.Len(t, router.seen[1], 2)
	// limited to the last three turns, oldest first
	last := router.seen[2]
	require.Len(t, last, 3)
	assert.Equal(t, []string{"echo: m0", "m1", "echo: m1"}, domain.Texts(last))
}

func TestProcessMessageValidation(t *testing.T) {
	svc := conversation.NewService(memory.NewConversationStore(), &echoRouter{}, 0)

	_, err := svc.ProcessMessage(context.Background(), conversation.ProcessMessageInput{ConversationID: "c1", Message: "  "})
	assert.ErrorIs(t, err, conversation.ErrEmptyMessage)

	_, err = svc.ProcessMessage(context.Background(), conversation.ProcessMessageInput{Message: "hi"})
	assert.ErrorIs(t, err, conversation.ErrMissingConversationID)
}

func TestRoutingFailureKeepsNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	svc := conversation.NewService(store, &echoRouter{err: errors.New("boom")}, 0)

	_, err := svc.ProcessMessage(ctx, conversation.ProcessMessageInput{ConversationID: "c1", Message: "hi"})
	require.Error(t, err)

	turns, err := store.GetMessages(ctx, "c1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

type failingAppendStore struct {
	*memory.ConversationStore
}

func (failingAppendStore) AppendMessages(context.Context, domain.ConversationID, ...*domain.Turn) error {
	return errors.New("disk full")
}

func TestStoreFailureIsReturned(t *testing.T) {
	svc := conversation.NewService(failingAppendStore{memory.NewConversationStore()}, &echoRouter{}, 0)

	_, err := svc.ProcessMessage(context.Background(), conversation.ProcessMessageInput{ConversationID: "c1", Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

// flakyAppendStore fails the first append and then behaves.
type flakyAppendStore struct {
	*memory.ConversationStore
	failed atomic.Bool
}

func (s *flakyAppendStore) AppendMessages(ctx context.Context, id domain.ConversationID, turns ...*domain.Turn) error {
	if s.failed.CompareAndSwap(false, true) {
		return errors.New("disk full")
	}
	return s.ConversationStore.AppendMessages(ctx, id, turns...)
}

func TestFailedTurnCancelsHandoffTicket(t *testing.T) {
	ctx := context.Background()
	tickets := memory.NewTicketStore()
	router := newRouter(t, tickets)
	svc := conversation.NewService(&flakyAppendStore{ConversationStore: memory.NewConversationStore()}, router, 0)

	in := conversation.ProcessMessageInput{ConversationID: "c1", Message: "I want to talk to a real person"}

	_, err := svc.ProcessMessage(ctx, in)
	require.Error(t, err)
	_, ok := tickets.Ticket("c1")
	assert.False(t, ok, "ticket of an unstored turn must be withdrawn")

	out, err := svc.ProcessMessage(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "handoff", out.Strategy)
	assert.Contains(t, out.Text, "I've created support ticket TKT-")

	ticket, ok := tickets.Ticket("c1")
	require.True(t, ok)
	assert.Contains(t, out.Text, string(ticket.ID))
}

func TestGetTimelineUnknownConversation(t *testing.T) {
	svc := conversation.NewService(memory.NewConversationStore(), &echoRouter{}, 0)

	_, _, err := svc.GetTimeline(context.Background(), "nope", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTurnsOfOneConversationAreSerialized(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	router := &echoRouter{delay: 5 * time.Millisecond}
	svc := conversation.NewService(store, router, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ProcessMessage(ctx, conversation.ProcessMessageInput{ConversationID: "shared", Message: fmt.Sprintf("m%d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, router.overlap.Load())

	turns, err := store.GetMessages(ctx, "shared", 0)
	require.NoError(t, err)
	require.Len(t, turns, 16)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, domain.RoleUser, turns[i].Role)
		assert.Equal(t, "echo: "+turns[i].Text, turns[i+1].Text)
	}
}

// blockingRouter holds conversation "slow" until release is closed.
type blockingRouter struct {
	release chan struct{}
}

func (r *blockingRouter) Route(_ context.Context, id domain.ConversationID, message string, _ []*domain.Turn) (*routing.Result, error) {
	if id == "slow" {
		<-r.release
	}
	return &routing.Result{Text: message}, nil
}

func TestOtherConversationsAreNotBlocked(t *testing.T) {
	ctx := context.Background()
	router := &blockingRouter{release: make(chan struct{})}
	svc := conversation.NewService(memory.NewConversationStore(), router, 0)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ProcessMessage(ctx, conversation.ProcessMessageInput{ConversationID: "slow", Message: "a"})
		done <- err
	}()

	out, err := svc.ProcessMessage(ctx, conversation.ProcessMessageInput{ConversationID: "fast", Message: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", out.Text)

	close(router.release)
	require.NoError(t, <-done)
}

func newRouter(t *testing.T, tickets domain.TicketStore) *routing.Router {
	t.Helper()

	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)
	static, err := catalog.NewStaticCatalog(seed)
	require.NoError(t, err)
	t.Cleanup(func() { _ = static.Close() })

	return routing.NewRouter(routing.Deps{
		Catalog: static,
		Guides:  catalog.NewGuideStore(static, seed),
		Orders:  orders.NewMockStore(),
		Handoff: handoff.NewService(tickets),
		AI:      assistant.NewResponder(llm.NewMockLLM(), static, time.Second),
	})
}

func TestGuidedFlowAcrossTurns(t *testing.T) {
	ctx := context.Background()

	svc := conversation.NewService(memory.NewConversationStore(), newRouter(t, memory.NewTicketStore()), 0)

	first, err := svc.ProcessMessage(ctx, conversation.ProcessMessageInput{ConversationID: "c1", Message: "My dishwasher won't drain"})
	require.NoError(t, err)
	assert.Equal(t, "troubleshoot", first.Strategy)
	assert.Contains(t, first.Text, "No debris visible")

	second, err := svc.ProcessMessage(ctx, conversation.ProcessMessageInput{ConversationID: "c1", Message: "no debris"})
	require.NoError(t, err)
	assert.Equal(t, "troubleshoot", second.Strategy)
	assert.True(t, strings.HasPrefix(second.Text, "Since the filter's clean, let's check the drain hose"), second.Text)

	_, turns, err := svc.GetTimeline(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, &domain.DialogueState{Flow: domain.FlowDrain, Step: "hose"}, turns[3].State)
}
