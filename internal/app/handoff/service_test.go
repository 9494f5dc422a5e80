package handoff_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/PabloGalante/partsdesk/internal/adapters/storage/memory"
	"github.com/PabloGalante/partsdesk/internal/app/handoff"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var ticketPattern = regexp.MustCompile(`^TKT-[0-9A-F]{8}$`)

func TestNewTicketID(t *testing.T) {
	id := handoff.NewTicketID()
	assert.Regexp(t, ticketPattern, string(id))
	assert.NotEqual(t, id, handoff.NewTicketID())
}

func TestRequestHumanSupportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTicketStore()
	svc := handoff.NewService(store)
	req := domain.HandoffRequest{ConversationID: "c1", UserMessage: "let me talk to a human", Reason: "user_request"}

	first := svc.RequestHumanSupport(ctx, req)
	require.True(t, first.Success)
	assert.Regexp(t, ticketPattern, string(first.TicketID))
	assert.Contains(t, first.Message, string(first.TicketID))

	second := svc.RequestHumanSupport(ctx, req)
	assert.False(t, second.Success)
	assert.Empty(t, second.TicketID)
	assert.Equal(t, handoff.AlreadyCreatedMessage, second.Message)

	stored, ok := store.Ticket("c1")
	require.True(t, ok)
	assert.Equal(t, first.TicketID, stored.ID)

	other := svc.RequestHumanSupport(ctx, domain.HandoffRequest{ConversationID: "c2", UserMessage: "agent please"})
	assert.True(t, other.Success)
	assert.NotEqual(t, first.TicketID, other.TicketID)
}

func TestRequestHumanSupportConcurrent(t *testing.T) {
	ctx := context.Background()
	svc := handoff.NewService(memory.NewTicketStore())

	const conversations, attempts = 5, 10
	results := make([][]domain.HandoffResult, conversations)
	var wg sync.WaitGroup
	for c := 0; c < conversations; c++ {
		results[c] = make([]domain.HandoffResult, attempts)
		for a := 0; a < attempts; a++ {
			wg.Add(1)
			go func(c, a int) {
				defer wg.Done()
				results[c][a] = svc.RequestHumanSupport(ctx, domain.HandoffRequest{
					ConversationID: domain.ConversationID(fmt.Sprintf("c%d", c)),
					UserMessage:    "human please",
				})
			}(c, a)
		}
	}
	wg.Wait()

	for c := range results {
		successes := 0
		for _, r := range results[c] {
			if r.Success {
				successes++
			}
		}
		assert.Equal(t, 1, successes, "conversation c%d", c)
	}
}

type failingStore struct{}

func (failingStore) CreateTicket(context.Context, *domain.HandoffTicket) (bool, error) {
	return false, errors.New("disk full")
}

func (failingStore) DeleteTicket(context.Context, domain.ConversationID, domain.TicketID) error {
	return errors.New("disk full")
}

func TestRequestHumanSupportDegradesOnStoreFailure(t *testing.T) {
	res := handoff.NewService(failingStore{}).RequestHumanSupport(context.Background(), domain.HandoffRequest{ConversationID: "c1"})
	assert.False(t, res.Success)
	assert.Empty(t, res.TicketID)
	assert.Equal(t, handoff.UnavailableMessage, res.Message)
}

func TestCancelTicketAllowsANewOne(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTicketStore()
	svc := handoff.NewService(store)
	req := domain.HandoffRequest{ConversationID: "c1", UserMessage: "talk to a human"}

	first := svc.RequestHumanSupport(ctx, req)
	require.True(t, first.Success)

	require.NoError(t, svc.CancelTicket(ctx, "c1", first.TicketID))
	_, ok := store.Ticket("c1")
	assert.False(t, ok)

	again := svc.RequestHumanSupport(ctx, req)
	require.True(t, again.Success)
	assert.NotEqual(t, first.TicketID, again.TicketID)
}

func TestCancelTicketReportsStoreFailure(t *testing.T) {
	err := handoff.NewService(failingStore{}).CancelTicket(context.Background(), "c1", "TKT-00000001")
	assert.ErrorContains(t, err, "disk full")
}
