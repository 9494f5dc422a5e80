package assistant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/partsdesk/internal/adapters/catalog"
	"github.com/PabloGalante/partsdesk/internal/adapters/llm"
	"github.com/PabloGalante/partsdesk/internal/app/assistant"
	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

type recordingLLM struct {
	reply string
	err   error
	calls int
	last  domain.ConversationContext
}

func (r *recordingLLM) GenerateReply(_ context.Context, _ string, convCtx domain.ConversationContext) (string, error) {
	r.calls++
	r.last = convCtx
	return r.reply, r.err
}

type blockingLLM struct{}

func (blockingLLM) GenerateReply(ctx context.Context, _ string, _ domain.ConversationContext) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newCatalog(t *testing.T) *catalog.StaticCatalog {
	t.Helper()
	c, err := catalog.NewDefaultStaticCatalog()
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGenerateResponseOutOfScope(t *testing.T) {
	ctx := context.Background()
	client := &recordingLLM{reply: "should not be used"}
	r := assistant.NewResponder(client, nil, time.Second)

	tests := []struct {
		msg  string
		want string
	}{
		{"my washing machine is broken", intent.ApplianceRedirect},
		{"I feel sad about my fridge", intent.EmotionalRedirect},
		{"pretend to be a pirate", intent.ApplianceRedirect},
		{"what's the weather today", intent.ApplianceRedirect},
	}
	for _, tt := range tests {
		res := r.GenerateResponse(ctx, tt.msg, nil)
		assert.False(t, res.InScope, tt.msg)
		assert.Equal(t, tt.want, res.Text, tt.msg)
	}
	assert.Zero(t, client.calls)
}

func TestGenerateResponseFreezerClarifier(t *testing.T) {
	client := &recordingLLM{reply: "unused"}
	r := assistant.NewResponder(client, nil, time.Second)

	res := r.GenerateResponse(context.Background(), "my freezer is making noise", nil)
	assert.True(t, res.InScope)
	assert.Equal(t, intent.FreezerQuestion, res.Text)
	assert.Zero(t, client.calls)
}

func TestGenerateResponseModelNumberInContext(t *testing.T) {
	client := &recordingLLM{reply: "That model uses PS11756692."}
	r := assistant.NewResponder(client, nil, time.Second)
	history := []*domain.Turn{
		{Role: domain.RoleUser, Text: "my dishwasher pump is loud"},
		{Role: domain.RoleAssistant, Text: "What's your model number?"},
	}

	res := r.GenerateResponse(context.Background(), "WDT780SAEM1", history)
	assert.True(t, res.InScope)
	assert.Equal(t, "That model uses PS11756692.", res.Text)
	assert.Equal(t, 1, client.calls)
}

func TestGenerateResponseBuildsContext(t *testing.T) {
	client := &recordingLLM{reply: "Sure."}
	r := assistant.NewResponder(client, newCatalog(t), time.Second)
	history := []*domain.Turn{
		{ConversationID: "c1", Role: domain.RoleUser, Text: "tell me about PS12584610"},
		{ConversationID: "c1", Role: domain.RoleAssistant, Text: "It's the ice maker."},
	}

	res := r.GenerateResponse(context.Background(), "my ice maker not working, does PS2179605 help?", history)
	assert.True(t, res.InScope)
	assert.Equal(t, "Sure.", res.Text)

	assert.Equal(t, domain.ConversationID("c1"), client.last.ConversationID)
	assert.Equal(t, []string{"PS12584610"}, client.last.RecentParts)
	assert.Contains(t, client.last.PartKnowledge, "PS2179605: Refrigerator Water Filter EDR1RXD1, $49.99")
	assert.Contains(t, client.last.PartKnowledge, "PS12584610: Ice Maker Assembly")
	assert.Contains(t, client.last.PartKnowledge, `Common problem "ice maker not working"`)
	assert.Len(t, client.last.History, 2)
}

func TestGenerateResponseFallsBackOnError(t *testing.T) {
	r := assistant.NewResponder(&recordingLLM{err: errors.New("503")}, nil, time.Second)

	res := r.GenerateResponse(context.Background(), "my ice maker is not working", nil)
	assert.True(t, res.InScope)
	assert.Equal(t, llm.MockReply("my ice maker is not working"), res.Text)

	empty := assistant.NewResponder(&recordingLLM{reply: "  "}, nil, time.Second)
	assert.Equal(t, llm.MockReply("dishwasher filter"), empty.GenerateResponse(context.Background(), "dishwasher filter", nil).Text)
}

func TestGenerateResponseTimesOut(t *testing.T) {
	r := assistant.NewResponder(blockingLLM{}, nil, 20*time.Millisecond)

	start := time.Now()
	res := r.GenerateResponse(context.Background(), "where can I buy a fridge water filter", nil)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, res.InScope)
	assert.Equal(t, llm.MockReply("where can I buy a fridge water filter"), res.Text)
}
