package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/partsdesk/internal/app/intent"
)

func TestWordsRespectBoundaries(t *testing.T) {
	w := intent.Words{"no"}
	assert.True(t, w.Match("no, one is off"))
	assert.True(t, w.Match("honestly no"))
	assert.False(t, w.Match("not really"))
	assert.False(t, w.Match("i don't know"))
	assert.False(t, w.Match("now it works"))
}

func TestRuleSetOrder(t *testing.T) {
	rs := intent.RuleSet{
		{Tag: "first", When: intent.Phrases{"order"}},
		{Tag: "second", When: intent.Phrases{"order status"}},
	}

	tag, ok := rs.First("what is my order status")
	assert.True(t, ok)
	assert.Equal(t, intent.Tag("first"), tag)
	assert.Equal(t, []intent.Tag{"first", "second"}, rs.All("what is my order status"))

	_, ok = rs.First("hello")
	assert.False(t, ok)
}

func TestCombinators(t *testing.T) {
	m := intent.AllOf{intent.Phrases{"drain"}, intent.Not{M: intent.Phrases{"buy"}}}
	assert.True(t, m.Match("won't drain"))
	assert.False(t, m.Match("buy a drain pump"))
	assert.False(t, intent.AllOf{}.Match("anything"))
}
