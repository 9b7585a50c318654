package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logimind/advisor/internal/assessment"
	"github.com/logimind/advisor/internal/llm"
	"github.com/logimind/advisor/internal/tools"
)

func testBuilder() *Builder {
	return NewBuilder(tools.DefaultRegistry(), 0)
}

func testContext() assessment.SystemContext {
	return assessment.SystemContext{
		SessionID: "s1",
		Assessment: map[string]any{
			"risk_score": 72.46,
			"risk_level": "high",
		},
	}
}

// --- system prompt tests ---

func TestSystemSections(t *testing.T) {
	out := testBuilder().System(testContext(), "en", nil)

	assert.Contains(t, out, "logistics risk advisor")
	assert.Contains(t, out, "Guidelines:")
	assert.Contains(t, out, "Current context:")
	assert.Contains(t, out, "Risk score: 72.5")
	assert.Contains(t, out, "Available tools:")
	for _, d := range tools.DefaultRegistry().List() {
		assert.Contains(t, out, fmt.Sprintf("- %s: %s", d.Name, d.Description))
	}
	assert.NotContains(t, out, "Recent conversation:")
}

func TestSystemWithoutAssessment(t *testing.T) {
	out := testBuilder().System(assessment.SystemContext{SessionID: "s1"}, "en", nil)

	assert.Contains(t, out, "No risk assessment is currently available")
}

func TestVietnameseDirective(t *testing.T) {
	vi := testBuilder().System(testContext(), "vi", nil)
	en := testBuilder().System(testContext(), "en", nil)

	assert.Contains(t, vi, "MUST answer in Vietnamese")
	assert.NotContains(t, en, "MUST answer in Vietnamese")
}

// --- recent conversation tests ---

func history(n int) []llm.Message {
	msgs := make([]llm.Message, 0, n)
	for i := 1; i <= n; i++ {
		role := llm.RoleUser
		if i%2 == 0 {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: fmt.Sprintf("message %d", i)})
	}
	return msgs
}

func TestRecentTurnsAllFive(t *testing.T) {
	out := testBuilder().System(testContext(), "en", history(5))

	require.Contains(t, out, "Recent conversation:")
	for i := 1; i <= 5; i++ {
		assert.Contains(t, out, fmt.Sprintf("message %d", i))
	}
	assert.Contains(t, out, "User: message 1")
	assert.Contains(t, out, "Assistant: message 2")
}

func TestRecentTurnsTailOnly(t *testing.T) {
	out := testBuilder().System(testContext(), "en", history(6))

	assert.NotContains(t, out, "message 1\n")
	for i := 2; i <= 6; i++ {
		assert.Contains(t, out, fmt.Sprintf("message %d", i))
	}
}

func TestRecentTurnsTruncation(t *testing.T) {
	long := strings.Repeat("ă", 250)
	out := testBuilder().System(testContext(), "en", []llm.Message{
		{Role: llm.RoleUser, Content: long},
	})

	assert.Contains(t, out, strings.Repeat("ă", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("ă", 201))
}

func TestCustomTailLimit(t *testing.T) {
	b := NewBuilder(tools.DefaultRegistry(), 2)
	out := b.System(testContext(), "en", history(5))

	assert.NotContains(t, out, "message 3\n")
	assert.Contains(t, out, "message 4")
	assert.Contains(t, out, "message 5")
}
