package contextbudget_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pathwise/coachmem-go/pkg/contextbudget"
	"github.com/pathwise/coachmem-go/pkg/core"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, contextbudget.EstimateTokens(""))
	assert.Equal(t, 1, contextbudget.EstimateTokens("abc"))
	assert.Equal(t, 1, contextbudget.EstimateTokens("abcd"))
	assert.Equal(t, 2, contextbudget.EstimateTokens("abcde"))
	assert.Equal(t, 25, contextbudget.EstimateTokens(strings.Repeat("x", 100)))
}

func TestEstimateTokensMonotonic(t *testing.T) {
	prev := 0
	for i := 0; i <= 200; i++ {
		est := contextbudget.EstimateTokens(strings.Repeat("a", i))
		assert.GreaterOrEqual(t, est, prev, "estimate must be monotonic in length")
		prev = est
	}
}

func TestEstimateTokensDeterministic(t *testing.T) {
	text := "I'm thinking about my career direction"
	assert.Equal(t, contextbudget.EstimateTokens(text), contextbudget.EstimateTokens(text))
}

func TestTruncateToTokenBudgetWithinBudget(t *testing.T) {
	text := "short text"
	assert.Equal(t, text, contextbudget.TruncateToTokenBudget(text, 100, false))
	assert.Equal(t, text, contextbudget.TruncateToTokenBudget(text, 100, true))
}

func TestTruncateToTokenBudgetKeepsStart(t *testing.T) {
	text := strings.Repeat("a", 100) + strings.Repeat("b", 100)
	result := contextbudget.TruncateToTokenBudget(text, 10, false)

	assert.True(t, strings.HasPrefix(result, "aaaa"))
	assert.True(t, strings.HasSuffix(result, "..."))
	assert.Len(t, result, 40)
}

func TestTruncateToTokenBudgetKeepsEnd(t *testing.T) {
	text := strings.Repeat("a", 100) + strings.Repeat("b", 100)
	result := contextbudget.TruncateToTokenBudget(text, 10, true)

	assert.True(t, strings.HasPrefix(result, "..."))
	assert.True(t, strings.HasSuffix(result, "bbbb"))
	assert.Len(t, result, 40)
}

func TestTruncateToTokenBudgetNeverOverflows(t *testing.T) {
	for _, maxTokens := range []int{10, 25, 100, 500} {
		for _, size := range []int{0, 39, 40, 41, 400, 4000} {
			text := strings.Repeat("x", size)
			for _, preserveEnd := range []bool{false, true} {
				result := contextbudget.TruncateToTokenBudget(text, maxTokens, preserveEnd)
				assert.LessOrEqual(t, contextbudget.EstimateTokens(result), maxTokens+1,
					"maxTokens=%d size=%d preserveEnd=%v", maxTokens, size, preserveEnd)
			}
		}
	}
}

func messageSeq(contents ...string) []core.ChatMessage {
	messages := make([]core.ChatMessage, len(contents))
	for i, c := range contents {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		messages[i] = core.ChatMessage{Role: role, Content: c}
	}
	return messages
}

func TestPackConversationHistoryAllFit(t *testing.T) {
	messages := messageSeq("one", "two", "three")
	packed := contextbudget.PackConversationHistory(messages, 1000)
	assert.Equal(t, messages, packed)
}

func TestPackConversationHistoryDropsOldest(t *testing.T) {
	old := strings.Repeat("o", 400)  // 100 tokens
	mid := strings.Repeat("m", 400)  // 100 tokens
	last := strings.Repeat("l", 400) // 100 tokens
	packed := contextbudget.PackConversationHistory(messageSeq(old, mid, last), 260)

	// Newest two fit whole; the oldest gets a truncated partial because
	// fewer than 3 whole messages made it in and 60 tokens remain.
	assert.Len(t, packed, 3)
	assert.True(t, strings.HasPrefix(packed[0].Content, "o"))
	assert.True(t, strings.HasSuffix(packed[0].Content, "..."))
	assert.Len(t, packed[0].Content, 240)
	assert.Equal(t, mid, packed[1].Content)
	assert.Equal(t, last, packed[2].Content)
}

func TestPackConversationHistoryPreservesOrder(t *testing.T) {
	messages := messageSeq("alpha", "beta", "gamma", "delta", "epsilon")
	packed := contextbudget.PackConversationHistory(messages, 1000)

	// The output must always be a chronologically ordered subsequence.
	j := 0
	for _, msg := range messages {
		if j < len(packed) && packed[j].Content == msg.Content {
			j++
		}
	}
	assert.Equal(t, len(packed), j)
}

func TestPackConversationHistorySkipsPartialWhenBudgetTooSmall(t *testing.T) {
	old := strings.Repeat("o", 4000) // 1000 tokens
	last := strings.Repeat("l", 40)  // 10 tokens
	// 20 tokens of budget remain after the newest message: below the 50
	// token floor for a partial inclusion.
	packed := contextbudget.PackConversationHistory(messageSeq(old, last), 30)

	assert.Len(t, packed, 1)
	assert.Equal(t, last, packed[0].Content)
}

func TestPackConversationHistoryEmpty(t *testing.T) {
	assert.Nil(t, contextbudget.PackConversationHistory(nil, 100))
	assert.Nil(t, contextbudget.PackConversationHistory(messageSeq("hello"), 0))
}

func TestComputeBudgetReport(t *testing.T) {
	profile := &core.UserProfile{Archetype: "The Builder"}
	history := messageSeq("first message", "second message")

	report := contextbudget.ComputeBudgetReport("system prompt", profile, history, "current", 0, 0)

	assert.Equal(t, contextbudget.EstimateTokens("system prompt"), report.SystemPromptTokens)
	assert.Equal(t, contextbudget.EstimateTokens("current"), report.CurrentMessageTokens)
	assert.Equal(t,
		contextbudget.EstimateTokens("first message")+contextbudget.EstimateTokens("second message"),
		report.ConversationHistoryTokens)
	assert.Greater(t, report.UserProfileTokens, 0)
	assert.Equal(t,
		report.SystemPromptTokens+report.UserProfileTokens+report.ConversationHistoryTokens+report.CurrentMessageTokens,
		report.TotalTokens)
	assert.True(t, report.WithinLimits)
}

func TestComputeBudgetReportOverLimit(t *testing.T) {
	huge := strings.Repeat("x", 600000) // 150k tokens, over a 128k window
	report := contextbudget.ComputeBudgetReport(huge, nil, nil, "hi", 0, 0)

	assert.False(t, report.WithinLimits)
	assert.Zero(t, report.UserProfileTokens)
}
