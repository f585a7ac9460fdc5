// Package contextbudget provides token estimation and context-window
// budgeting for prompt assembly.
//
// All functions are pure and total over string input: they never fail and
// identical input always produces identical output, which the chat
// pipeline's tests rely on.
package contextbudget

import (
	"encoding/json"
	"strings"

	"github.com/pathwise/coachmem-go/pkg/core"
)

const (
	// charsPerToken is the characters-per-token heuristic. 4 is conservative
	// for English text; overestimating triggers truncation slightly early
	// rather than risking context overflow at the provider.
	charsPerToken = 4

	// ellipsisMarker marks truncated text. Its 3 characters are the allowed
	// overhead on a truncation budget.
	ellipsisMarker = "..."

	// minPackedMessages is how many whole history messages the packer tries
	// to include before considering a partial inclusion.
	minPackedMessages = 3

	// minPartialTokens is the minimum leftover budget worth spending on a
	// truncated partial message.
	minPartialTokens = 50
)

// EstimateTokens returns a deterministic token estimate for text.
//
// The estimate is ceil(len(text) / 4) and is monotonic in text length.
// Empty text estimates to zero.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// TruncateToTokenBudget truncates text to fit within maxTokens.
//
// Text already within budget is returned unchanged. Otherwise the result
// keeps maxTokens*4-3 characters plus an ellipsis marker: the last
// characters when preserveEnd is true (marker prefixed), the first
// characters otherwise (marker suffixed). The estimated token count of the
// result never exceeds maxTokens by more than the marker overhead.
func TruncateToTokenBudget(text string, maxTokens int, preserveEnd bool) string {
	if maxTokens <= 0 {
		return ""
	}
	if EstimateTokens(text) <= maxTokens {
		return text
	}

	maxChars := maxTokens * charsPerToken
	keep := maxChars - len(ellipsisMarker)
	if keep <= 0 {
		return ellipsisMarker
	}

	if preserveEnd {
		return ellipsisMarker + text[len(text)-keep:]
	}
	return text[:keep] + ellipsisMarker
}

// PackConversationHistory selects the suffix of messages that fits within
// maxTokens.
//
// The packer walks messages newest to oldest, greedily including whole
// messages while the cumulative estimate stays within budget. If fewer than
// three messages made it in and at least 50 tokens of budget remain, a
// prefix-truncated copy of the next older message is included before
// stopping. The result preserves the original chronological order.
func PackConversationHistory(messages []core.ChatMessage, maxTokens int) []core.ChatMessage {
	if len(messages) == 0 || maxTokens <= 0 {
		return nil
	}

	var packed []core.ChatMessage
	used := 0

	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		cost := EstimateTokens(msg.Content)

		if used+cost <= maxTokens {
			packed = append([]core.ChatMessage{msg}, packed...)
			used += cost
			continue
		}

		// The next older message overflows. Spend the leftover budget on a
		// truncated prefix of it when the packed history is still thin.
		remaining := maxTokens - used
		if len(packed) < minPackedMessages && remaining >= minPartialTokens {
			truncated := msg
			truncated.Content = TruncateToTokenBudget(msg.Content, remaining, false)
			packed = append([]core.ChatMessage{truncated}, packed...)
		}
		break
	}

	return packed
}

// ComputeBudgetReport sums the token estimates of every prompt section and
// checks the total against the model context window minus the slice
// reserved for the response.
//
// The profile is counted as its JSON serialization, matching what a
// downstream prompt or tool payload would carry. A nil profile costs zero.
func ComputeBudgetReport(systemPrompt string, profile *core.UserProfile, history []core.ChatMessage, currentMessage string, windowTokens, reservedTokens int) core.ContextBudgetReport {
	if windowTokens <= 0 {
		windowTokens = core.DefaultModelContextWindowTokens
	}
	if reservedTokens <= 0 {
		reservedTokens = core.DefaultReservedResponseTokens
	}

	report := core.ContextBudgetReport{
		SystemPromptTokens:   EstimateTokens(systemPrompt),
		CurrentMessageTokens: EstimateTokens(currentMessage),
	}

	if profile != nil {
		if data, err := json.Marshal(profile); err == nil {
			report.UserProfileTokens = EstimateTokens(string(data))
		}
	}

	for _, msg := range history {
		report.ConversationHistoryTokens += EstimateTokens(msg.Content)
	}

	report.TotalTokens = report.SystemPromptTokens +
		report.UserProfileTokens +
		report.ConversationHistoryTokens +
		report.CurrentMessageTokens
	report.WithinLimits = report.TotalTokens <= windowTokens-reservedTokens

	return report
}

// joinParagraphs reassembles selected paragraphs with blank-line separators.
func joinParagraphs(paragraphs []string) string {
	return strings.Join(paragraphs, "\n\n")
}
