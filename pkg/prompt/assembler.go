// Package prompt assembles the coaching system prompt from the persona
// template, the user's profile, and their recent memory.
package prompt

import (
	"fmt"
	"strings"

	"github.com/pathwise/coachmem-go/pkg/core"
)

const (
	// historyDepth is how many recent memory entries the prompt renders.
	historyDepth = 5

	// messagePreviewLen is how much of a remembered message is rendered.
	messagePreviewLen = 100

	// noHistoryPlaceholder is rendered when the user has no prior interactions.
	noHistoryPlaceholder = "No previous interactions recorded."
)

// personaTemplate is the fixed coaching persona. The interpolation slots
// are, in order: archetype, core drives and values, cognitive style,
// leadership style, communication style, risk and ambition, growth and
// blind spots, summary, and the rendered recent-interaction block.
const personaTemplate = `You are an experienced executive career coach. You work with one client whose psychographic profile you know deeply, and you coach with warmth, directness, and specificity. Ground every answer in the client's profile and recent conversations; never give generic advice a profile-blind coach could give.

CLIENT PROFILE
Archetype: %s
Core drives and values: %s
Cognitive style: %s
Leadership style: %s
Communication style: %s
Risk and ambition: %s
Growth areas and blind spots: %s
Summary: %s

RECENT CONVERSATIONS
%s

COACHING GUIDELINES
- Reference the client's archetype and patterns when they are relevant, not mechanically.
- Ask one sharp follow-up question when the situation is underspecified.
- Keep responses focused and actionable; prefer concrete next steps over frameworks.
- When the recent conversations show a recurring theme, name it.`

// BuildSystemPrompt renders the coaching persona interpolated with every
// profile field and a human-readable view of the last five memory entries.
//
// With no prior interactions the history block is a literal placeholder
// line. Remembered messages are truncated to 100 characters.
func BuildSystemPrompt(profile *core.UserProfile, recentEntries []core.InteractionEntry) string {
	if profile == nil {
		profile = &core.UserProfile{}
	}

	return fmt.Sprintf(personaTemplate,
		profile.Archetype,
		profile.CoreDrivesAndValues,
		profile.CognitiveStyle,
		profile.LeadershipStyle,
		profile.CommunicationStyle,
		profile.RiskAndAmbition,
		profile.GrowthAndBlindSpots,
		profile.Summary,
		renderHistory(recentEntries),
	)
}

// renderHistory renders the last five interaction entries, oldest first.
func renderHistory(entries []core.InteractionEntry) string {
	if len(entries) == 0 {
		return noHistoryPlaceholder
	}
	if len(entries) > historyDepth {
		entries = entries[len(entries)-historyDepth:]
	}

	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		preview := entry.UserMessage
		if len(preview) > messagePreviewLen {
			preview = preview[:messagePreviewLen]
		}
		b.WriteString(fmt.Sprintf("- [%s] %q (insights: %s)",
			entry.Timestamp.Format("2006-01-02 15:04"), preview, entry.Insights))
	}
	return b.String()
}
