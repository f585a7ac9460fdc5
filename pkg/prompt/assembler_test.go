package prompt_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pathwise/coachmem-go/pkg/core"
	"github.com/pathwise/coachmem-go/pkg/prompt"
)

func sampleProfile() *core.UserProfile {
	return &core.UserProfile{
		Archetype:           "The Strategic Builder",
		CoreDrivesAndValues: "Autonomy and craftsmanship.",
		CognitiveStyle:      "Systems thinker.",
		LeadershipStyle:     "Leads through context-setting.",
		CommunicationStyle:  "Direct and concise.",
		RiskAndAmbition:     "Calculated risk-taker.",
		GrowthAndBlindSpots: "Delegation under pressure.",
		Summary:             "A builder who scales through others.",
	}
}

func TestBuildSystemPromptInterpolatesAllFields(t *testing.T) {
	profile := sampleProfile()
	got := prompt.BuildSystemPrompt(profile, nil)

	for _, field := range []string{
		profile.Archetype,
		profile.CoreDrivesAndValues,
		profile.CognitiveStyle,
		profile.LeadershipStyle,
		profile.CommunicationStyle,
		profile.RiskAndAmbition,
		profile.GrowthAndBlindSpots,
		profile.Summary,
	} {
		assert.Contains(t, got, field)
	}

	assert.Contains(t, got, "CLIENT PROFILE")
	assert.Contains(t, got, "RECENT CONVERSATIONS")
	assert.Contains(t, got, "COACHING GUIDELINES")
}

func TestBuildSystemPromptWithoutHistory(t *testing.T) {
	got := prompt.BuildSystemPrompt(sampleProfile(), nil)
	assert.Contains(t, got, "No previous interactions recorded.")
}

func TestBuildSystemPromptNilProfile(t *testing.T) {
	got := prompt.BuildSystemPrompt(nil, nil)
	assert.Contains(t, got, "Archetype: \n")
}

func TestBuildSystemPromptRendersHistory(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	entries := []core.InteractionEntry{
		{
			Timestamp:   ts,
			UserMessage: "my team is stuck on a decision",
			Insights:    "engaging in leadership activities",
		},
	}

	got := prompt.BuildSystemPrompt(sampleProfile(), entries)
	assert.Contains(t, got, `- [2026-03-14 09:30] "my team is stuck on a decision" (insights: engaging in leadership activities)`)
	assert.NotContains(t, got, "No previous interactions recorded.")
}

func TestBuildSystemPromptClampsToLastFive(t *testing.T) {
	entries := make([]core.InteractionEntry, 8)
	for i := range entries {
		entries[i] = core.InteractionEntry{
			Timestamp:   time.Date(2026, 3, 1+i, 12, 0, 0, 0, time.UTC),
			UserMessage: fmt.Sprintf("message %d", i),
			Insights:    "general coaching conversation",
		}
	}

	got := prompt.BuildSystemPrompt(sampleProfile(), entries)

	for i := 0; i < 3; i++ {
		assert.NotContains(t, got, fmt.Sprintf("message %d", i))
	}
	for i := 3; i < 8; i++ {
		assert.Contains(t, got, fmt.Sprintf("message %d", i))
	}
}

func TestBuildSystemPromptTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("x", 150)
	entries := []core.InteractionEntry{
		{Timestamp: time.Now(), UserMessage: long, Insights: "general coaching conversation"},
	}

	got := prompt.BuildSystemPrompt(sampleProfile(), entries)
	assert.Contains(t, got, strings.Repeat("x", 100))
	assert.NotContains(t, got, strings.Repeat("x", 101))
}
