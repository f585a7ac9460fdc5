package insight_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pathwise/coachmem-go/pkg/core"
	"github.com/pathwise/coachmem-go/pkg/insight"
)

func entryWith(message, insights string) core.InteractionEntry {
	return core.InteractionEntry{
		Timestamp:   time.Now(),
		UserMessage: message,
		Insights:    insights,
	}
}

func neutralEntries(n int) []core.InteractionEntry {
	entries := make([]core.InteractionEntry, n)
	for i := range entries {
		entries[i] = entryWith("talked about the weather", insight.DefaultInsight)
	}
	return entries
}

func TestDetectPatternsEmptyHistory(t *testing.T) {
	assert.Empty(t, insight.DetectPatterns("any message", nil))
}

func TestDetectPatternsStressThreshold(t *testing.T) {
	entries := neutralEntries(8)
	entries = append(entries,
		entryWith("rough week", "experiencing stress or pressure"),
		entryWith("still rough", "experiencing stress or pressure"),
	)

	patterns := insight.DetectPatterns("how do I cope", entries)
	assert.Contains(t, patterns, insight.PatternRecurringStress)
}

func TestDetectPatternsStressBelowThreshold(t *testing.T) {
	entries := neutralEntries(9)
	entries = append(entries, entryWith("rough week", "experiencing stress or pressure"))

	patterns := insight.DetectPatterns("how do I cope", entries)
	assert.NotContains(t, patterns, insight.PatternRecurringStress)
}

func TestDetectPatternsLeadershipFromMessagesAndInsights(t *testing.T) {
	entries := neutralEntries(7)
	entries = append(entries,
		entryWith("my team is growing", insight.DefaultInsight),
		entryWith("leading the reorg", insight.DefaultInsight),
		entryWith("update", "engaging in leadership activities"),
	)

	patterns := insight.DetectPatterns("next steps", entries)
	assert.Contains(t, patterns, insight.PatternStrongLeadership)
}

func TestDetectPatternsGrowthSeeker(t *testing.T) {
	entries := neutralEntries(8)
	entries = append(entries,
		entryWith("I keep learning new tools", insight.DefaultInsight),
		entryWith("status", "focused on personal development"),
	)

	patterns := insight.DetectPatterns("what next", entries)
	assert.Contains(t, patterns, insight.PatternActiveGrowthSeeker)
}

func TestDetectPatternsOnlyConsidersRecentWindow(t *testing.T) {
	// Two stress entries pushed outside the 10-entry window by newer
	// neutral entries must not count.
	entries := []core.InteractionEntry{
		entryWith("rough week", "experiencing stress or pressure"),
		entryWith("still rough", "experiencing stress or pressure"),
	}
	entries = append(entries, neutralEntries(10)...)

	patterns := insight.DetectPatterns("checking in", entries)
	assert.NotContains(t, patterns, insight.PatternRecurringStress)
}
