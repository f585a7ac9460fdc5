package insight

import (
	"regexp"
	"strings"

	"github.com/pathwise/coachmem-go/pkg/core"
)

// Pattern tags emitted by DetectPatterns.
const (
	PatternRecurringStress    = "recurring_stress_pattern"
	PatternStrongLeadership   = "strong_leadership_focus"
	PatternActiveGrowthSeeker = "active_growth_seeker"
)

// Detection thresholds. These are product behavior: changing them changes
// when the coach starts calling out a pattern.
const (
	recentWindowSize           = 10
	stressPatternThreshold     = 2
	leadershipPatternThreshold = 3
	growthPatternThreshold     = 2
)

var (
	leadershipMessageRe = regexp.MustCompile(`(?i)team|leading|managing`)
	growthMessageRe     = regexp.MustCompile(`(?i)learning|growth|improve`)
)

// DetectPatterns scans the most recent prior interactions for recurring
// behavioral patterns.
//
// Only the last 10 prior entries are considered. With no prior interactions
// the result is empty. Tags are returned in a fixed order: stress,
// leadership, growth.
func DetectPatterns(message string, priorInteractions []core.InteractionEntry) []string {
	if len(priorInteractions) == 0 {
		return nil
	}

	recent := priorInteractions
	if len(recent) > recentWindowSize {
		recent = recent[len(recent)-recentWindowSize:]
	}

	stressCount := 0
	leadershipCount := 0
	growthCount := 0

	for _, entry := range recent {
		insights := strings.ToLower(entry.Insights)
		if strings.Contains(insights, "stress") || strings.Contains(insights, "pressure") {
			stressCount++
		}
		if strings.Contains(insights, "leadership") || leadershipMessageRe.MatchString(entry.UserMessage) {
			leadershipCount++
		}
		if strings.Contains(insights, "development") || growthMessageRe.MatchString(entry.UserMessage) {
			growthCount++
		}
	}

	var patterns []string
	if stressCount >= stressPatternThreshold {
		patterns = append(patterns, PatternRecurringStress)
	}
	if leadershipCount >= leadershipPatternThreshold {
		patterns = append(patterns, PatternStrongLeadership)
	}
	if growthCount >= growthPatternThreshold {
		patterns = append(patterns, PatternActiveGrowthSeeker)
	}

	return patterns
}
