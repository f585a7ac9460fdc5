// Package insight derives categorized insight tags and recurring behavioral
// patterns from chat messages.
//
// Extraction is intentionally lexical: pure, deterministic keyword matching,
// not a model call. The chat pipeline's tests depend on that determinism.
package insight

import "strings"

// extractionRule maps trigger keywords to an insight tag.
type extractionRule struct {
	keywords []string
	tag      string
}

// extractionRules are evaluated in order; every matching rule contributes
// its tag, so the output tag order is stable.
var extractionRules = []extractionRule{
	{
		keywords: []string{"stressed", "overwhelmed", "frustrated", "anxious"},
		tag:      "experiencing stress or pressure",
	},
	{
		keywords: []string{"excited", "motivated", "confident", "proud"},
		tag:      "showing positive emotional state",
	},
	{
		keywords: []string{"team", "leading", "managing", "decision"},
		tag:      "engaging in leadership activities",
	},
	{
		keywords: []string{"conflict", "disagreement", "difficult conversation"},
		tag:      "dealing with interpersonal challenges",
	},
	{
		keywords: []string{"learning", "growth", "feedback", "improve"},
		tag:      "focused on personal development",
	},
}

// DefaultInsight is returned when no extraction rule matches.
const DefaultInsight = "general coaching conversation"

// Extract derives comma-joined insight tags from a single user message.
//
// Matching is case-insensitive substring containment. Tags appear in rule
// order; a message matching nothing yields DefaultInsight.
func Extract(message string) string {
	lower := strings.ToLower(message)

	var tags []string
	for _, rule := range extractionRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				tags = append(tags, rule.tag)
				break
			}
		}
	}

	if len(tags) == 0 {
		return DefaultInsight
	}
	return strings.Join(tags, ", ")
}
