package contextbudget

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ContentKind identifies a kind of user-supplied career content.
type ContentKind string

const (
	// KindResume is extracted resume text.
	KindResume ContentKind = "resume"

	// KindLinkedIn is exported LinkedIn profile text.
	KindLinkedIn ContentKind = "linkedin"
)

// Per-kind token budgets for user-supplied content.
const (
	ResumeTokenBudget   = 1500
	LinkedInTokenBudget = 800
)

// Paragraph scoring weights for resume optimization.
const (
	recentYearSpan = 5
	yearWeightBase = 10
	keywordWeight  = 5
)

// impactKeywords are the seniority and impact signals that make a resume
// paragraph worth keeping under a tight budget.
var impactKeywords = []string{
	"manager", "director", "lead", "senior", "principal",
	"skills", "experience", "achievements", "results",
	"team", "project", "strategy", "leadership",
}

var paragraphSplitter = regexp.MustCompile(`\n\s*\n`)

// OptimizeUserContent fits user-supplied career content into its per-kind
// token budget.
//
// Content already within budget is returned unchanged. Over-budget resumes
// are reduced by paragraph scoring: paragraphs mentioning recent calendar
// years and seniority/impact keywords are kept first, ties broken by
// original order. Over-budget LinkedIn exports get plain prefix truncation.
// Unknown kinds are treated as linkedin.
func OptimizeUserContent(content string, kind ContentKind) string {
	switch kind {
	case KindResume:
		return optimizeResume(content, time.Now().Year())
	default:
		return TruncateToTokenBudget(content, LinkedInTokenBudget, false)
	}
}

// optimizeResume selects the highest-scoring paragraphs that fit the resume
// budget, reassembled in score order with ties kept in original order.
func optimizeResume(content string, currentYear int) string {
	if EstimateTokens(content) <= ResumeTokenBudget {
		return content
	}

	paragraphs := paragraphSplitter.Split(content, -1)

	type scored struct {
		index int
		text  string
		score int
	}
	ranked := make([]scored, 0, len(paragraphs))
	for i, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ranked = append(ranked, scored{index: i, text: p, score: scoreParagraph(p, currentYear)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var kept []string
	used := 0
	for _, s := range ranked {
		cost := EstimateTokens(s.text)
		if used+cost > ResumeTokenBudget {
			continue
		}
		kept = append(kept, s.text)
		used += cost
	}

	return joinParagraphs(kept)
}

// scoreParagraph weighs recency (mentions of the last five calendar years)
// and seniority/impact keywords.
func scoreParagraph(paragraph string, currentYear int) int {
	lower := strings.ToLower(paragraph)
	score := 0

	for year := currentYear - recentYearSpan + 1; year <= currentYear; year++ {
		if strings.Contains(paragraph, strconv.Itoa(year)) {
			score += (currentYear - year + 1) * yearWeightBase
		}
	}

	for _, keyword := range impactKeywords {
		score += strings.Count(lower, keyword) * keywordWeight
	}

	return score
}
