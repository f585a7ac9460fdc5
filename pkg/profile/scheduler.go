// Package profile provides the confidence-gated, incrementally triggered
// user profile update scheduler.
//
// The scheduler is deliberately split in two phases: RecordMeaningfulChat
// only signals that an update is due, and UpdateProfile performs the
// commit. This lets the orchestrator skip the expensive rewrite under load
// or failure without losing the accumulated counters.
package profile

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pathwise/coachmem-go/pkg/core"
	"github.com/pathwise/coachmem-go/pkg/memory"
)

// Meaningfulness gates for a chat turn.
const (
	// minUserMessageLen is the minimum user message length worth tracking.
	minUserMessageLen = 50

	// minAIResponseLen is the minimum assistant response length worth tracking.
	minAIResponseLen = 100

	// insightPreviewLen is how much of the user message a pending insight keeps.
	insightPreviewLen = 100

	// minCategoryInsights is how many same-category insights it takes to
	// touch a profile field.
	minCategoryInsights = 2
)

// meaningfulTopics are the career-coaching signals that qualify a
// sufficiently long exchange as meaningful.
var meaningfulTopics = []string{
	"team", "leadership", "challenge", "decision", "feedback", "conflict",
	"goal", "career", "manager", "colleague", "stress", "growth", "meeting",
	"presentation", "project", "strategy", "performance",
}

// categoryRule derives a pending insight from message content. Confidence
// is fixed per category.
type categoryRule struct {
	category   core.InsightCategory
	pattern    *regexp.Regexp
	confidence float64
}

var categoryRules = []categoryRule{
	{core.CategoryLeadership, regexp.MustCompile(`(?i)leading|managing|team|decision`), 0.80},
	{core.CategoryCommunication, regexp.MustCompile(`(?i)meeting|presentation|conversation|communicate`), 0.75},
	{core.CategoryGrowth, regexp.MustCompile(`(?i)learning|feedback|improve|develop|grow`), 0.80},
	{core.CategoryBehavior, regexp.MustCompile(`(?i)stressed|frustrated|excited|confident|worried`), 0.70},
	{core.CategoryValues, regexp.MustCompile(`(?i)important|value|principle|believe|ethics`), 0.85},
}

// Fixed clauses appended to profile fields when a category accumulates
// enough qualifying insights. Augmentation is append-only: existing field
// text is never deleted or rewritten.
const (
	leadershipClause    = " Recent coaching conversations show active engagement with team leadership and decision-making."
	communicationClause = " Recent sessions reflect a deliberate focus on meetings, presentations, and workplace communication."
	growthClause        = " Recent reflections show sustained investment in feedback and skill development."
)

// Scheduler tracks meaningful-interaction counters per user and performs
// conservative field-level profile merges when an update is due.
type Scheduler struct {
	// store is the persistence surface for trackers and profiles.
	store memory.Store

	// mem records committed updates into the user's memory history.
	mem *memory.ConversationMemory

	// chatThreshold is the meaningful-chat count that triggers an update.
	chatThreshold int

	// updateInterval is the elapsed-time trigger.
	updateInterval time.Duration

	// minConfidence is the gate pending insights must clear to be merged.
	minConfidence float64

	// logger receives best-effort failure reports.
	logger *slog.Logger
}

// NewScheduler creates a profile update scheduler.
//
// Parameters:
//   - store: Persistence surface (required)
//   - mem: Conversation memory for recording committed updates (required)
//   - cfg: Chat configuration supplying thresholds (zero values use defaults)
//   - logger: Logger for failure reports (nil uses slog.Default)
func NewScheduler(store memory.Store, mem *memory.ConversationMemory, cfg core.ChatConfig, logger *slog.Logger) *Scheduler {
	cfg.Normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:          store,
		mem:            mem,
		chatThreshold:  cfg.MeaningfulChatThreshold,
		updateInterval: time.Duration(cfg.ProfileUpdateDays) * 24 * time.Hour,
		minConfidence:  cfg.MinInsightConfidence,
		logger:         logger,
	}
}

// RecordMeaningfulChat classifies a chat turn and updates the user's
// tracker when the turn is meaningful.
//
// A turn is meaningful when the user message is at least 50 characters, the
// assistant response at least 100, and the message touches at least one
// coaching topic. Meaningful turns increment the counter and may append
// categorized pending insights with a truncated message preview.
//
// The returned boolean signals that a profile update is due: the counter
// reached the threshold or the elapsed-time trigger fired. It is a signal
// only; nothing is committed until UpdateProfile.
func (s *Scheduler) RecordMeaningfulChat(ctx context.Context, userID, userMessage, aiResponse string) (bool, error) {
	tracker, err := s.loadTracker(ctx, userID)
	if err != nil {
		return false, err
	}

	if isMeaningful(userMessage, aiResponse) {
		tracker.MeaningfulChats++
		now := time.Now()
		preview := userMessage
		if len(preview) > insightPreviewLen {
			preview = preview[:insightPreviewLen]
		}
		for _, rule := range categoryRules {
			if rule.pattern.MatchString(userMessage) {
				tracker.PendingInsights = append(tracker.PendingInsights, core.PendingInsight{
					Timestamp:  now,
					Content:    preview,
					Category:   rule.category,
					Confidence: rule.confidence,
				})
			}
		}

		if err := s.store.SaveTracker(ctx, tracker); err != nil {
			return false, core.NewCoachError("RecordMeaningfulChat", err)
		}
	}

	return s.shouldTrigger(tracker), nil
}

// UpdateProfile commits pending insights into the stored profile.
//
// Returns (nil, nil) in two expected, non-error cases: no stored profile
// exists yet, or no pending insight clears the confidence gate. In both
// cases nothing is mutated.
//
// On success the tracker counters are reset and the update is recorded in
// the user's memory history. If persisting the profile fails, the tracker
// is deliberately left untouched so the accumulated insights retry on the
// next trigger.
func (s *Scheduler) UpdateProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	current, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, core.NewCoachError("UpdateProfile", err)
	}
	if current == nil {
		// Cannot update what doesn't exist; the tracker keeps accumulating.
		return nil, nil
	}

	tracker, err := s.loadTracker(ctx, userID)
	if err != nil {
		return nil, err
	}

	qualified := make([]core.PendingInsight, 0, len(tracker.PendingInsights))
	for _, ins := range tracker.PendingInsights {
		if ins.Confidence >= s.minConfidence {
			qualified = append(qualified, ins)
		}
	}
	if len(qualified) == 0 {
		return nil, nil
	}

	counts := make(map[core.InsightCategory]int)
	for _, ins := range qualified {
		counts[ins.Category]++
	}

	var updatedFields []string
	if counts[core.CategoryLeadership] >= minCategoryInsights {
		current.LeadershipStyle += leadershipClause
		updatedFields = append(updatedFields, "leadership_style")
	}
	if counts[core.CategoryCommunication] >= minCategoryInsights {
		current.CommunicationStyle += communicationClause
		updatedFields = append(updatedFields, "communication_style")
	}
	if counts[core.CategoryGrowth] >= minCategoryInsights {
		current.GrowthAndBlindSpots += growthClause
		updatedFields = append(updatedFields, "growth_and_blind_spots")
	}

	now := time.Now()
	current.LastUpdated = now
	current.UpdateCount++
	nextDue := now.Add(s.updateInterval)
	current.NextUpdateDue = &nextDue

	if err := s.store.SaveProfile(ctx, userID, current); err != nil {
		// Tracker is NOT reset: the insights retry on the next trigger.
		return nil, core.NewCoachError("UpdateProfile", err)
	}

	if err := s.mem.RecordProfileUpdate(ctx, userID, core.ProfileUpdateEntry{
		Timestamp:     now,
		UpdatedFields: updatedFields,
		InsightCount:  len(qualified),
	}); err != nil {
		s.logger.Warn("failed to record profile update in memory history",
			"user_id", userID, "error", err)
	}

	tracker.MeaningfulChats = 0
	tracker.LastProfileUpdate = now
	tracker.UpdateTriggerCount++
	tracker.PendingInsights = []core.PendingInsight{}
	if err := s.store.SaveTracker(ctx, tracker); err != nil {
		// The profile is committed; a stale tracker only risks one early
		// re-trigger.
		s.logger.Warn("failed to reset profile update tracker",
			"user_id", userID, "error", err)
	}

	return current, nil
}

// loadTracker loads the tracker for a user, lazily initializing one on
// first use.
func (s *Scheduler) loadTracker(ctx context.Context, userID string) (*core.ProfileUpdateTracker, error) {
	tracker, err := s.store.GetTracker(ctx, userID)
	if err != nil {
		return nil, core.NewCoachError("loadTracker", err)
	}
	if tracker == nil {
		tracker = &core.ProfileUpdateTracker{
			UserID:            userID,
			LastProfileUpdate: time.Now(),
			PendingInsights:   []core.PendingInsight{},
		}
	}
	return tracker, nil
}

// shouldTrigger reports whether a profile update is due for the tracker.
func (s *Scheduler) shouldTrigger(tracker *core.ProfileUpdateTracker) bool {
	if tracker.MeaningfulChats >= s.chatThreshold {
		return true
	}
	return time.Since(tracker.LastProfileUpdate) >= s.updateInterval
}

// isMeaningful classifies a chat turn.
func isMeaningful(userMessage, aiResponse string) bool {
	if len(userMessage) < minUserMessageLen || len(aiResponse) < minAIResponseLen {
		return false
	}
	lower := strings.ToLower(userMessage)
	for _, topic := range meaningfulTopics {
		if strings.Contains(lower, topic) {
			return true
		}
	}
	return false
}
