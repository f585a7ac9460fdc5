// Package core provides the shared domain types, configuration, and error
// taxonomy for the coachmem conversational memory engine.
package core

import "time"

// UserProfile is the durable psychographic summary of a user.
//
// The profile is created once by the profile-generation flow and afterwards
// mutated only through the profile update scheduler, which applies
// conservative, append-only augmentation to individual fields. The chat
// system reads the profile but does not own it: onboarding flows write it
// concurrently, so updates must always be field-scoped read-merge-write,
// never full-object replacement from a stale read.
type UserProfile struct {
	// Archetype is the short psychographic archetype label.
	Archetype string `json:"archetype"`

	// CoreDrivesAndValues describes what motivates the user.
	CoreDrivesAndValues string `json:"core_drives_and_values"`

	// CognitiveStyle describes how the user processes information.
	CognitiveStyle string `json:"cognitive_style"`

	// LeadershipStyle describes how the user leads and decides.
	LeadershipStyle string `json:"leadership_style"`

	// CommunicationStyle describes how the user communicates.
	CommunicationStyle string `json:"communication_style"`

	// RiskAndAmbition describes the user's risk appetite and ambition.
	RiskAndAmbition string `json:"risk_and_ambition"`

	// GrowthAndBlindSpots describes development areas and blind spots.
	GrowthAndBlindSpots string `json:"growth_and_blind_spots"`

	// Summary is the overall free-text summary.
	Summary string `json:"summary"`

	// LastUpdated is when the profile was last written.
	// Monotonically non-decreasing.
	LastUpdated time.Time `json:"last_updated"`

	// UpdateCount is the number of committed profile updates.
	// Monotonically increasing, never reset.
	UpdateCount int `json:"update_count"`

	// NextUpdateDue is when the next scheduled regeneration is due (optional).
	NextUpdateDue *time.Time `json:"next_update_due,omitempty"`
}

// InteractionEntry is a single chat turn recorded in a user's memory.
// Entries are immutable once appended.
type InteractionEntry struct {
	// ID is the unique identifier of the entry (snowflake).
	ID int64 `json:"id"`

	// Timestamp is when the interaction happened.
	Timestamp time.Time `json:"timestamp"`

	// UserMessage is the raw user message as received. Unbounded here;
	// consumers truncate what they render.
	UserMessage string `json:"user_message"`

	// Insights is the comma-joined insight tags derived from the message.
	Insights string `json:"insights"`

	// Patterns is the set of behavioral pattern tags detected against the
	// prior interactions at append time.
	Patterns []string `json:"patterns,omitempty"`
}

// ProfileUpdateEntry records one committed profile update in a user's memory.
type ProfileUpdateEntry struct {
	// ID is the unique identifier of the entry (snowflake).
	ID int64 `json:"id"`

	// Timestamp is when the update was committed.
	Timestamp time.Time `json:"timestamp"`

	// UpdatedFields lists the profile fields that received appended text.
	UpdatedFields []string `json:"updated_fields,omitempty"`

	// InsightCount is the number of pending insights consumed by the update.
	InsightCount int `json:"insight_count"`
}

// MemoryRecord is the bounded per-user conversational history.
//
// Interactions are kept in insertion (chronological) order and capped:
// appending beyond the cap evicts the oldest entries first.
type MemoryRecord struct {
	// UserID is the owning user identifier (unique key).
	UserID string `json:"user_id"`

	// Interactions is the ordered interaction history, oldest first.
	Interactions []InteractionEntry `json:"interactions"`

	// ProfileUpdates is the ordered history of committed profile updates.
	ProfileUpdates []ProfileUpdateEntry `json:"profile_updates"`

	// LastUpdated is when the record was last written.
	LastUpdated time.Time `json:"last_updated"`
}

// InsightCategory classifies a pending insight for profile updates.
type InsightCategory string

const (
	// CategoryLeadership covers leading, managing, team, and decision topics.
	CategoryLeadership InsightCategory = "leadership"

	// CategoryCommunication covers meetings, presentations, and conversations.
	CategoryCommunication InsightCategory = "communication"

	// CategoryGrowth covers learning, feedback, and development topics.
	CategoryGrowth InsightCategory = "growth"

	// CategoryBehavior covers emotional-state signals.
	CategoryBehavior InsightCategory = "behavior"

	// CategoryValues covers principles, ethics, and stated values.
	CategoryValues InsightCategory = "values"
)

// PendingInsight is one categorized observation accumulated by the scheduler
// between profile updates.
type PendingInsight struct {
	// Timestamp is when the insight was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Content is a truncated preview of the originating user message,
	// not a summary.
	Content string `json:"content"`

	// Category is the insight category.
	Category InsightCategory `json:"category"`

	// Confidence is the fixed per-category confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// ProfileUpdateTracker holds the per-user counters that drive profile
// regeneration. Counters and pending insights are reset exactly when a
// profile update is committed.
type ProfileUpdateTracker struct {
	// UserID is the owning user identifier.
	UserID string `json:"user_id"`

	// MeaningfulChats counts meaningful chat turns since the last update.
	MeaningfulChats int `json:"meaningful_chats"`

	// LastProfileUpdate is when the profile was last regenerated.
	LastProfileUpdate time.Time `json:"last_profile_update"`

	// UpdateTriggerCount counts committed updates over the tracker lifetime.
	UpdateTriggerCount int `json:"update_trigger_count"`

	// PendingInsights is the ordered set of insights awaiting the next update.
	PendingInsights []PendingInsight `json:"pending_insights"`
}

// ChatMessage is a role-tagged message in a conversation history.
type ChatMessage struct {
	// ID is the caller-assigned message identifier (optional). Synthetic
	// welcome placeholders are identified by this field and dropped before
	// prompt assembly.
	ID string `json:"id,omitempty"`

	// Role is "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ContextBudgetReport is the derived (never persisted) accounting of a
// prompt's estimated token cost against the model context window.
type ContextBudgetReport struct {
	// TotalTokens is the summed token estimate across all sections.
	TotalTokens int `json:"total_tokens"`

	// SystemPromptTokens is the estimate for the assembled system prompt.
	SystemPromptTokens int `json:"system_prompt_tokens"`

	// UserProfileTokens is the estimate for the JSON-serialized profile.
	UserProfileTokens int `json:"user_profile_tokens"`

	// ConversationHistoryTokens is the estimate across history messages.
	ConversationHistoryTokens int `json:"conversation_history_tokens"`

	// CurrentMessageTokens is the estimate for the inbound user message.
	CurrentMessageTokens int `json:"current_message_tokens"`

	// WithinLimits reports whether the total fits the context window minus
	// the slice reserved for the response.
	WithinLimits bool `json:"within_limits"`
}
