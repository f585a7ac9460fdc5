// Package coach implements the chat orchestrator: the top-level control
// flow for one coaching chat turn.
//
// A turn runs validation, memory load, prompt assembly, context budgeting,
// the external completion call, and the bookkeeping steps (memory append,
// profile update scheduling). The completion call is the only suspension
// point and the only step allowed to fail the turn: every step after a
// successful completion is wrapped in its own failure boundary, because
// user-facing success is defined solely by getting a usable response.
package coach

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/coachmem-go/pkg/contextbudget"
	"github.com/pathwise/coachmem-go/pkg/core"
	"github.com/pathwise/coachmem-go/pkg/insight"
	"github.com/pathwise/coachmem-go/pkg/llm"
	"github.com/pathwise/coachmem-go/pkg/memory"
	"github.com/pathwise/coachmem-go/pkg/profile"
	"github.com/pathwise/coachmem-go/pkg/prompt"
)

// welcomeIDPrefix marks synthetic welcome placeholders in caller-supplied
// conversation history. They carry no user signal and are dropped.
const welcomeIDPrefix = "welcome"

// Completion sampling parameters for the coaching persona.
const (
	completionTemperature      = 0.7
	completionTopP             = 0.9
	completionFrequencyPenalty = 0.3
	completionPresencePenalty  = 0.3
)

// ChatRequest is one inbound chat turn.
type ChatRequest struct {
	// Message is the user's message.
	Message string `json:"message"`

	// UserProfile is the caller-supplied authoritative profile snapshot.
	UserProfile *core.UserProfile `json:"userProfile"`

	// ConversationHistory is the caller-supplied recent conversation.
	ConversationHistory []core.ChatMessage `json:"conversationHistory"`

	// UserID is the stable user identifier (optional; anonymous turns get
	// a throwaway identifier and effectively no cross-turn memory).
	UserID string `json:"userId,omitempty"`

	// ResumeText is optional extracted resume text to ground the coaching.
	ResumeText string `json:"resumeText,omitempty"`

	// LinkedInText is optional LinkedIn export text to ground the coaching.
	LinkedInText string `json:"linkedinText,omitempty"`
}

// ChatResult is the outcome of a successful chat turn.
type ChatResult struct {
	// Response is the coach's reply.
	Response string `json:"response"`

	// Success is always true on a returned result.
	Success bool `json:"success"`

	// MemoryUpdated reports whether the turn was persisted to memory.
	MemoryUpdated bool `json:"memoryUpdated"`

	// ProfileUpdated reports whether a profile update was committed.
	ProfileUpdated bool `json:"profileUpdated"`
}

// Orchestrator coordinates one chat turn end to end.
type Orchestrator struct {
	cfg       core.ChatConfig
	provider  llm.Provider
	mem       *memory.ConversationMemory
	scheduler *profile.Scheduler
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for best-effort failure reports.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates a chat orchestrator.
//
// Parameters:
//   - cfg: Chat configuration (zero values use defaults)
//   - provider: Completion provider (required)
//   - mem: Conversation memory (required)
//   - scheduler: Profile update scheduler (required)
//   - opts: Optional settings
func New(cfg core.ChatConfig, provider llm.Provider, mem *memory.ConversationMemory, scheduler *profile.Scheduler, opts ...Option) *Orchestrator {
	cfg.Normalize()
	o := &Orchestrator{
		cfg:       cfg,
		provider:  provider,
		mem:       mem,
		scheduler: scheduler,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Chat runs one chat turn.
//
// Validation failures and completion failures return an error (sentinel
// errors from core identify the class). Everything else degrades: a failed
// memory append or profile update is logged and reflected in the result
// flags, never surfaced as a chat failure.
func (o *Orchestrator) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	// Validation short-circuits before any memory or completion work.
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, core.NewCoachError("Chat", core.ErrMessageEmpty)
	}
	if len(req.Message) > o.cfg.MaxMessageLength {
		return nil, core.NewCoachError("Chat", core.ErrMessageTooLong)
	}
	if req.UserProfile == nil || strings.TrimSpace(req.UserProfile.Archetype) == "" {
		return nil, core.NewCoachError("Chat", core.ErrProfileInvalid)
	}

	userID := req.UserID
	if userID == "" {
		userID = "anon-" + uuid.NewString()
	}

	// Memory is best-effort: a failed load degrades the turn to an empty
	// history rather than failing the response.
	record, err := o.mem.Load(ctx, userID)
	if err != nil {
		o.logger.Warn("memory load failed, continuing without history",
			"user_id", userID, "error", err)
		record = &core.MemoryRecord{UserID: userID}
	}

	history := o.prepareHistory(req.ConversationHistory)
	systemPrompt := o.buildSystemPrompt(req, record)

	// Budget the prompt. If it overflows, re-pack the history under the
	// leftover budget; the current user message is never dropped.
	report := contextbudget.ComputeBudgetReport(systemPrompt, req.UserProfile, history, req.Message,
		o.cfg.ModelContextWindowTokens, o.cfg.ReservedResponseTokens)
	if !report.WithinLimits {
		historyBudget := o.cfg.ModelContextWindowTokens - o.cfg.ReservedResponseTokens -
			report.SystemPromptTokens - report.UserProfileTokens - report.CurrentMessageTokens
		history = contextbudget.PackConversationHistory(history, historyBudget)
	}

	response, err := o.complete(ctx, systemPrompt, history, req.Message)
	if err != nil {
		return nil, err
	}

	result := &ChatResult{
		Response: response,
		Success:  true,
	}

	// Persist the turn. This happens even if the profile update step
	// fails afterwards.
	entry := core.InteractionEntry{
		Timestamp:   time.Now(),
		UserMessage: req.Message,
		Insights:    insight.Extract(req.Message),
		Patterns:    insight.DetectPatterns(req.Message, record.Interactions),
	}
	if err := o.mem.Append(ctx, userID, entry); err != nil {
		o.logger.Error("memory append failed, turn not recorded",
			"user_id", userID, "error", err)
	} else {
		result.MemoryUpdated = true
	}

	o.seedProfile(ctx, userID, req.UserProfile)
	result.ProfileUpdated = o.maybeUpdateProfile(ctx, userID, req.Message, response)

	return result, nil
}

// prepareHistory truncates the caller-supplied history to the configured
// depth and drops synthetic welcome placeholders.
func (o *Orchestrator) prepareHistory(messages []core.ChatMessage) []core.ChatMessage {
	if len(messages) > o.cfg.MaxConversationHistory {
		messages = messages[len(messages)-o.cfg.MaxConversationHistory:]
	}

	history := make([]core.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if strings.HasPrefix(msg.ID, welcomeIDPrefix) {
			continue
		}
		if msg.Role != core.RoleUser && msg.Role != core.RoleAssistant {
			continue
		}
		history = append(history, msg)
	}
	return history
}

// buildSystemPrompt assembles the persona prompt plus optional budgeted
// resume/LinkedIn context.
func (o *Orchestrator) buildSystemPrompt(req *ChatRequest, record *core.MemoryRecord) string {
	systemPrompt := prompt.BuildSystemPrompt(req.UserProfile, record.Interactions)

	if req.ResumeText != "" {
		systemPrompt += "\n\nCLIENT RESUME\n" +
			contextbudget.OptimizeUserContent(req.ResumeText, contextbudget.KindResume)
	}
	if req.LinkedInText != "" {
		systemPrompt += "\n\nCLIENT LINKEDIN PROFILE\n" +
			contextbudget.OptimizeUserContent(req.LinkedInText, contextbudget.KindLinkedIn)
	}
	return systemPrompt
}

// complete calls the completion provider under the configured hard timeout.
// Failures are never retried within the same turn; retries are a caller
// concern.
func (o *Orchestrator) complete(ctx context.Context, systemPrompt string, history []core.ChatMessage, message string) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: core.RoleSystem, Content: systemPrompt})
	for _, msg := range history {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: core.RoleUser, Content: message})

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	response, err := o.provider.GenerateWithMessages(callCtx, messages,
		llm.WithMaxTokens(o.cfg.ReservedResponseTokens),
		llm.WithTemperature(completionTemperature),
		llm.WithTopP(completionTopP),
		llm.WithFrequencyPenalty(completionFrequencyPenalty),
		llm.WithPresencePenalty(completionPresencePenalty),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", core.NewCoachError("complete", core.ErrUpstreamTimeout)
		}
		o.logger.Error("completion call failed", "error", err)
		return "", core.NewCoachError("complete", core.ErrUpstream)
	}
	if strings.TrimSpace(response) == "" {
		return "", core.NewCoachError("complete", core.ErrUpstream)
	}
	return response, nil
}

// seedProfile stores the caller-supplied profile when none is persisted
// yet, so the scheduler has a record to merge into. An existing stored
// profile is never overwritten here: it may carry field augmentations the
// request snapshot predates.
func (o *Orchestrator) seedProfile(ctx context.Context, userID string, supplied *core.UserProfile) {
	stored, err := o.mem.Store().GetProfile(ctx, userID)
	if err != nil {
		o.logger.Warn("profile lookup failed", "user_id", userID, "error", err)
		return
	}
	if stored != nil {
		return
	}
	if err := o.mem.Store().SaveProfile(ctx, userID, supplied); err != nil {
		o.logger.Warn("profile seed failed", "user_id", userID, "error", err)
	}
}

// maybeUpdateProfile runs the trigger/commit scheduler steps, both
// best-effort. Returns whether an update was committed.
func (o *Orchestrator) maybeUpdateProfile(ctx context.Context, userID, message, response string) bool {
	due, err := o.scheduler.RecordMeaningfulChat(ctx, userID, message, response)
	if err != nil {
		o.logger.Warn("meaningful chat tracking failed", "user_id", userID, "error", err)
		return false
	}
	if !due {
		return false
	}

	updated, err := o.scheduler.UpdateProfile(ctx, userID)
	if err != nil {
		o.logger.Warn("profile update failed", "user_id", userID, "error", err)
		return false
	}
	// A nil profile is an expected skip (no stored profile, or nothing
	// cleared the confidence gate), not a failure.
	return updated != nil
}
