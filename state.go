package prdflow

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/prdflow/llm"
)

// =============================================================================
// Workflow Stages and Intents
// =============================================================================

// Stage marks where a session is in the document workflow.
type Stage string

const (
	StageInit     Stage = "init"
	StagePlan     Stage = "plan"
	StageBuild    Stage = "build"
	StageAssemble Stage = "assemble"
	StageReview   Stage = "review"
	StageExport   Stage = "export"
)

// Intent is the classification of a user message.
type Intent string

const (
	IntentSectionUpdate   Intent = "section_update"
	IntentOffTargetUpdate Intent = "off_target_update"
	IntentRevision        Intent = "revision"
	IntentMetaQuery       Intent = "meta_query"
	IntentOffTopic        Intent = "off_topic"
)

// ValidIntent reports whether s is a known intent value.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentSectionUpdate, IntentOffTargetUpdate, IntentRevision, IntentMetaQuery, IntentOffTopic:
		return true
	}
	return false
}

// =============================================================================
// Messages and Versions
// =============================================================================

// Message is one entry in the append-only conversation log.
type Message struct {
	Role      llm.Role  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Version is an immutable exported snapshot of the document.
type Version struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Author    string    `json:"author,omitempty"`
	Format    string    `json:"format"`
	Content   string    `json:"content"`
}

// SessionConfig identifies a session and tracks its turn bookkeeping.
type SessionConfig struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// ActiveSection is the key of the section currently being built.
	// Empty means all sections in the execution order are exhausted.
	ActiveSection string `json:"activeSection,omitempty"`

	TurnCounter int `json:"turnCounter"`
}

// MetricsState tracks token usage across the session.
type MetricsState struct {
	TotalTokensIn  int     `json:"totalTokensIn"`
	TotalTokensOut int     `json:"totalTokensOut"`
	TotalCost      float64 `json:"totalCost"`
}

// =============================================================================
// ConversationState - Full Session State
// =============================================================================

// ConversationState is the single mutable record threaded through every
// stage of a session. It is exclusively owned by the engine for the
// session's lifetime and round-trips through JSON for checkpointing.
type ConversationState struct {
	Config SessionConfig `json:"config"`

	// Conversation
	Messages    []Message `json:"messages"`
	LatestInput string    `json:"latestInput,omitempty"`
	Summary     string    `json:"summary,omitempty"`

	// Document content
	NormalizedIdea string              `json:"normalizedIdea,omitempty"`
	Sections       map[string]*Section `json:"sections"`
	SectionOrder   []string            `json:"sectionOrder,omitempty"`
	Snapshot       string              `json:"snapshot,omitempty"`
	Issues         []string            `json:"issues,omitempty"`
	Glossary       map[string]string   `json:"glossary,omitempty"`
	Versions       []Version           `json:"versions,omitempty"`

	// Workflow control
	Stage         Stage  `json:"stage"`
	Intent        Intent `json:"intent,omitempty"`
	TargetSection string `json:"targetSection,omitempty"`

	// Human-in-the-loop control
	AwaitingInput bool   `json:"awaitingInput"`
	AwaitReason   string `json:"awaitReason,omitempty"`
	AwaitSection  string `json:"awaitSection,omitempty"`
	ClarifyAsked  bool   `json:"clarifyAsked,omitempty"`

	// Assembler control: RunAssembler requests an assembly pass;
	// LastAssembledAt is the timestamp guard for the cooldown window.
	RunAssembler    bool      `json:"runAssembler,omitempty"`
	LastAssembledAt time.Time `json:"lastAssembledAt,omitempty"`

	// Retrieved external context for the current turn. The json names
	// match the resume-payload keys merged by the interrupt stage.
	RAGEnabled bool   `json:"rag_enabled,omitempty"`
	RAGContext string `json:"rag_context,omitempty"`

	MetricsState
}

// NewConversationState creates the state for a fresh session seeded
// with the user's initial idea.
func NewConversationState(userID, idea string) ConversationState {
	now := time.Now().UTC()
	state := ConversationState{
		Config: SessionConfig{
			SessionID: generateSessionID(),
			UserID:    userID,
			CreatedAt: now,
		},
		LatestInput: idea,
		Sections:    make(map[string]*Section),
		Glossary:    make(map[string]string),
		Stage:       StageInit,
	}
	state.Messages = append(state.Messages, Message{
		Role:      llm.RoleUser,
		Content:   idea,
		Timestamp: now,
	})
	return state
}

// AppendAssistant adds an assistant message to the log.
func (s *ConversationState) AppendAssistant(content string) {
	s.Messages = append(s.Messages, Message{
		Role:      llm.RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

// AppendUser adds a user message to the log.
func (s *ConversationState) AppendUser(content string) {
	s.Messages = append(s.Messages, Message{
		Role:      llm.RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

// LastMessage returns the most recent message content, "" when empty.
func (s *ConversationState) LastMessage() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].Content
}

// ActiveSection returns the section under construction, nil when the
// pointer is exhausted or the key is unknown.
func (s *ConversationState) ActiveSection() *Section {
	if s.Config.ActiveSection == "" {
		return nil
	}
	return s.Sections[s.Config.ActiveSection]
}

// AdvanceFrom moves the active-section pointer to the entry after key
// in the execution order, or clears it when key is the last entry.
func (s *ConversationState) AdvanceFrom(key string) {
	for i, k := range s.SectionOrder {
		if k == key {
			if i+1 < len(s.SectionOrder) {
				s.Config.ActiveSection = s.SectionOrder[i+1]
			} else {
				s.Config.ActiveSection = ""
			}
			return
		}
	}
}

// RequestInput flags that the workflow is paused for a human reply.
func (s *ConversationState) RequestInput(reason, sectionKey string) {
	s.AwaitingInput = true
	s.AwaitReason = reason
	s.AwaitSection = sectionKey
}

// ClearInput resets the human-input flags.
func (s *ConversationState) ClearInput() {
	s.AwaitingInput = false
	s.AwaitReason = ""
	s.AwaitSection = ""
}

// SectionsByStatus groups section keys by their current status.
func (s *ConversationState) SectionsByStatus() map[Status][]string {
	out := make(map[Status][]string)
	for _, key := range s.orderedKeys() {
		status := s.Sections[key].Status
		out[status] = append(out[status], key)
	}
	return out
}

// CompletedCount returns how many sections are completed.
func (s *ConversationState) CompletedCount() int {
	n := 0
	for _, section := range s.Sections {
		if section.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// AddTokens accumulates token usage into the session metrics.
func (s *ConversationState) AddTokens(usage llm.Usage) {
	s.TotalTokensIn += usage.InputTokens
	s.TotalTokensOut += usage.OutputTokens
	s.TotalCost += usage.CostUSD
}

// orderedKeys lists section keys: execution order first, then any
// remaining sections sorted by key.
func (s *ConversationState) orderedKeys() []string {
	seen := make(map[string]bool, len(s.Sections))
	keys := make([]string, 0, len(s.Sections))
	for _, key := range s.SectionOrder {
		if _, ok := s.Sections[key]; ok && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	rest := make([]string, 0, len(s.Sections))
	for key := range s.Sections {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sortStrings(rest)
	return append(keys, rest...)
}

// sortStrings is an in-place insertion sort; section counts are tiny.
func sortStrings(keys []string) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

// =============================================================================
// State Validation
// =============================================================================

// StateRequirement defines a state prerequisite for a stage.
type StateRequirement string

const (
	RequireIdea     StateRequirement = "idea"
	RequireSections StateRequirement = "sections"
	RequireOrder    StateRequirement = "order"
	RequireSnapshot StateRequirement = "snapshot"
	RequireInput    StateRequirement = "input"
)

// Validate checks that the state satisfies the given prerequisites.
func (s *ConversationState) Validate(requirements ...StateRequirement) error {
	for _, req := range requirements {
		switch req {
		case RequireIdea:
			if s.NormalizedIdea == "" {
				return fmt.Errorf("normalized idea required")
			}
		case RequireSections:
			if len(s.Sections) == 0 {
				return fmt.Errorf("sections required")
			}
		case RequireOrder:
			if len(s.SectionOrder) == 0 {
				return fmt.Errorf("execution order required")
			}
		case RequireSnapshot:
			if s.Snapshot == "" {
				return fmt.Errorf("document snapshot required")
			}
		case RequireInput:
			if s.LatestInput == "" {
				return fmt.Errorf("user input required")
			}
		default:
			return fmt.Errorf("unknown requirement: %s", req)
		}
	}
	return nil
}

// SessionSummary returns a human-readable one-line session summary.
func (s *ConversationState) SessionSummary() string {
	return fmt.Sprintf("Session %s [%s]: %d/%d sections completed (tokens: %d in, %d out)",
		s.Config.SessionID, s.Stage,
		s.CompletedCount(), len(s.Sections),
		s.TotalTokensIn, s.TotalTokensOut)
}

// =============================================================================
// ID Generation
// =============================================================================

// generateSessionID creates a unique session id.
func generateSessionID() string {
	id, err := nanoid.New()
	if err != nil {
		// nanoid only fails if the system randomness source does.
		return fmt.Sprintf("session-%d", time.Now().UnixNano())
	}
	return id
}

// generateVersionID creates a unique export version id.
func generateVersionID() string {
	id, err := nanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 12)
	if err != nil {
		return fmt.Sprintf("v-%d", time.Now().UnixNano())
	}
	return "v-" + id
}
