package models

import "time"

// PendingKind tags the variant stored in ConversationContext.Pending.
type PendingKind string

const (
	PendingNone                PendingKind = ""
	PendingEntityClarification PendingKind = "entity_clarification"
	PendingDateConfirmation    PendingKind = "date_confirmation"
	PendingFollowUpDetails     PendingKind = "followup_details"
	PendingSongSelection       PendingKind = "song_selection"
)

// Interpretation is one reading of an ambiguous message, e.g. the
// "Gratitude" in "when did we last play Gratitude?" read as a song
// title or as a person.
type Interpretation struct {
	Kind  string `json:"kind"` // "song" or "person"
	Value string `json:"value"`
}

// Candidate is one possible entity match offered during clarification.
type Candidate struct {
	EntityID    string `json:"entity_id"`
	DisplayName string `json:"display_name"`
}

// FollowUpDraft accumulates the slots of a follow-up being created
// across turns. Topic fills first, then the reminder date.
type FollowUpDraft struct {
	EntityID   string     `json:"entity_id,omitempty"`
	EntityName string     `json:"entity_name"`
	Topic      string     `json:"topic,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// PendingOp is the single pending operation a session may carry. The
// Kind field selects which of the payload fields are meaningful.
// At most one pending operation exists per session at a time.
type PendingOp struct {
	Kind         PendingKind `json:"kind"`
	OriginalText string      `json:"original_text,omitempty"`
	Asks         int         `json:"asks"` // clarifying questions emitted so far

	Interpretations []Interpretation `json:"interpretations,omitempty"`
	Candidates      []Candidate      `json:"candidates,omitempty"`
	DateRef         string           `json:"date_ref,omitempty"`
	FollowUp        *FollowUpDraft   `json:"follow_up,omitempty"`
	SongOptions     []string         `json:"song_options,omitempty"`
}

// Turn is one message of the session history.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ConversationContext is the per-session dialogue state. It is written
// by exactly one goroutine at a time (the session's message loop) and
// persisted after every turn.
type ConversationContext struct {
	SessionID string `json:"session_id"`
	TenantID  string `json:"tenant_id"`

	Pending *PendingOp `json:"pending,omitempty"`

	// ShownEvidenceIDs never shrinks within a session except on an
	// explicit new-conversation reset.
	ShownEvidenceIDs []string `json:"shown_evidence_ids,omitempty"`

	// DiscussedEntityIDs is ordered most-recent-first and backs
	// pronoun resolution.
	DiscussedEntityIDs []string `json:"discussed_entity_ids,omitempty"`

	RollingSummary string    `json:"rolling_summary,omitempty"`
	History        []Turn    `json:"history,omitempty"`
	TurnCount      int       `json:"turn_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MarkShown records evidence ids as surfaced in this session.
func (c *ConversationContext) MarkShown(ids ...string) {
	seen := make(map[string]bool, len(c.ShownEvidenceIDs))
	for _, id := range c.ShownEvidenceIDs {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			c.ShownEvidenceIDs = append(c.ShownEvidenceIDs, id)
			seen[id] = true
		}
	}
}

// TouchEntity moves an entity to the front of the discussed list.
func (c *ConversationContext) TouchEntity(id string) {
	out := make([]string, 0, len(c.DiscussedEntityIDs)+1)
	out = append(out, id)
	for _, prev := range c.DiscussedEntityIDs {
		if prev != id {
			out = append(out, prev)
		}
	}
	c.DiscussedEntityIDs = out
}

// Shown reports whether an evidence id was already surfaced.
func (c *ConversationContext) Shown(id string) bool {
	for _, shown := range c.ShownEvidenceIDs {
		if shown == id {
			return true
		}
	}
	return false
}
