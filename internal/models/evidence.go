package models

import "time"

// Facts holds the structured fields extracted from a logged note.
// All fields are optional; Confidence reflects how well the extraction
// call parsed.
type Facts struct {
	Hobbies        []string          `json:"hobbies,omitempty"`
	Favorites      map[string]string `json:"favorites,omitempty"`
	Family         map[string]string `json:"family,omitempty"`
	PrayerRequests []string          `json:"prayer_requests,omitempty"`
	Feedback       []string          `json:"feedback,omitempty"`
	Availability   string            `json:"availability,omitempty"`
	FollowUpNeeded bool              `json:"follow_up_needed,omitempty"`
	Birthday       string            `json:"birthday,omitempty"`
	Confidence     float64           `json:"confidence,omitempty"`
}

// Empty reports whether no structured data was extracted.
func (f Facts) Empty() bool {
	return len(f.Hobbies) == 0 && len(f.Favorites) == 0 && len(f.Family) == 0 &&
		len(f.PrayerRequests) == 0 && len(f.Feedback) == 0 &&
		f.Availability == "" && f.Birthday == "" && !f.FollowUpNeeded
}

// EvidenceRecord is a logged interaction note. Records are append-only:
// after creation only a correction may be attached, the original text
// and extracted facts are never rewritten.
type EvidenceRecord struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	AuthorRef string    `json:"author_ref"`
	RawText   string    `json:"raw_text"`
	Summary   string    `json:"summary,omitempty"`
	Facts     Facts     `json:"facts"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// LinkedEntityIDs reference entities in the same tenant scope only.
	LinkedEntityIDs []string `json:"linked_entity_ids,omitempty"`

	// PendingEntityNames holds mentioned names that resolved to more
	// than one candidate. They wait for manual confirmation instead of
	// being silently guessed.
	PendingEntityNames []string `json:"pending_entity_names,omitempty"`

	// Correction, if set, supersedes part of the extracted facts. The
	// raw text stays untouched.
	Correction string `json:"correction,omitempty"`
}

// DocumentChunk is one slice of an uploaded document. Chunks live and
// die with their parent document.
type DocumentChunk struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	DocumentID    string    `json:"document_id"`
	DocumentTitle string    `json:"document_title"`
	Index         int       `json:"index"`
	Text          string    `json:"text"`
	Embedding     []float32 `json:"embedding,omitempty"`
	PageRef       string    `json:"page_ref,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
