package models

import "time"

// FollowUpStatus tracks a reminder's lifecycle.
type FollowUpStatus string

const (
	FollowUpPending   FollowUpStatus = "pending"
	FollowUpDone      FollowUpStatus = "completed"
	FollowUpCancelled FollowUpStatus = "cancelled"
)

// FollowUp is a committed reminder produced by the multi-turn
// follow-up flow.
type FollowUp struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"`
	EntityID  string         `json:"entity_id,omitempty"`
	Topic     string         `json:"topic"`
	DueDate   time.Time      `json:"due_date"`
	Status    FollowUpStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}
