// Package models defines the core data types shared across the assistant.
package models

import "time"

// Entity is a resolvable person record the conversation can refer to.
// Entities are created lazily the first time extraction mentions a new
// name and are deactivated rather than deleted so old evidence links
// stay valid.
type Entity struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	DisplayName    string    `json:"display_name"`
	NormalizedName string    `json:"normalized_name"`
	ExternalRef    *string   `json:"external_ref,omitempty"`
	GroupTag       string    `json:"group_tag,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// FirstName returns the leading token of the normalized name.
func (e Entity) FirstName() string {
	for i := 0; i < len(e.NormalizedName); i++ {
		if e.NormalizedName[i] == ' ' {
			return e.NormalizedName[:i]
		}
	}
	return e.NormalizedName
}
