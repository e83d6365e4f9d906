// Package store persists entities, evidence, document chunks,
// conversation contexts and follow-ups. Two implementations exist: an
// in-memory store for tests and the demo CLI, and a SurrealDB store
// for real deployments.
package store

import (
	"context"
	"errors"

	"github.com/avandyck/shepherd/internal/models"
)

// Sentinel errors. Use errors.Is() in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// EntityStore persists roster entities.
type EntityStore interface {
	PutEntity(ctx context.Context, e models.Entity) error
	GetEntity(ctx context.Context, tenantID, id string) (models.Entity, error)
	ListEntities(ctx context.Context, tenantID string) ([]models.Entity, error)
}

// EvidenceStore persists interaction evidence records.
type EvidenceStore interface {
	PutEvidence(ctx context.Context, rec models.EvidenceRecord) error
	GetEvidence(ctx context.Context, tenantID, id string) (models.EvidenceRecord, error)
	ListEvidence(ctx context.Context, tenantID string) ([]models.EvidenceRecord, error)
	// AttachCorrection appends a correction without rewriting the
	// original record.
	AttachCorrection(ctx context.Context, tenantID, id, correction string) error
}

// ChunkStore persists document chunks for retrieval.
type ChunkStore interface {
	PutChunks(ctx context.Context, chunks []models.DocumentChunk) error
	ListChunks(ctx context.Context, tenantID string) ([]models.DocumentChunk, error)
}

// ContextStore persists per-session conversation state.
type ContextStore interface {
	GetContext(ctx context.Context, sessionID string) (models.ConversationContext, error)
	SaveContext(ctx context.Context, cc models.ConversationContext) error
}

// FollowUpStore persists follow-up reminders.
type FollowUpStore interface {
	PutFollowUp(ctx context.Context, f models.FollowUp) error
	ListFollowUps(ctx context.Context, tenantID string, status models.FollowUpStatus) ([]models.FollowUp, error)
	SetFollowUpStatus(ctx context.Context, tenantID, id string, status models.FollowUpStatus) error
}

// Store is the full persistence surface the assistant wires up.
type Store interface {
	EntityStore
	EvidenceStore
	ChunkStore
	ContextStore
	FollowUpStore
}
