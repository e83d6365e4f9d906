package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avandyck/shepherd/internal/models"
)

// Memory is an in-process Store. Safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	entities  map[string]models.Entity
	evidence  map[string]models.EvidenceRecord
	chunks    map[string]models.DocumentChunk
	contexts  map[string]models.ConversationContext
	followUps map[string]models.FollowUp
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entities:  make(map[string]models.Entity),
		evidence:  make(map[string]models.EvidenceRecord),
		chunks:    make(map[string]models.DocumentChunk),
		contexts:  make(map[string]models.ConversationContext),
		followUps: make(map[string]models.FollowUp),
	}
}

func (m *Memory) PutEntity(_ context.Context, e models.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[e.ID] = e
	return nil
}

func (m *Memory) GetEntity(_ context.Context, tenantID, id string) (models.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok || e.TenantID != tenantID {
		return models.Entity{}, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (m *Memory) ListEntities(_ context.Context, tenantID string) ([]models.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Entity
	for _, e := range m.entities {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) PutEvidence(_ context.Context, rec models.EvidenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evidence[rec.ID] = rec
	return nil
}

func (m *Memory) GetEvidence(_ context.Context, tenantID, id string) (models.EvidenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.evidence[id]
	if !ok || rec.TenantID != tenantID {
		return models.EvidenceRecord{}, fmt.Errorf("evidence %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

func (m *Memory) ListEvidence(_ context.Context, tenantID string) ([]models.EvidenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.EvidenceRecord
	for _, rec := range m.evidence {
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) AttachCorrection(_ context.Context, tenantID, id, correction string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.evidence[id]
	if !ok || rec.TenantID != tenantID {
		return fmt.Errorf("evidence %s: %w", id, ErrNotFound)
	}
	rec.Correction = correction
	m.evidence[id] = rec
	return nil
}

func (m *Memory) PutChunks(_ context.Context, chunks []models.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *Memory) ListChunks(_ context.Context, tenantID string) ([]models.DocumentChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.DocumentChunk
	for _, c := range m.chunks {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}

func (m *Memory) GetContext(_ context.Context, sessionID string) (models.ConversationContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cc, ok := m.contexts[sessionID]
	if !ok {
		return models.ConversationContext{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return cc, nil
}

func (m *Memory) SaveContext(_ context.Context, cc models.ConversationContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts[cc.SessionID] = cc
	return nil
}

func (m *Memory) PutFollowUp(_ context.Context, f models.FollowUp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followUps[f.ID] = f
	return nil
}

func (m *Memory) ListFollowUps(_ context.Context, tenantID string, status models.FollowUpStatus) ([]models.FollowUp, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.FollowUp
	for _, f := range m.followUps {
		if f.TenantID != tenantID {
			continue
		}
		if status != "" && f.Status != status {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (m *Memory) SetFollowUpStatus(_ context.Context, tenantID, id string, status models.FollowUpStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.followUps[id]
	if !ok || f.TenantID != tenantID {
		return fmt.Errorf("follow-up %s: %w", id, ErrNotFound)
	}
	f.Status = status
	m.followUps[id] = f
	return nil
}

var _ Store = (*Memory)(nil)
