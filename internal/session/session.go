// Package session serializes access to per-session conversation state.
// Each session has one lock; two messages for the same session never
// interleave their read-modify-write of the context, while different
// sessions proceed in parallel.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avandyck/shepherd/internal/models"
	"github.com/avandyck/shepherd/internal/store"
)

// Manager hands out exclusive leases on conversation contexts.
type Manager struct {
	contexts store.ContextStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(contexts store.ContextStore) *Manager {
	return &Manager{
		contexts: contexts,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *Manager) lockFor(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[sessionID] = l
	}
	return l
}

// With runs fn holding the session's lock. fn receives the stored
// context (or a fresh one for an unknown session) and its mutations
// are persisted after it returns without error.
func (m *Manager) With(ctx context.Context, sessionID, tenantID string, fn func(cc *models.ConversationContext) error) error {
	l := m.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	cc, err := m.contexts.GetContext(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("load session %s: %w", sessionID, err)
		}
		cc = models.ConversationContext{SessionID: sessionID, TenantID: tenantID}
	}
	if cc.TenantID != tenantID {
		return fmt.Errorf("session %s belongs to another tenant", sessionID)
	}

	if err := fn(&cc); err != nil {
		return err
	}

	cc.UpdatedAt = time.Now().UTC()
	if err := m.contexts.SaveContext(ctx, cc); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Reset discards a session's state, used when a message opens a new
// conversation. The shown-evidence set only ever shrinks here.
func (m *Manager) Reset(ctx context.Context, sessionID, tenantID string) error {
	l := m.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	cc := models.ConversationContext{
		SessionID: sessionID,
		TenantID:  tenantID,
		UpdatedAt: time.Now().UTC(),
	}
	if err := m.contexts.SaveContext(ctx, cc); err != nil {
		return fmt.Errorf("reset session %s: %w", sessionID, err)
	}
	return nil
}
