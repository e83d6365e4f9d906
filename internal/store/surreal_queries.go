package store

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/avandyck/shepherd/internal/models"
)

// Row types mirror the domain models with SurrealDB record ids. The
// conversion keeps RecordID handling out of the rest of the codebase.

type entityRow struct {
	ID             surrealmodels.RecordID `json:"id"`
	TenantID       string                 `json:"tenant_id"`
	DisplayName    string                 `json:"display_name"`
	NormalizedName string                 `json:"normalized_name"`
	ExternalRef    *string                `json:"external_ref,omitempty"`
	GroupTag       *string                `json:"group_tag,omitempty"`
	Active         bool                   `json:"active"`
	CreatedAt      time.Time              `json:"created_at"`
}

func (r entityRow) toModel() models.Entity {
	e := models.Entity{
		ID:             recordString(r.ID),
		TenantID:       r.TenantID,
		DisplayName:    r.DisplayName,
		NormalizedName: r.NormalizedName,
		ExternalRef:    r.ExternalRef,
		Active:         r.Active,
		CreatedAt:      r.CreatedAt,
	}
	if r.GroupTag != nil {
		e.GroupTag = *r.GroupTag
	}
	return e
}

type evidenceRow struct {
	ID                 surrealmodels.RecordID `json:"id"`
	TenantID           string                 `json:"tenant_id"`
	AuthorRef          string                 `json:"author_ref"`
	RawText            string                 `json:"raw_text"`
	Summary            *string                `json:"summary,omitempty"`
	Facts              *models.Facts          `json:"facts,omitempty"`
	Embedding          []float32              `json:"embedding"`
	LinkedEntityIDs    []string               `json:"linked_entity_ids"`
	PendingEntityNames []string               `json:"pending_entity_names"`
	Correction         *string                `json:"correction,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}

func (r evidenceRow) toModel() models.EvidenceRecord {
	rec := models.EvidenceRecord{
		ID:                 recordString(r.ID),
		TenantID:           r.TenantID,
		AuthorRef:          r.AuthorRef,
		RawText:            r.RawText,
		Embedding:          r.Embedding,
		LinkedEntityIDs:    r.LinkedEntityIDs,
		PendingEntityNames: r.PendingEntityNames,
		CreatedAt:          r.CreatedAt,
	}
	if r.Summary != nil {
		rec.Summary = *r.Summary
	}
	if r.Facts != nil {
		rec.Facts = *r.Facts
	}
	if r.Correction != nil {
		rec.Correction = *r.Correction
	}
	return rec
}

type chunkRow struct {
	ID            surrealmodels.RecordID `json:"id"`
	TenantID      string                 `json:"tenant_id"`
	DocumentID    string                 `json:"document_id"`
	DocumentTitle string                 `json:"document_title"`
	Index         int                    `json:"index"`
	Text          string                 `json:"text"`
	Embedding     []float32              `json:"embedding"`
	PageRef       *string                `json:"page_ref,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

func (r chunkRow) toModel() models.DocumentChunk {
	c := models.DocumentChunk{
		ID:            recordString(r.ID),
		TenantID:      r.TenantID,
		DocumentID:    r.DocumentID,
		DocumentTitle: r.DocumentTitle,
		Index:         r.Index,
		Text:          r.Text,
		Embedding:     r.Embedding,
		CreatedAt:     r.CreatedAt,
	}
	if r.PageRef != nil {
		c.PageRef = *r.PageRef
	}
	return c
}

type conversationRow struct {
	ID                 surrealmodels.RecordID `json:"id"`
	SessionID          string                 `json:"session_id"`
	TenantID           string                 `json:"tenant_id"`
	Pending            *models.PendingOp      `json:"pending,omitempty"`
	ShownEvidenceIDs   []string               `json:"shown_evidence_ids"`
	DiscussedEntityIDs []string               `json:"discussed_entity_ids"`
	RollingSummary     *string                `json:"rolling_summary,omitempty"`
	History            []models.Turn          `json:"history"`
	TurnCount          int                    `json:"turn_count"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

func (r conversationRow) toModel() models.ConversationContext {
	cc := models.ConversationContext{
		SessionID:          r.SessionID,
		TenantID:           r.TenantID,
		Pending:            r.Pending,
		ShownEvidenceIDs:   r.ShownEvidenceIDs,
		DiscussedEntityIDs: r.DiscussedEntityIDs,
		History:            r.History,
		TurnCount:          r.TurnCount,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.RollingSummary != nil {
		cc.RollingSummary = *r.RollingSummary
	}
	return cc
}

type followUpRow struct {
	ID        surrealmodels.RecordID `json:"id"`
	TenantID  string                 `json:"tenant_id"`
	EntityID  *string                `json:"entity_id,omitempty"`
	Topic     string                 `json:"topic"`
	DueDate   time.Time              `json:"due_date"`
	Status    string                 `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
}

func (r followUpRow) toModel() models.FollowUp {
	f := models.FollowUp{
		ID:        recordString(r.ID),
		TenantID:  r.TenantID,
		Topic:     r.Topic,
		DueDate:   r.DueDate,
		Status:    models.FollowUpStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
	if r.EntityID != nil {
		f.EntityID = *r.EntityID
	}
	return f
}

func recordString(id surrealmodels.RecordID) string {
	if s, ok := id.ID.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", id.ID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func (s *Surreal) PutEntity(ctx context.Context, e models.Entity) error {
	_, err := surrealdb.Query[any](ctx, s.db, `
		UPSERT type::record("entity", $id) CONTENT {
			tenant_id: $tenant,
			display_name: $display_name,
			normalized_name: $normalized_name,
			external_ref: $external_ref,
			group_tag: $group_tag,
			active: $active,
			created_at: $created_at
		}
	`, map[string]any{
		"id":              e.ID,
		"tenant":          e.TenantID,
		"display_name":    e.DisplayName,
		"normalized_name": e.NormalizedName,
		"external_ref":    e.ExternalRef,
		"group_tag":       optional(e.GroupTag),
		"active":          e.Active,
		"created_at":      e.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("put entity: %w", wrapQueryError(err))
	}
	return nil
}

func (s *Surreal) GetEntity(ctx context.Context, tenantID, id string) (models.Entity, error) {
	results, err := surrealdb.Query[[]entityRow](ctx, s.db, `
		SELECT * FROM type::record("entity", $id) WHERE tenant_id = $tenant
	`, map[string]any{"id": id, "tenant": tenantID})
	if err != nil {
		return models.Entity{}, fmt.Errorf("get entity: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return models.Entity{}, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	return (*results)[0].Result[0].toModel(), nil
}

func (s *Surreal) ListEntities(ctx context.Context, tenantID string) ([]models.Entity, error) {
	results, err := surrealdb.Query[[]entityRow](ctx, s.db, `
		SELECT * FROM entity WHERE tenant_id = $tenant ORDER BY normalized_name
	`, map[string]any{"tenant": tenantID})
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", wrapQueryError(err))
	}
	var out []models.Entity
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			out = append(out, row.toModel())
		}
	}
	return out, nil
}

func (s *Surreal) PutEvidence(ctx context.Context, rec models.EvidenceRecord) error {
	var facts *models.Facts
	if !rec.Facts.Empty() {
		f := rec.Facts
		facts = &f
	}
	_, err := surrealdb.Query[any](ctx, s.db, `
		UPSERT type::record("evidence", $id) CONTENT {
			tenant_id: $tenant,
			author_ref: $author_ref,
			raw_text: $raw_text,
			summary: $summary,
			facts: $facts,
			embedding: $embedding,
			linked_entity_ids: $linked,
			pending_entity_names: $pending,
			correction: $correction,
			created_at: $created_at
		}
	`, map[string]any{
		"id":         rec.ID,
		"tenant":     rec.TenantID,
		"author_ref": rec.AuthorRef,
		"raw_text":   rec.RawText,
		"summary":    optional(rec.Summary),
		"facts":      facts,
		"embedding":  rec.Embedding,
		"linked":     orEmpty(rec.LinkedEntityIDs),
		"pending":    orEmpty(rec.PendingEntityNames),
		"correction": optional(rec.Correction),
		"created_at": rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("put evidence: %w", wrapQueryError(err))
	}
	return nil
}

func (s *Surreal) GetEvidence(ctx context.Context, tenantID, id string) (models.EvidenceRecord, error) {
	results, err := surrealdb.Query[[]evidenceRow](ctx, s.db, `
		SELECT * FROM type::record("evidence", $id) WHERE tenant_id = $tenant
	`, map[string]any{"id": id, "tenant": tenantID})
	if err != nil {
		return models.EvidenceRecord{}, fmt.Errorf("get evidence: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return models.EvidenceRecord{}, fmt.Errorf("evidence %s: %w", id, ErrNotFound)
	}
	return (*results)[0].Result[0].toModel(), nil
}

func (s *Surreal) ListEvidence(ctx context.Context, tenantID string) ([]models.EvidenceRecord, error) {
	results, err := surrealdb.Query[[]evidenceRow](ctx, s.db, `
		SELECT * FROM evidence WHERE tenant_id = $tenant ORDER BY created_at
	`, map[string]any{"tenant": tenantID})
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", wrapQueryError(err))
	}
	var out []models.EvidenceRecord
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			out = append(out, row.toModel())
		}
	}
	return out, nil
}

func (s *Surreal) AttachCorrection(ctx context.Context, tenantID, id, correction string) error {
	results, err := surrealdb.Query[[]evidenceRow](ctx, s.db, `
		UPDATE type::record("evidence", $id) SET correction = $correction
		WHERE tenant_id = $tenant RETURN AFTER
	`, map[string]any{"id": id, "tenant": tenantID, "correction": correction})
	if err != nil {
		return fmt.Errorf("attach correction: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("evidence %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Surreal) PutChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	for _, c := range chunks {
		_, err := surrealdb.Query[any](ctx, s.db, `
			UPSERT type::record("chunk", $id) CONTENT {
				tenant_id: $tenant,
				document_id: $document_id,
				document_title: $document_title,
				index: $index,
				text: $text,
				embedding: $embedding,
				page_ref: $page_ref,
				created_at: $created_at
			}
		`, map[string]any{
			"id":             c.ID,
			"tenant":         c.TenantID,
			"document_id":    c.DocumentID,
			"document_title": c.DocumentTitle,
			"index":          c.Index,
			"text":           c.Text,
			"embedding":      c.Embedding,
			"page_ref":       optional(c.PageRef),
			"created_at":     c.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("put chunk %s: %w", c.ID, wrapQueryError(err))
		}
	}
	return nil
}

func (s *Surreal) ListChunks(ctx context.Context, tenantID string) ([]models.DocumentChunk, error) {
	results, err := surrealdb.Query[[]chunkRow](ctx, s.db, `
		SELECT * FROM chunk WHERE tenant_id = $tenant ORDER BY document_id, index
	`, map[string]any{"tenant": tenantID})
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", wrapQueryError(err))
	}
	var out []models.DocumentChunk
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			out = append(out, row.toModel())
		}
	}
	return out, nil
}

func (s *Surreal) GetContext(ctx context.Context, sessionID string) (models.ConversationContext, error) {
	results, err := surrealdb.Query[[]conversationRow](ctx, s.db, `
		SELECT * FROM conversation WHERE session_id = $session LIMIT 1
	`, map[string]any{"session": sessionID})
	if err != nil {
		return models.ConversationContext{}, fmt.Errorf("get context: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return models.ConversationContext{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return (*results)[0].Result[0].toModel(), nil
}

func (s *Surreal) SaveContext(ctx context.Context, cc models.ConversationContext) error {
	_, err := surrealdb.Query[any](ctx, s.db, `
		UPSERT type::record("conversation", $session) CONTENT {
			session_id: $session,
			tenant_id: $tenant,
			pending: $pending,
			shown_evidence_ids: $shown,
			discussed_entity_ids: $discussed,
			rolling_summary: $summary,
			history: $history,
			turn_count: $turns,
			updated_at: time::now()
		}
	`, map[string]any{
		"session":   cc.SessionID,
		"tenant":    cc.TenantID,
		"pending":   cc.Pending,
		"shown":     orEmpty(cc.ShownEvidenceIDs),
		"discussed": orEmpty(cc.DiscussedEntityIDs),
		"summary":   optional(cc.RollingSummary),
		"history":   cc.History,
		"turns":     cc.TurnCount,
	})
	if err != nil {
		return fmt.Errorf("save context: %w", wrapQueryError(err))
	}
	return nil
}

func (s *Surreal) PutFollowUp(ctx context.Context, f models.FollowUp) error {
	_, err := surrealdb.Query[any](ctx, s.db, `
		UPSERT type::record("followup", $id) CONTENT {
			tenant_id: $tenant,
			entity_id: $entity,
			topic: $topic,
			due_date: $due,
			status: $status,
			created_at: $created_at
		}
	`, map[string]any{
		"id":         f.ID,
		"tenant":     f.TenantID,
		"entity":     optional(f.EntityID),
		"topic":      f.Topic,
		"due":        f.DueDate,
		"status":     string(f.Status),
		"created_at": f.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("put follow-up: %w", wrapQueryError(err))
	}
	return nil
}

func (s *Surreal) ListFollowUps(ctx context.Context, tenantID string, status models.FollowUpStatus) ([]models.FollowUp, error) {
	sql := `SELECT * FROM followup WHERE tenant_id = $tenant ORDER BY due_date`
	vars := map[string]any{"tenant": tenantID}
	if status != "" {
		sql = `SELECT * FROM followup WHERE tenant_id = $tenant AND status = $status ORDER BY due_date`
		vars["status"] = string(status)
	}
	results, err := surrealdb.Query[[]followUpRow](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", wrapQueryError(err))
	}
	var out []models.FollowUp
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			out = append(out, row.toModel())
		}
	}
	return out, nil
}

func (s *Surreal) SetFollowUpStatus(ctx context.Context, tenantID, id string, status models.FollowUpStatus) error {
	results, err := surrealdb.Query[[]followUpRow](ctx, s.db, `
		UPDATE type::record("followup", $id) SET status = $status
		WHERE tenant_id = $tenant RETURN AFTER
	`, map[string]any{"id": id, "tenant": tenantID, "status": string(status)})
	if err != nil {
		return fmt.Errorf("set follow-up status: %w", wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("follow-up %s: %w", id, ErrNotFound)
	}
	return nil
}

var _ Store = (*Surreal)(nil)
