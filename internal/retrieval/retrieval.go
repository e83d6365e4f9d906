// Package retrieval finds the evidence notes and document chunks
// relevant to a message. Scoring is in-process cosine similarity over
// the tenant's records; stores only list, they do not rank.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/avandyck/shepherd/internal/models"
	"github.com/avandyck/shepherd/internal/store"
)

// Embedder is the minimal embedding surface the engine needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options bound a retrieval pass.
type Options struct {
	Floor     float64 // minimum cosine similarity
	NoteLimit int
	DocLimit  int
	Budget    int // total characters across all returned items
}

// Item is one scored piece of evidence.
type Item struct {
	Kind   string // "note" or "chunk"
	ID     string
	Text   string
	Source string // linked entity ids for notes, document title for chunks
	Score  float64
}

// Bundle is the result of a retrieval pass. Degraded names sources
// that failed and were skipped rather than aborting the pass.
type Bundle struct {
	Items    []Item
	Degraded []string
}

// Engine runs retrieval against the stores.
type Engine struct {
	evidence store.EvidenceStore
	chunks   store.ChunkStore
	embedder Embedder
	opts     Options
}

func NewEngine(evidence store.EvidenceStore, chunks store.ChunkStore, embedder Embedder, opts Options) *Engine {
	return &Engine{evidence: evidence, chunks: chunks, embedder: embedder, opts: opts}
}

// Cosine computes cosine similarity between two vectors. Mismatched or
// empty vectors score zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Retrieve embeds the query and returns the best in-budget items from
// notes and documents. Records whose ids appear in shown are excluded:
// re-surfacing evidence the session already saw wastes budget. Entity
// ids, when given, restrict notes to records linked to those entities.
func (e *Engine) Retrieve(ctx context.Context, tenantID, query string, entityIDs []string, shown map[string]bool) (Bundle, error) {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return Bundle{}, fmt.Errorf("embed query: %w", err)
	}

	var bundle Bundle
	notes, err := e.searchNotes(ctx, tenantID, queryVec, entityIDs, shown)
	if err != nil {
		slog.Warn("note retrieval degraded", "tenant", tenantID, "error", err)
		bundle.Degraded = append(bundle.Degraded, "notes")
	}
	docs, err := e.searchDocs(ctx, tenantID, queryVec)
	if err != nil {
		slog.Warn("document retrieval degraded", "tenant", tenantID, "error", err)
		bundle.Degraded = append(bundle.Degraded, "documents")
	}

	merged := append(notes, docs...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	bundle.Items = fitBudget(merged, e.opts.Budget)
	return bundle, nil
}

func (e *Engine) searchNotes(ctx context.Context, tenantID string, queryVec []float32, entityIDs []string, shown map[string]bool) ([]Item, error) {
	records, err := e.evidence.ListEvidence(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	scope := make(map[string]bool, len(entityIDs))
	for _, id := range entityIDs {
		scope[id] = true
	}

	var items []Item
	for _, rec := range records {
		if shown[rec.ID] {
			continue
		}
		if len(scope) > 0 && !linkedToAny(rec, scope) {
			continue
		}
		score := Cosine(queryVec, rec.Embedding)
		if score < e.opts.Floor {
			continue
		}
		items = append(items, Item{
			Kind:   "note",
			ID:     rec.ID,
			Text:   noteText(rec),
			Source: fmt.Sprintf("note by %s", rec.AuthorRef),
			Score:  score,
		})
	}
	return top(items, e.opts.NoteLimit), nil
}

func (e *Engine) searchDocs(ctx context.Context, tenantID string, queryVec []float32) ([]Item, error) {
	chunks, err := e.chunks.ListChunks(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, c := range chunks {
		score := Cosine(queryVec, c.Embedding)
		if score < e.opts.Floor {
			continue
		}
		items = append(items, Item{
			Kind:   "chunk",
			ID:     c.ID,
			Text:   c.Text,
			Source: c.DocumentTitle,
			Score:  score,
		})
	}
	return top(items, e.opts.DocLimit), nil
}

func linkedToAny(rec models.EvidenceRecord, scope map[string]bool) bool {
	for _, id := range rec.LinkedEntityIDs {
		if scope[id] {
			return true
		}
	}
	return false
}

// noteText prefers the extraction summary; the raw note can be long
// and conversational.
func noteText(rec models.EvidenceRecord) string {
	if rec.Summary != "" {
		return rec.Summary
	}
	return rec.RawText
}

func top(items []Item, limit int) []Item {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// fitBudget keeps items in rank order until the character budget runs
// out, then drops the rest. Items are dropped whole, never truncated
// mid-text, and a lower-ranked item never rides past a dropped one.
func fitBudget(items []Item, budget int) []Item {
	if budget <= 0 {
		return items
	}
	var out []Item
	used := 0
	for _, item := range items {
		if used+len(item.Text) > budget {
			break
		}
		used += len(item.Text)
		out = append(out, item)
	}
	return out
}
