package retrieval

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/avandyck/shepherd/internal/models"
	"github.com/avandyck/shepherd/internal/store"
)

// fixedEmbedder returns canned vectors keyed by text.
type fixedEmbedder struct {
	vectors map[string][]float32
}

func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no vector for %q", text)
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{0.5, 0.3, 0.2}, []float32{0.5, 0.3, 0.2}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"empty", nil, nil, 0.0},
		{"mismatched", []float32{1, 0}, []float32{1}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}
	for _, tt := range tests {
		if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: Cosine = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func seedEngine(t *testing.T, opts Options, embedder Embedder) (*Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return NewEngine(mem, mem, embedder, opts), mem
}

func TestRetrieveSelfSimilarity(t *testing.T) {
	embedder := &fixedEmbedder{vectors: map[string][]float32{
		"sarah's mom had surgery": {0.8, 0.1, 0.1},
	}}
	eng, mem := seedEngine(t, Options{Floor: 0.3, NoteLimit: 5, DocLimit: 5}, embedder)
	ctx := context.Background()

	_ = mem.PutEvidence(ctx, models.EvidenceRecord{
		ID:        "ev1",
		TenantID:  "t1",
		RawText:   "sarah's mom had surgery",
		Embedding: []float32{0.8, 0.1, 0.1},
	})

	got, err := eng.Retrieve(ctx, "t1", "sarah's mom had surgery", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %+v, want the stored note", got.Items)
	}
	if math.Abs(got.Items[0].Score-1.0) > 1e-9 {
		t.Errorf("self-similarity = %v, want 1.0", got.Items[0].Score)
	}
}

func TestRetrieveFloorAndTenantIsolation(t *testing.T) {
	embedder := &fixedEmbedder{vectors: map[string][]float32{
		"query": {1, 0, 0},
	}}
	eng, mem := seedEngine(t, Options{Floor: 0.3, NoteLimit: 5, DocLimit: 5}, embedder)
	ctx := context.Background()

	_ = mem.PutEvidence(ctx, models.EvidenceRecord{ID: "close", TenantID: "t1", RawText: "close", Embedding: []float32{0.9, 0.1, 0}})
	_ = mem.PutEvidence(ctx, models.EvidenceRecord{ID: "far", TenantID: "t1", RawText: "far", Embedding: []float32{0.1, 0.9, 0.9}})
	_ = mem.PutEvidence(ctx, models.EvidenceRecord{ID: "other-tenant", TenantID: "t2", RawText: "close too", Embedding: []float32{1, 0, 0}})

	got, err := eng.Retrieve(ctx, "t1", "query", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "close" {
		t.Errorf("items = %+v, want only t1's close note", got.Items)
	}
}

func TestRetrieveExcludesShown(t *testing.T) {
	embedder := &fixedEmbedder{vectors: map[string][]float32{"query": {1, 0}}}
	eng, mem := seedEngine(t, Options{Floor: 0.3, NoteLimit: 5, DocLimit: 5}, embedder)
	ctx := context.Background()

	_ = mem.PutEvidence(ctx, models.EvidenceRecord{ID: "seen", TenantID: "t1", RawText: "seen", Embedding: []float32{1, 0}})
	_ = mem.PutEvidence(ctx, models.EvidenceRecord{ID: "new", TenantID: "t1", RawText: "new", Embedding: []float32{0.9, 0.1}})

	got, err := eng.Retrieve(ctx, "t1", "query", nil, map[string]bool{"seen": true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "new" {
		t.Errorf("items = %+v, want only the unseen note", got.Items)
	}
}

func TestRetrieveEntityScope(t *testing.T) {
	embedder := &fixedEmbedder{vectors: map[string][]float32{"query": {1, 0}}}
	eng, mem := seedEngine(t, Options{Floor: 0.3, NoteLimit: 5, DocLimit: 5}, embedder)
	ctx := context.Background()

	_ = mem.PutEvidence(ctx, models.EvidenceRecord{ID: "sarah-note", TenantID: "t1", RawText: "a", Embedding: []float32{1, 0}, LinkedEntityIDs: []string{"e-sarah"}})
	_ = mem.PutEvidence(ctx, models.EvidenceRecord{ID: "mike-note", TenantID: "t1", RawText: "b", Embedding: []float32{1, 0}, LinkedEntityIDs: []string{"e-mike"}})

	got, err := eng.Retrieve(ctx, "t1", "query", []string{"e-sarah"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "sarah-note" {
		t.Errorf("items = %+v, want only sarah's note", got.Items)
	}
}

func TestRetrieveBudgetDropsWholeItems(t *testing.T) {
	embedder := &fixedEmbedder{vectors: map[string][]float32{"query": {1, 0}}}
	eng, mem := seedEngine(t, Options{Floor: 0.0, NoteLimit: 0, DocLimit: 0, Budget: 4000}, embedder)
	ctx := context.Background()

	// 50 notes of 1000 characters each; only 4 fit a 4000-char budget.
	text := strings.Repeat("x", 1000)
	for i := 0; i < 50; i++ {
		_ = mem.PutEvidence(ctx, models.EvidenceRecord{
			ID:        fmt.Sprintf("ev%02d", i),
			TenantID:  "t1",
			RawText:   text,
			Embedding: []float32{1, float32(i) * 0.001},
		})
	}

	got, err := eng.Retrieve(ctx, "t1", "query", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 4 {
		t.Fatalf("items = %d, want 4 whole items in budget", len(got.Items))
	}
	for _, item := range got.Items {
		if len(item.Text) != 1000 {
			t.Errorf("item %s truncated to %d chars", item.ID, len(item.Text))
		}
	}
}

func TestRetrieveBudgetCutsAtFirstOverflow(t *testing.T) {
	embedder := &fixedEmbedder{vectors: map[string][]float32{"query": {1, 0}}}
	eng, mem := seedEngine(t, Options{Floor: 0.0, NoteLimit: 0, DocLimit: 0, Budget: 1000}, embedder)
	ctx := context.Background()

	// A small low-ranked note must not slip past a dropped larger one.
	notes := []struct {
		id   string
		size int
		emb  []float32
	}{
		{"best", 600, []float32{1, 0}},
		{"second", 600, []float32{1, 0.1}},
		{"small", 100, []float32{1, 0.2}},
	}
	for _, n := range notes {
		_ = mem.PutEvidence(ctx, models.EvidenceRecord{
			ID:        n.id,
			TenantID:  "t1",
			RawText:   strings.Repeat("x", n.size),
			Embedding: n.emb,
		})
	}

	got, err := eng.Retrieve(ctx, "t1", "query", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "best" {
		t.Errorf("items = %+v, want only the top-ranked note", got.Items)
	}
}

func TestRetrieveDegradedSources(t *testing.T) {
	embedder := &fixedEmbedder{vectors: map[string][]float32{"query": {1, 0}}}
	failing := &failingChunks{}
	mem := store.NewMemory()
	eng := NewEngine(mem, failing, embedder, Options{Floor: 0.3, NoteLimit: 5, DocLimit: 5})
	ctx := context.Background()

	_ = mem.PutEvidence(ctx, models.EvidenceRecord{ID: "ev1", TenantID: "t1", RawText: "a", Embedding: []float32{1, 0}})

	got, err := eng.Retrieve(ctx, "t1", "query", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 {
		t.Errorf("notes should still be returned, got %+v", got.Items)
	}
	if len(got.Degraded) != 1 || got.Degraded[0] != "documents" {
		t.Errorf("degraded = %v, want [documents]", got.Degraded)
	}
}

type failingChunks struct{}

func (f *failingChunks) PutChunks(context.Context, []models.DocumentChunk) error {
	return nil
}

func (f *failingChunks) ListChunks(context.Context, string) ([]models.DocumentChunk, error) {
	return nil, fmt.Errorf("chunk store offline")
}
