package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avandyck/shepherd/internal/models"
	"github.com/avandyck/shepherd/internal/store"
)

// BatchEmbedder embeds chunk texts in one call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Ingestor turns whole documents into embedded, retrievable chunks.
type Ingestor struct {
	embedder BatchEmbedder
	chunks   store.ChunkStore
	config   ChunkConfig
}

func NewIngestor(embedder BatchEmbedder, chunks store.ChunkStore, config ChunkConfig) *Ingestor {
	return &Ingestor{embedder: embedder, chunks: chunks, config: config}
}

// Ingest chunks, embeds and stores one document. It returns the number
// of chunks written.
func (i *Ingestor) Ingest(ctx context.Context, tenantID, title, content string) (int, error) {
	pieces := ChunkText(content, i.config)
	if len(pieces) == 0 {
		return 0, fmt.Errorf("ingest %q: document is empty", title)
	}

	texts := make([]string, len(pieces))
	for idx, piece := range pieces {
		texts[idx] = piece.Text
	}
	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed document %q: %w", title, err)
	}
	if len(vectors) != len(pieces) {
		return 0, fmt.Errorf("embed document %q: got %d vectors for %d chunks", title, len(vectors), len(pieces))
	}

	docID := uuid.NewString()
	now := time.Now().UTC()
	records := make([]models.DocumentChunk, len(pieces))
	for idx, piece := range pieces {
		records[idx] = models.DocumentChunk{
			ID:            uuid.NewString(),
			TenantID:      tenantID,
			DocumentID:    docID,
			DocumentTitle: title,
			Index:         piece.Index,
			Text:          piece.Text,
			Embedding:     vectors[idx],
			CreatedAt:     now,
		}
	}
	if err := i.chunks.PutChunks(ctx, records); err != nil {
		return 0, fmt.Errorf("store document %q: %w", title, err)
	}

	slog.Info("document ingested", "title", title, "chunks", len(records))
	return len(records), nil
}
