// Package extract turns logged interaction notes into structured
// evidence records: LLM extraction with a fixed template, entity
// linking through the resolver, and synchronous embedding.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avandyck/shepherd/internal/models"
	"github.com/avandyck/shepherd/internal/resolve"
	"github.com/avandyck/shepherd/internal/store"
)

const extractionPrompt = `Extract structured information from this team interaction note.
Return ONLY valid JSON (no markdown, no explanation) with this structure:
{
    "people": [{"name": "Full Name", "group": "group name or empty string"}],
    "summary": "brief 1-2 sentence summary",
    "facts": {
        "hobbies": ["list of hobbies mentioned"],
        "favorites": {"food": "...", "color": "..."},
        "family": {"spouse": "...", "children": "..."},
        "prayer_requests": ["list of prayer requests"],
        "feedback": ["list of feedback items"],
        "availability": "scheduling notes or empty string",
        "follow_up_needed": false,
        "birthday": "date mentioned or empty string"
    }
}

If no people are clearly mentioned, return an empty list for people.
Only include fields that have actual data extracted from the note.`

const retryPrompt = extractionPrompt + `

Your previous reply was not valid JSON. Return only the JSON object, nothing else.`

// Generator is the LLM surface the pipeline needs.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Embedder embeds the raw note for later retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Resolver matches mentioned names against the roster.
type Resolver interface {
	Resolve(ctx context.Context, tenantID, name string) (resolve.Result, error)
}

// payload is the JSON shape the extraction prompt demands.
type payload struct {
	People []struct {
		Name  string `json:"name"`
		Group string `json:"group"`
	} `json:"people"`
	Summary string       `json:"summary"`
	Facts   models.Facts `json:"facts"`
}

// Pipeline processes notes into evidence records.
type Pipeline struct {
	model    Generator
	embedder Embedder
	resolver Resolver
	entities store.EntityStore
	evidence store.EvidenceStore
}

func NewPipeline(model Generator, embedder Embedder, resolver Resolver, entities store.EntityStore, evidence store.EvidenceStore) *Pipeline {
	return &Pipeline{
		model:    model,
		embedder: embedder,
		resolver: resolver,
		entities: entities,
		evidence: evidence,
	}
}

// ProcessNote extracts, links and stores one note. Extraction failure
// is not fatal: the note is stored with raw text only so nothing a
// leader logged is ever lost.
func (p *Pipeline) ProcessNote(ctx context.Context, tenantID, authorRef, text string) (models.EvidenceRecord, error) {
	parsed, confidence := p.extract(ctx, text)

	rec := models.EvidenceRecord{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		AuthorRef: authorRef,
		RawText:   text,
		Summary:   parsed.Summary,
		Facts:     parsed.Facts,
		CreatedAt: time.Now().UTC(),
	}
	rec.Facts.Confidence = confidence

	// Embedding is synchronous: the note must be retrievable the
	// moment logging returns. A failed embed degrades to keyword-less
	// storage rather than losing the note.
	vec, err := p.embedder.Embed(ctx, text)
	if err != nil {
		slog.Warn("note embedding failed, storing without vector", "tenant", tenantID, "error", err)
	} else {
		rec.Embedding = vec
	}

	for _, person := range parsed.People {
		name := strings.TrimSpace(person.Name)
		if name == "" {
			continue
		}
		if err := p.linkPerson(ctx, &rec, tenantID, name, person.Group); err != nil {
			return models.EvidenceRecord{}, err
		}
	}

	if err := p.evidence.PutEvidence(ctx, rec); err != nil {
		return models.EvidenceRecord{}, fmt.Errorf("store evidence: %w", err)
	}
	return rec, nil
}

// extract runs the template, retrying once on a malformed reply. On
// double failure it fails closed with empty facts.
func (p *Pipeline) extract(ctx context.Context, text string) (payload, float64) {
	raw, err := p.model.GenerateWithSystem(ctx, extractionPrompt, text)
	if err != nil {
		slog.Warn("extraction call failed", "error", err)
		return payload{}, 0
	}
	if parsed, strict, ok := parsePayload(raw); ok {
		if strict {
			return parsed, 1.0
		}
		return parsed, 0.9
	}

	raw, err = p.model.GenerateWithSystem(ctx, retryPrompt, text)
	if err != nil {
		slog.Warn("extraction retry failed", "error", err)
		return payload{}, 0
	}
	if parsed, _, ok := parsePayload(raw); ok {
		return parsed, 0.7
	}

	slog.Warn("extraction returned unparseable output twice, storing raw text only")
	return payload{}, 0
}

var fenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// parsePayload parses a model reply, tolerating a markdown code fence
// around the JSON. strict reports whether the reply was bare JSON.
func parsePayload(raw string) (parsed payload, strict, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		return parsed, true, true
	}
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		parsed = payload{}
		if err := json.Unmarshal([]byte(m[1]), &parsed); err == nil {
			return parsed, false, true
		}
	}
	return payload{}, false, false
}

// linkPerson resolves one mentioned name. None creates a fresh entity,
// One links, Many records the name for manual confirmation instead of
// guessing.
func (p *Pipeline) linkPerson(ctx context.Context, rec *models.EvidenceRecord, tenantID, name, group string) error {
	result, err := p.resolver.Resolve(ctx, tenantID, name)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", name, err)
	}

	switch result.Outcome {
	case resolve.One:
		rec.LinkedEntityIDs = append(rec.LinkedEntityIDs, result.Matches[0].Entity.ID)

	case resolve.Many:
		rec.PendingEntityNames = append(rec.PendingEntityNames, name)

	case resolve.None:
		entity := models.Entity{
			ID:             uuid.NewString(),
			TenantID:       tenantID,
			DisplayName:    name,
			NormalizedName: models.NormalizeName(name),
			GroupTag:       group,
			Active:         true,
			CreatedAt:      time.Now().UTC(),
		}
		if err := p.entities.PutEntity(ctx, entity); err != nil {
			return fmt.Errorf("create entity %q: %w", name, err)
		}
		slog.Info("created entity from note mention", "tenant", tenantID, "name", name)
		rec.LinkedEntityIDs = append(rec.LinkedEntityIDs, entity.ID)
	}
	return nil
}
