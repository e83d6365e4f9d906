// Package parser chunks knowledge-base documents for embedding and
// retrieval.
package parser

import (
	"strings"
	"unicode"
)

// Chunk is one retrievable slice of a document.
type Chunk struct {
	Index int
	Text  string
}

// ChunkConfig defines chunking parameters.
type ChunkConfig struct {
	// Threshold: only chunk if content exceeds this length
	Threshold int
	// TargetSize: ideal chunk size
	TargetSize int
	// MaxSize: maximum chunk size (larger paragraphs split at sentences)
	MaxSize int
	// Overlap: character overlap carried from the previous chunk
	Overlap int
}

func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Threshold:  1500,
		TargetSize: 750,
		MaxSize:    1000,
		Overlap:    100,
	}
}

// ChunkText splits document text at paragraph boundaries, falling back
// to sentence boundaries for oversized paragraphs. Short documents
// come back as a single chunk.
func ChunkText(content string, config ChunkConfig) []Chunk {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if len(content) <= config.Threshold {
		return []Chunk{{Index: 0, Text: content}}
	}

	var texts []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			texts = append(texts, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len()+len(para) > config.MaxSize && current.Len() > 0 {
			flush()
		}

		if len(para) > config.MaxSize {
			flush()
			texts = append(texts, chunkBySentences(para, config)...)
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return applyOverlap(texts, config.Overlap)
}

// chunkBySentences splits an oversized paragraph at sentence ends.
func chunkBySentences(text string, config ChunkConfig) []string {
	var chunks []string
	var current strings.Builder

	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if current.Len()+len(sentence) > config.TargetSize && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				// Likely an abbreviation like "Dr."
				if i > 1 && unicode.IsUpper(runes[i-1]) {
					continue
				}
				sentences = append(sentences, current.String())
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

// applyOverlap prefixes each chunk with the tail of its predecessor so
// retrieval does not lose context at boundaries.
func applyOverlap(texts []string, overlap int) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		if overlap > 0 && i > 0 {
			prev := texts[i-1]
			if len(prev) > overlap {
				tail := prev[len(prev)-overlap:]
				if spaceIdx := strings.LastIndex(tail, " "); spaceIdx > 0 {
					tail = tail[spaceIdx+1:]
				}
				text = tail + " " + text
			}
		}
		chunks[i] = Chunk{Index: i, Text: text}
	}
	return chunks
}
