package chunking

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

// Splitter cuts text into fixed-size overlapping windows measured in runes.
// Window starts advance by size-overlap, the last window is clamped to the
// end of the text, and no window starts past the end. Deterministic: the
// same input always yields the same chunks.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must satisfy 0 <= overlap < size, got overlap=%d size=%d", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

func (s *Splitter) Chunk(documentName, text string) []domain.DocumentChunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	stem := strings.TrimSuffix(documentName, filepath.Ext(documentName))
	step := s.size - s.overlap

	var chunks []domain.DocumentChunk
	for start, idx := 0, 0; start < len(runes); start, idx = start+step, idx+1 {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}

		chunkText := string(runes[start:end])
		chunks = append(chunks, domain.DocumentChunk{
			ChunkID:      fmt.Sprintf("%s_chunk_%d", stem, idx),
			DocumentName: documentName,
			ChunkText:    chunkText,
			ChunkIndex:   idx,
			Metadata: map[string]any{
				"start_char": start,
				"end_char":   end,
				"chunk_size": end - start,
			},
		})

		if end == len(runes) {
			break
		}
	}
	return chunks
}
