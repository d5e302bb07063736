package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sgpropdata/docpipe/internal/core/domain"
	"github.com/sgpropdata/docpipe/internal/core/ports"
)

const defaultSearchLimit = 5

var errEmptyQuery = errors.New("query must not be empty")

// SearchUseCase answers semantic queries against the vector sink.
type SearchUseCase struct {
	embedder   ports.Embedder
	vectors    ports.VectorStore
	collection string
	log        *slog.Logger
}

func NewSearchUseCase(embedder ports.Embedder, vectors ports.VectorStore, collection string, log *slog.Logger) *SearchUseCase {
	return &SearchUseCase{embedder: embedder, vectors: vectors, collection: collection, log: log}
}

// Search embeds the query and returns the closest chunks, most similar first.
func (s *SearchUseCase) Search(ctx context.Context, query string, limit int, filter domain.ChunkFilter) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errEmptyQuery)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "embed search query", err)
	}

	results, err := s.vectors.Search(ctx, vector, limit, filter)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "vector search", err)
	}

	s.log.Info("semantic search", "query_len", len(query), "limit", limit, "results", len(results))
	return results, nil
}

// Stats reports the current size of the vector collection.
func (s *SearchUseCase) Stats(ctx context.Context) (domain.CollectionStats, error) {
	count, err := s.vectors.Count(ctx)
	if err != nil {
		return domain.CollectionStats{}, domain.WrapError(domain.ErrTemporary, "count collection", err)
	}
	return domain.CollectionStats{Collection: s.collection, Chunks: count}, nil
}
