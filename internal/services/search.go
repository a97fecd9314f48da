package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/storyjam-backend/internal/clients/pinecone"
	"github.com/yungbote/storyjam-backend/internal/logger"
	pkgerrors "github.com/yungbote/storyjam-backend/internal/pkg/errors"
	"github.com/yungbote/storyjam-backend/internal/requestdata"
)

// searchLimit caps similarity results per query.
const searchLimit = 16

// SearchResult is one ranked hit. Score is normalized to [0,1], higher being
// more similar. The service applies no threshold; filtering against one
// (default 0.5) is the caller's policy.
type SearchResult struct {
	StoryID uuid.UUID `json:"story_id"`
	Score   float64   `json:"score"`
}

type SearchService interface {
	Similar(ctx context.Context, query string) ([]SearchResult, error)
}

// EmbedCache memoizes query embeddings. Lookups are best-effort; a miss or a
// cache error just falls through to the embedder.
type EmbedCache interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, bool)
	SetEmbedding(ctx context.Context, text string, vec []float32)
}

type searchService struct {
	log      *logger.Logger
	embedder Embedder
	vectors  pinecone.VectorStore
	cache    EmbedCache // optional
}

func NewSearchService(log *logger.Logger, embedder Embedder, vectors pinecone.VectorStore, cache EmbedCache) SearchService {
	return &searchService{
		log:      log.With("service", "SearchService"),
		embedder: embedder,
		vectors:  vectors,
		cache:    cache,
	}
}

func (s *searchService) Similar(ctx context.Context, query string) ([]SearchResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query required", pkgerrors.ErrInvalidArgument)
	}

	vec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.vectors.Query(ctx, "", vec, searchLimit, map[string]any{
		"user_id": rd.UserID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	out := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		id, pErr := uuid.Parse(m.ID)
		if pErr != nil {
			s.log.Warn("Skipping vector match with non-uuid id", "id", m.ID)
			continue
		}
		out = append(out, SearchResult{
			StoryID: id,
			Score:   normalizeCosine(m.Score),
		})
	}
	return out, nil
}

func (s *searchService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.cache != nil {
		if vec, ok := s.cache.GetEmbedding(ctx, query); ok {
			return vec, nil
		}
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetEmbedding(ctx, query, vec)
	}
	return vec, nil
}

// normalizeCosine maps a cosine similarity in [-1,1] onto [0,1].
func normalizeCosine(s float64) float64 {
	n := (s + 1) / 2
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
