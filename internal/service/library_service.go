// backend-go/internal/service/library_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/cache"
	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/andresuchdata/wenku/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrInvalidArgument marks a request that is missing a required value.
var ErrInvalidArgument = errors.New("invalid argument")

type LibraryService struct {
	repo  repository.CatalogReader
	cache cache.CatalogCache
	now   func() time.Time
}

func NewLibraryService(repo repository.CatalogReader, cacheImpl cache.CatalogCache) *LibraryService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopCatalogCache()
	}
	return &LibraryService{repo: repo, cache: cacheImpl, now: time.Now}
}

func (s *LibraryService) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	if categories, ok, err := s.cache.GetCategories(ctx); err == nil && ok {
		return categories, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("library: cache get categories failed")
	}

	categories, err := s.repo.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.CategorySummary{}
	}

	if err := s.cache.SetCategories(ctx, categories); err != nil {
		log.Warn().Err(err).Msg("library: cache set categories failed")
	}
	return categories, nil
}

// Documents lists one category, or one series inside it when filter.Series is set.
func (s *LibraryService) Documents(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentSummary, error) {
	if strings.TrimSpace(filter.Category) == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidArgument)
	}

	if docs, ok, err := s.cache.GetDocuments(ctx, filter); err == nil && ok {
		return docs, nil
	} else if err != nil {
		log.Warn().Err(err).Str("category", filter.Category).Msg("library: cache get documents failed")
	}

	docs, err := s.repo.ListDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.DocumentSummary{}
	}

	if err := s.cache.SetDocuments(ctx, filter, docs); err != nil {
		log.Warn().Err(err).Str("category", filter.Category).Msg("library: cache set documents failed")
	}
	return docs, nil
}

// Document loads one document with its neighbors in the series. Standalone
// documents report no neighbors and zero episodes.
func (s *LibraryService) Document(ctx context.Context, id string) (*domain.DocumentDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}

	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.DocumentDetail{Document: doc}
	if doc.SeriesName == nil || doc.EpisodeNumber == nil {
		return detail, nil
	}

	prev, next, total, err := s.repo.GetSeriesNeighbors(ctx, doc)
	if err != nil {
		return nil, err
	}
	detail.PrevID = prev
	detail.NextID = next
	detail.TotalEpisodes = total
	return detail, nil
}

// Search returns the most read documents matching q. A blank query matches nothing.
func (s *LibraryService) Search(ctx context.Context, q string) ([]domain.DocumentSummary, error) {
	if strings.TrimSpace(q) == "" {
		return []domain.DocumentSummary{}, nil
	}

	docs, err := s.repo.SearchDocuments(ctx, q, repository.SearchLimit)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.DocumentSummary{}
	}
	return docs, nil
}

func (s *LibraryService) RecordRead(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: documentId is required", ErrInvalidArgument)
	}
	return s.repo.IncrementReadCount(ctx, id, s.now())
}
