// backend-go/internal/repository/document_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/domain"
)

// ErrDocumentNotFound is returned when no catalog row matches an id.
var ErrDocumentNotFound = errors.New("document not found")

// SearchLimit caps substring search results.
const SearchLimit = 30

// CatalogWriter is what the reconciler needs from the catalog.
type CatalogWriter interface {
	// ExistingKeys maps every cataloged bucket key to its document id.
	ExistingKeys(ctx context.Context) (map[string]string, error)
	InsertDocument(ctx context.Context, doc *domain.CatalogDocument) error
	// UpdateContent overwrites content and updated_at of the row with the given bucket key.
	UpdateContent(ctx context.Context, bucketKey string, content *string, updatedAt time.Time) error
}

// CatalogReader serves the read-side API.
type CatalogReader interface {
	GetCategories(ctx context.Context) ([]domain.CategorySummary, error)
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentSummary, error)
	GetDocument(ctx context.Context, id string) (*domain.CatalogDocument, error)
	// GetSeriesNeighbors returns the ids of the previous and next episode and the
	// series size.
	GetSeriesNeighbors(ctx context.Context, doc *domain.CatalogDocument) (prevID, nextID *string, total int, err error)
	SearchDocuments(ctx context.Context, query string, limit int) ([]domain.DocumentSummary, error)
	IncrementReadCount(ctx context.Context, id string, at time.Time) error
}

// CatalogRepository is the full catalog store.
type CatalogRepository interface {
	CatalogWriter
	CatalogReader
}
