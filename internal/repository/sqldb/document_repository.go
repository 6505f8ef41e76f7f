package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/andresuchdata/wenku/backend-go/internal/repository"
)

const summaryColumns = `id, title, doc_type, category, series_name, episode_num, format, bucket_key, file_size,
	audio_series_id, audio_episode_num, read_count`

const documentColumns = `id, title, doc_type, category, series_name, episode_num, format, bucket, bucket_key,
	content, file_size, audio_series_id, audio_episode_num, read_count, created_at, updated_at`

type DocumentRepository struct {
	db *DB
}

func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

var _ repository.CatalogRepository = (*DocumentRepository)(nil)

func (r *DocumentRepository) ExistingKeys(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT id, bucket_key FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing keys: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]string)
	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("failed to scan existing key: %w", err)
		}
		existing[key] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate existing keys: %w", err)
	}
	return existing, nil
}

func (r *DocumentRepository) InsertDocument(ctx context.Context, doc *domain.CatalogDocument) error {
	query := `
		INSERT INTO documents (
			id, title, doc_type, category, series_name, episode_num, format, bucket, bucket_key,
			content, file_size, audio_series_id, audio_episode_num, read_count, created_at, updated_at
		) VALUES (
			:id, :title, :doc_type, :category, :series_name, :episode_num, :format, :bucket, :bucket_key,
			:content, :file_size, :audio_series_id, :audio_episode_num, :read_count, :created_at, :updated_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) UpdateContent(ctx context.Context, bucketKey string, content *string, updatedAt time.Time) error {
	query := r.db.Rebind(`UPDATE documents SET content = ?, updated_at = ? WHERE bucket_key = ?`)
	if _, err := r.db.ExecContext(ctx, query, content, updatedAt, bucketKey); err != nil {
		return fmt.Errorf("failed to update document content: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	query := `
		SELECT category, MIN(doc_type) AS doc_type, COUNT(*) AS count
		FROM documents
		GROUP BY category
		ORDER BY category`

	categories := []domain.CategorySummary{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (r *DocumentRepository) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentSummary, error) {
	var (
		query string
		args  []interface{}
	)
	if filter.Series != "" {
		query = `SELECT ` + summaryColumns + ` FROM documents
			WHERE category = ? AND series_name = ?
			ORDER BY episode_num IS NULL, episode_num, title`
		args = []interface{}{filter.Category, filter.Series}
	} else {
		query = `SELECT ` + summaryColumns + ` FROM documents
			WHERE category = ?
			ORDER BY series_name IS NULL, series_name, episode_num IS NULL, episode_num, title`
		args = []interface{}{filter.Category}
	}

	documents := []domain.DocumentSummary{}
	if err := r.db.SelectContext(ctx, &documents, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}

func (r *DocumentRepository) GetDocument(ctx context.Context, id string) (*domain.CatalogDocument, error) {
	query := r.db.Rebind(`SELECT ` + documentColumns + ` FROM documents WHERE id = ?`)

	var doc domain.CatalogDocument
	err := r.db.GetContext(ctx, &doc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) GetSeriesNeighbors(ctx context.Context, doc *domain.CatalogDocument) (*string, *string, int, error) {
	if doc.SeriesName == nil || doc.EpisodeNumber == nil {
		return nil, nil, 0, nil
	}

	prevID, err := r.neighbor(ctx, doc, `episode_num < ? ORDER BY episode_num DESC`)
	if err != nil {
		return nil, nil, 0, err
	}
	nextID, err := r.neighbor(ctx, doc, `episode_num > ? ORDER BY episode_num ASC`)
	if err != nil {
		return nil, nil, 0, err
	}

	var total int
	query := r.db.Rebind(`SELECT COUNT(*) FROM documents WHERE category = ? AND series_name = ?`)
	if err := r.db.GetContext(ctx, &total, query, doc.Category, *doc.SeriesName); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to count series: %w", err)
	}
	return prevID, nextID, total, nil
}

func (r *DocumentRepository) neighbor(ctx context.Context, doc *domain.CatalogDocument, clause string) (*string, error) {
	query := r.db.Rebind(`SELECT id FROM documents WHERE category = ? AND series_name = ? AND ` + clause + ` LIMIT 1`)

	var id string
	err := r.db.GetContext(ctx, &id, query, doc.Category, *doc.SeriesName, *doc.EpisodeNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get series neighbor: %w", err)
	}
	return &id, nil
}

func (r *DocumentRepository) SearchDocuments(ctx context.Context, query string, limit int) ([]domain.DocumentSummary, error) {
	if limit <= 0 || limit > repository.SearchLimit {
		limit = repository.SearchLimit
	}
	pattern := "%" + escapeLike(query) + "%"

	stmt := r.db.Rebind(searchQuery(r.db.DriverName()))

	documents := []domain.DocumentSummary{}
	if err := r.db.SelectContext(ctx, &documents, stmt, pattern, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	return documents, nil
}

func (r *DocumentRepository) IncrementReadCount(ctx context.Context, id string, at time.Time) error {
	query := r.db.Rebind(`UPDATE documents SET read_count = read_count + 1, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to increment read count: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to increment read count: %w", err)
	}
	if n == 0 {
		return repository.ErrDocumentNotFound
	}
	return nil
}

// searchQuery matches ASCII case-insensitively on every driver. SQLite's LIKE
// already does; Postgres needs ILIKE.
func searchQuery(driver string) string {
	op := "LIKE"
	if driver == DriverPostgres || driver == DriverPGX {
		op = "ILIKE"
	}
	return `SELECT ` + summaryColumns + ` FROM documents
		WHERE title ` + op + ` ? ESCAPE '\' OR content ` + op + ` ? ESCAPE '\' OR series_name ` + op + ` ? ESCAPE '\'
		ORDER BY read_count DESC, id
		LIMIT ?`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
