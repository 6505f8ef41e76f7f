// backend-go/internal/domain/models.go
package domain

import "time"

// CatalogDocument is one row of the documents catalog
type CatalogDocument struct {
	ID            string       `json:"id" db:"id"`
	Title         string       `json:"title" db:"title"`
	DocumentType  DocumentType `json:"type" db:"doc_type"`
	Category      string       `json:"category" db:"category"`
	SeriesName    *string      `json:"series_name" db:"series_name"`
	EpisodeNumber *int         `json:"episode_num" db:"episode_num"`
	Format        Format       `json:"format" db:"format"`
	Bucket        string       `json:"bucket" db:"bucket"`
	BucketKey     string       `json:"r2_key" db:"bucket_key"`
	Content       *string      `json:"content" db:"content"`
	FileSize      int64        `json:"file_size" db:"file_size"`
	// Audio columns link a transcript to its recording. Sync never sets them.
	AudioSeriesID   *string   `json:"audio_series_id" db:"audio_series_id"`
	AudioEpisodeNum *int      `json:"audio_episode_num" db:"audio_episode_num"`
	ReadCount       int64     `json:"read_count" db:"read_count"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentSummary is the content-less projection used by listings and search
type DocumentSummary struct {
	ID              string       `json:"id" db:"id"`
	Title           string       `json:"title" db:"title"`
	DocumentType    DocumentType `json:"type" db:"doc_type"`
	Category        string       `json:"category" db:"category"`
	SeriesName      *string      `json:"series_name" db:"series_name"`
	EpisodeNumber   *int         `json:"episode_num" db:"episode_num"`
	Format          Format       `json:"format" db:"format"`
	BucketKey       string       `json:"r2_key" db:"bucket_key"`
	FileSize        int64        `json:"file_size" db:"file_size"`
	AudioSeriesID   *string      `json:"audio_series_id" db:"audio_series_id"`
	AudioEpisodeNum *int         `json:"audio_episode_num" db:"audio_episode_num"`
	ReadCount       int64        `json:"read_count" db:"read_count"`
}

// ParsedMetadata is what a bucket key tells us about a document
type ParsedMetadata struct {
	Title         string       `json:"title"`
	DocumentType  DocumentType `json:"type"`
	Category      string       `json:"category"`
	SeriesName    *string      `json:"seriesName"`
	EpisodeNumber *int         `json:"episodeNum"`
	Format        Format       `json:"format"`
}

// NewDocument builds a catalog row for a freshly observed object.
func NewDocument(id, bucket, key string, size int64, meta ParsedMetadata, content *string, now time.Time) *CatalogDocument {
	return &CatalogDocument{
		ID:            id,
		Title:         meta.Title,
		DocumentType:  meta.DocumentType,
		Category:      meta.Category,
		SeriesName:    meta.SeriesName,
		EpisodeNumber: meta.EpisodeNumber,
		Format:        meta.Format,
		Bucket:        bucket,
		BucketKey:     key,
		Content:       content,
		FileSize:      size,
		ReadCount:     0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
