package domain

// CategorySummary is one entry of the category listing
type CategorySummary struct {
	Category     string       `json:"category" db:"category"`
	DocumentType DocumentType `json:"type" db:"doc_type"`
	Count        int          `json:"count" db:"count"`
}

// DocumentFilter narrows a listing to a category and optionally a series
type DocumentFilter struct {
	Category string
	Series   string
}

// DocumentDetail is a single document with its position inside a series
type DocumentDetail struct {
	Document      *CatalogDocument `json:"document"`
	PrevID        *string          `json:"prevId"`
	NextID        *string          `json:"nextId"`
	TotalEpisodes int              `json:"totalEpisodes"`
}

// SyncError records one object that could not be cataloged
type SyncError struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// SyncRunResult summarizes one reconciliation pass
type SyncRunResult struct {
	Scanned  int         `json:"scanned"`
	Inserted int         `json:"inserted"`
	Updated  int         `json:"updated"`
	Skipped  int         `json:"skipped"`
	Errors   []SyncError `json:"errors"`
}

// NewSyncRunResult returns an empty result whose error list encodes as [].
func NewSyncRunResult() *SyncRunResult {
	return &SyncRunResult{Errors: []SyncError{}}
}

// AddError appends a per-object failure.
func (r *SyncRunResult) AddError(key string, err error) {
	r.Errors = append(r.Errors, SyncError{Key: key, Error: err.Error()})
}
