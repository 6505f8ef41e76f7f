package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by Get when the key no longer exists.
var ErrObjectNotFound = errors.New("object not found")

// DefaultPageSize is the listing page size used when none is configured.
const DefaultPageSize = 500

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ListOptions selects one page of a listing.
type ListOptions struct {
	Prefix string
	Cursor string
	Limit  int
}

// ListPage is one page of objects in key order.
type ListPage struct {
	Objects   []ObjectInfo
	Truncated bool
	Cursor    string
}

// ObjectStore captures the read operations the catalog sync needs.
type ObjectStore interface {
	Bucket() string
	List(ctx context.Context, opts ListOptions) (*ListPage, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// Walk lists every object under prefix page by page, handing each page to fn.
func Walk(ctx context.Context, store ObjectStore, prefix string, pageSize int, fn func(page []ObjectInfo) error) error {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := store.List(ctx, ListOptions{Prefix: prefix, Cursor: cursor, Limit: pageSize})
		if err != nil {
			return err
		}
		if err := fn(page.Objects); err != nil {
			return err
		}
		if !page.Truncated || page.Cursor == "" {
			return nil
		}
		cursor = page.Cursor
	}
}

// Paginate cuts a key-sorted listing into the page that starts after opts.Cursor.
func Paginate(all []ObjectInfo, opts ListOptions) *ListPage {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	start := 0
	if opts.Cursor != "" {
		for start < len(all) && all[start].Key <= opts.Cursor {
			start++
		}
	}

	end := start + limit
	page := &ListPage{}
	if end < len(all) {
		page.Truncated = true
	} else {
		end = len(all)
	}
	page.Objects = append([]ObjectInfo(nil), all[start:end]...)
	if page.Truncated && len(page.Objects) > 0 {
		page.Cursor = page.Objects[len(page.Objects)-1].Key
	}
	return page
}
