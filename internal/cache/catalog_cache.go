package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/config"
	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/zeebo/xxh3"
)

const (
	catalogKeyPrefix  = "wenku:catalog"
	categoriesKey     = catalogKeyPrefix + ":categories"
	documentKeyPrefix = catalogKeyPrefix + ":documents:"
)

// CatalogCache holds read-side listings between syncs. A miss is reported with
// ok=false and a nil error.
type CatalogCache interface {
	GetCategories(ctx context.Context) ([]domain.CategorySummary, bool, error)
	SetCategories(ctx context.Context, categories []domain.CategorySummary) error
	GetDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentSummary, bool, error)
	SetDocuments(ctx context.Context, filter domain.DocumentFilter, docs []domain.DocumentSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopCatalogCache struct{}

// NewCatalogCache connects to Redis when caching is enabled and falls back to a
// cache that never hits otherwise.
func NewCatalogCache(ctx context.Context, cfg config.CacheConfig) (CatalogCache, error) {
	if !cfg.Enabled {
		return NewNoopCatalogCache(), nil
	}

	client, ttl, err := newRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &redisCatalogCache{client: client, ttl: ttl}, nil
}

func NewNoopCatalogCache() CatalogCache {
	return &noopCatalogCache{}
}

func (c *redisCatalogCache) GetCategories(ctx context.Context) ([]domain.CategorySummary, bool, error) {
	var out []domain.CategorySummary
	ok, err := c.get(ctx, categoriesKey, &out)
	return out, ok, err
}

func (c *redisCatalogCache) SetCategories(ctx context.Context, categories []domain.CategorySummary) error {
	return c.set(ctx, categoriesKey, categories)
}

func (c *redisCatalogCache) GetDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentSummary, bool, error) {
	var out []domain.DocumentSummary
	ok, err := c.get(ctx, buildListKey(filter), &out)
	return out, ok, err
}

func (c *redisCatalogCache) SetDocuments(ctx context.Context, filter domain.DocumentFilter, docs []domain.DocumentSummary) error {
	return c.set(ctx, buildListKey(filter), docs)
}

func (c *redisCatalogCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, catalogKeyPrefix, scanBatchSize)
}

func (c *redisCatalogCache) get(ctx context.Context, key string, dst any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := decodePayload(payload, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisCatalogCache) set(ctx context.Context, key string, value any) error {
	payload, err := encodePayload(value)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopCatalogCache) GetCategories(ctx context.Context) ([]domain.CategorySummary, bool, error) {
	return nil, false, nil
}

func (n *noopCatalogCache) SetCategories(ctx context.Context, categories []domain.CategorySummary) error {
	return nil
}

func (n *noopCatalogCache) GetDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.DocumentSummary, bool, error) {
	return nil, false, nil
}

func (n *noopCatalogCache) SetDocuments(ctx context.Context, filter domain.DocumentFilter, docs []domain.DocumentSummary) error {
	return nil
}

func (n *noopCatalogCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func encodePayload(value any) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode catalog cache: %w", err)
	}
	return payload, nil
}

func decodePayload(payload []byte, dst any) error {
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decode catalog cache: %w", err)
	}
	return nil
}

// buildListKey hashes the filter so arbitrary category and series names make
// short, safe keys. The separator cannot appear in either field.
func buildListKey(filter domain.DocumentFilter) string {
	raw := filter.Category + "\x00" + filter.Series
	return documentKeyPrefix + strconv.FormatUint(xxh3.HashString(raw), 16)
}
