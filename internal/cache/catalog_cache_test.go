package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/config"
	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListKey(t *testing.T) {
	a := buildListKey(domain.DocumentFilter{Category: "大安法师", Series: "阿弥陀经要解"})
	b := buildListKey(domain.DocumentFilter{Category: "大安法师", Series: "阿弥陀经要解"})
	c := buildListKey(domain.DocumentFilter{Category: "大安法师"})
	d := buildListKey(domain.DocumentFilter{Category: "大安法", Series: "师"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, c, d)
	assert.True(t, strings.HasPrefix(a, catalogKeyPrefix))
}

func TestPayloadRoundTrip(t *testing.T) {
	series := "阿弥陀经要解"
	ep := 3
	docs := []domain.DocumentSummary{{
		ID:            "a-3",
		Title:         "阿弥陀经要解 第03讲",
		DocumentType:  domain.DocumentTypeTranscript,
		Category:      "大安法师",
		SeriesName:    &series,
		EpisodeNumber: &ep,
		Format:        domain.FormatTXT,
		ReadCount:     7,
	}}

	payload, err := encodePayload(docs)
	require.NoError(t, err)

	var out []domain.DocumentSummary
	require.NoError(t, decodePayload(payload, &out))
	assert.Equal(t, docs, out)

	assert.Error(t, decodePayload([]byte("{"), &out))
}

func TestNoopCatalogCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewCatalogCache(ctx, config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, c.SetCategories(ctx, []domain.CategorySummary{{Category: "佛教经典"}}))
	_, ok, err := c.GetCategories(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.GetDocuments(ctx, domain.DocumentFilter{Category: "佛教经典"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisPassword: "secret", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:pw@cache.internal:6380/1"})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 1, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestCacheTTL(t *testing.T) {
	assert.Equal(t, defaultCacheTTL, cacheTTL(config.CacheConfig{}))
	assert.Equal(t, 30*time.Second, cacheTTL(config.CacheConfig{TTLSeconds: 30}))
}

func TestRedisCacheUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewCatalogCache(ctx, config.CacheConfig{Enabled: true, RedisHost: "127.0.0.1", RedisPort: "1"})
	assert.Error(t, err)
}
