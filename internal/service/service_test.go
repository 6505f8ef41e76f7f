package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/cache"
	"github.com/andresuchdata/wenku/backend-go/internal/catalog"
	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/andresuchdata/wenku/backend-go/internal/metrics"
	"github.com/andresuchdata/wenku/backend-go/internal/repository"
	"github.com/andresuchdata/wenku/backend-go/internal/storage"
	"github.com/andresuchdata/wenku/backend-go/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	series  = "阿弥陀经要解"
	folder  = "大安法师/X/01 阿弥陀经要解 10讲/"
	keyEp1  = folder + "阿弥陀经要解 第01讲.txt"
	keyEp2  = folder + "阿弥陀经要解 第02讲.txt"
	keyEp3  = folder + "阿弥陀经要解 第03讲.txt"
	keySutr = "佛教经典/金刚经.txt"
	keyPDF  = "印光大师文钞/印光大师全集.pdf"
)

func seededStore() *testutil.MemoryStore {
	store := testutil.NewMemoryStore("jingdianwendang")
	store.PutString(keyEp1, "第一讲 如是我闻")
	store.PutString(keyEp2, "第二讲")
	store.PutString(keyEp3, "第三讲")
	store.PutString(keySutr, "如是我闻 一时佛在舍卫国")
	store.PutString(keyPDF, "%PDF")
	return store
}

// spyCache counts invalidations and serves whatever was last stored.
type spyCache struct {
	mu          sync.Mutex
	categories  []domain.CategorySummary
	docs        map[domain.DocumentFilter][]domain.DocumentSummary
	invalidated int
}

func newSpyCache() *spyCache {
	return &spyCache{docs: map[domain.DocumentFilter][]domain.DocumentSummary{}}
}

func (c *spyCache) GetCategories(context.Context) ([]domain.CategorySummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories, c.categories != nil, nil
}

func (c *spyCache) SetCategories(_ context.Context, v []domain.CategorySummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = v
	return nil
}

func (c *spyCache) GetDocuments(_ context.Context, f domain.DocumentFilter) ([]domain.DocumentSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.docs[f]
	return v, ok, nil
}

func (c *spyCache) SetDocuments(_ context.Context, f domain.DocumentFilter, v []domain.DocumentSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[f] = v
	return nil
}

func (c *spyCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = nil
	c.docs = map[domain.DocumentFilter][]domain.DocumentSummary{}
	c.invalidated++
	return nil
}

var _ cache.CatalogCache = (*spyCache)(nil)

type fixture struct {
	store   *testutil.MemoryStore
	repo    repository.CatalogRepository
	cache   *spyCache
	metrics *metrics.Metrics
	library *LibraryService
	sync    *SyncService
}

func newFixture(t *testing.T, store storage.ObjectStore) *fixture {
	t.Helper()
	_, repo := testutil.OpenTestDB(t)
	spy := newSpyCache()
	m := metrics.New(prometheus.NewRegistry())
	rec := catalog.NewReconciler(store, repo, catalog.ReconcilerConfig{}, zerolog.Nop())

	f := &fixture{
		repo:    repo,
		cache:   spy,
		metrics: m,
		library: NewLibraryService(repo, spy),
		sync:    NewSyncService(rec, spy, m, time.Minute),
	}
	if ms, ok := store.(*testutil.MemoryStore); ok {
		f.store = ms
	}
	return f
}

func TestLibraryAfterSync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, seededStore())

	res, err := f.sync.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Inserted)
	assert.Equal(t, 1, f.cache.invalidated)

	categories, err := f.library.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, domain.CategorySummary{Category: "佛教经典", DocumentType: domain.DocumentTypeSutra, Count: 1}, findCategory(categories, "佛教经典"))
	assert.Equal(t, 3, findCategory(categories, "大安法师").Count)

	docs, err := f.library.Documents(ctx, domain.DocumentFilter{Category: "大安法师", Series: series})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, catalog.GenerateID(keyEp1), docs[0].ID)
	assert.Equal(t, catalog.GenerateID(keyEp3), docs[2].ID)

	detail, err := f.library.Document(ctx, catalog.GenerateID(keyEp2))
	require.NoError(t, err)
	require.NotNil(t, detail.PrevID)
	require.NotNil(t, detail.NextID)
	assert.Equal(t, catalog.GenerateID(keyEp1), *detail.PrevID)
	assert.Equal(t, catalog.GenerateID(keyEp3), *detail.NextID)
	assert.Equal(t, 3, detail.TotalEpisodes)

	standalone, err := f.library.Document(ctx, catalog.GenerateID(keySutr))
	require.NoError(t, err)
	assert.Nil(t, standalone.PrevID)
	assert.Nil(t, standalone.NextID)
	assert.Zero(t, standalone.TotalEpisodes)
}

func findCategory(list []domain.CategorySummary, name string) domain.CategorySummary {
	for _, c := range list {
		if c.Category == name {
			return c
		}
	}
	return domain.CategorySummary{}
}

func TestLibraryDocumentsUsesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, seededStore())
	_, err := f.sync.Run(ctx, false)
	require.NoError(t, err)

	filter := domain.DocumentFilter{Category: "佛教经典"}
	first, err := f.library.Documents(ctx, filter)
	require.NoError(t, err)
	require.Len(t, first, 1)

	cached := []domain.DocumentSummary{{ID: "from-cache"}}
	require.NoError(t, f.cache.SetDocuments(ctx, filter, cached))

	second, err := f.library.Documents(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, cached, second)
}

func TestLibraryValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, seededStore())

	_, err := f.library.Documents(ctx, domain.DocumentFilter{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.library.Document(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.library.Document(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)

	assert.ErrorIs(t, f.library.RecordRead(ctx, ""), ErrInvalidArgument)
	assert.ErrorIs(t, f.library.RecordRead(ctx, "missing"), repository.ErrDocumentNotFound)

	docs, err := f.library.Search(ctx, "   ")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestLibrarySearchAndReadCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, seededStore())
	_, err := f.sync.Run(ctx, false)
	require.NoError(t, err)

	require.NoError(t, f.library.RecordRead(ctx, catalog.GenerateID(keySutr)))
	require.NoError(t, f.library.RecordRead(ctx, catalog.GenerateID(keySutr)))

	docs, err := f.library.Search(ctx, "如是我闻")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, catalog.GenerateID(keySutr), docs[0].ID)
	assert.Equal(t, int64(2), docs[0].ReadCount)
}

func TestSyncSkipsInvalidationWhenNothingChanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, seededStore())

	_, err := f.sync.Run(ctx, false)
	require.NoError(t, err)
	res, err := f.sync.Run(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Skipped)
	assert.Equal(t, 1, f.cache.invalidated)

	m := &dto.Metric{}
	require.NoError(t, f.metrics.SyncRuns.WithLabelValues(metrics.RunSucceeded).Write(m))
	assert.Equal(t, 2.0, m.GetCounter().GetValue())
}

func TestSyncSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newFixture(t, seededStore())

	res, err := f.sync.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Inserted)
}

// blockingStore holds the first listing until release is closed.
type blockingStore struct {
	*testutil.MemoryStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) List(ctx context.Context, opts storage.ListOptions) (*storage.ListPage, error) {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.MemoryStore.List(ctx, opts)
}

func TestSyncRejectsConcurrentRun(t *testing.T) {
	store := &blockingStore{
		MemoryStore: seededStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	f := newFixture(t, store)

	done := make(chan error, 1)
	go func() {
		_, err := f.sync.Run(context.Background(), false)
		done <- err
	}()
	<-store.entered

	_, err := f.sync.Run(context.Background(), true)
	assert.True(t, errors.Is(err, ErrSyncInProgress))

	close(store.release)
	require.NoError(t, <-done)

	m := &dto.Metric{}
	require.NoError(t, f.metrics.SyncRuns.WithLabelValues(metrics.RunRejected).Write(m))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())

	// the lock is released afterwards
	_, err = f.sync.Run(context.Background(), false)
	assert.NoError(t, err)
}

func TestLibrarySearchKeepsSurroundingSpaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, seededStore())
	_, err := f.sync.Run(ctx, false)
	require.NoError(t, err)

	trimmed, err := f.library.Search(ctx, "我闻")
	require.NoError(t, err)
	assert.Len(t, trimmed, 2)

	// only the sutra has a space after the phrase
	spaced, err := f.library.Search(ctx, "我闻 ")
	require.NoError(t, err)
	require.Len(t, spaced, 1)
	assert.Equal(t, catalog.GenerateID(keySutr), spaced[0].ID)
}
