package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/cache"
	"github.com/andresuchdata/wenku/backend-go/internal/catalog"
	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/andresuchdata/wenku/backend-go/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrSyncInProgress is returned when a sync is triggered while another is running.
var ErrSyncInProgress = errors.New("sync already in progress")

const defaultSyncTimeout = 10 * time.Minute

type SyncService struct {
	reconciler *catalog.Reconciler
	cache      cache.CatalogCache
	metrics    *metrics.Metrics
	timeout    time.Duration

	mu sync.Mutex
}

func NewSyncService(reconciler *catalog.Reconciler, cacheImpl cache.CatalogCache, m *metrics.Metrics, timeout time.Duration) *SyncService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopCatalogCache()
	}
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	return &SyncService{
		reconciler: reconciler,
		cache:      cacheImpl,
		metrics:    m,
		timeout:    timeout,
	}
}

// Run performs one reconcile pass. The run is detached from ctx cancellation so a
// client disconnect does not abort it halfway; it is bounded by the service
// timeout instead.
func (s *SyncService) Run(ctx context.Context, force bool) (*domain.SyncRunResult, error) {
	if !s.mu.TryLock() {
		s.metrics.RejectSync()
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	started := time.Now()

	result, err := s.reconciler.WithLogger(logger).Reconcile(runCtx, catalog.Options{Force: force})
	elapsed := time.Since(started)
	s.metrics.ObserveSync(result, elapsed, err)

	if result != nil && (result.Inserted > 0 || result.Updated > 0) {
		if cerr := s.cache.InvalidateAll(runCtx); cerr != nil {
			logger.Warn().Err(cerr).Msg("sync: cache invalidation failed")
		}
	}

	if err != nil {
		logger.Error().Err(err).Dur("elapsed", elapsed).Msg("sync run aborted")
		return result, err
	}

	logger.Info().Dur("elapsed", elapsed).Bool("force", force).Msg("sync run completed")
	return result, nil
}
