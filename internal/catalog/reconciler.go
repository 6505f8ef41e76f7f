package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/andresuchdata/wenku/backend-go/internal/repository"
	"github.com/andresuchdata/wenku/backend-go/internal/storage"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers        = 4
	DefaultMaxObjectBytes = 32 << 20
)

// Options controls a single reconcile run.
type Options struct {
	// Force re-reads objects that are already cataloged and overwrites their content.
	Force bool
}

// ReconcilerConfig tunes listing and fetching. Zero values fall back to defaults.
type ReconcilerConfig struct {
	PageSize       int
	Workers        int
	MaxObjectBytes int64
}

// Reconciler brings the catalog in line with the objects in a bucket.
type Reconciler struct {
	store  storage.ObjectStore
	repo   repository.CatalogWriter
	cfg    ReconcilerConfig
	now    func() time.Time
	logger zerolog.Logger
}

func NewReconciler(store storage.ObjectStore, repo repository.CatalogWriter, cfg ReconcilerConfig, logger zerolog.Logger) *Reconciler {
	if cfg.PageSize <= 0 {
		cfg.PageSize = storage.DefaultPageSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxObjectBytes <= 0 {
		cfg.MaxObjectBytes = DefaultMaxObjectBytes
	}

	return &Reconciler{
		store:  store,
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source used for created_at and updated_at.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// WithLogger returns a copy of the reconciler logging through l.
func (r *Reconciler) WithLogger(l zerolog.Logger) *Reconciler {
	cp := *r
	cp.logger = l
	return &cp
}

// candidate is one listed object that needs to be read and written.
type candidate struct {
	obj      storage.ObjectInfo
	meta     domain.ParsedMetadata
	existing bool

	content *string
	err     error
}

// Reconcile walks the whole bucket once. Per-object failures are collected in the
// result; an error is returned only when the run could not continue, together
// with the counts reached so far.
func (r *Reconciler) Reconcile(ctx context.Context, opts Options) (*domain.SyncRunResult, error) {
	result := domain.NewSyncRunResult()

	existing, err := r.repo.ExistingKeys(ctx)
	if err != nil {
		return result, fmt.Errorf("load existing keys: %w", err)
	}

	r.logger.Info().
		Str("bucket", r.store.Bucket()).
		Bool("force", opts.Force).
		Int("existing", len(existing)).
		Msg("starting catalog sync")

	pages := 0
	err = storage.Walk(ctx, r.store, "", r.cfg.PageSize, func(page []storage.ObjectInfo) error {
		pages++
		r.processPage(ctx, page, existing, opts, result)
		r.logger.Debug().
			Int("page", pages).
			Int("objects", len(page)).
			Int("scanned", result.Scanned).
			Msg("page reconciled")
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("list objects: %w", err)
	}

	r.logger.Info().
		Int("scanned", result.Scanned).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("catalog sync finished")

	return result, nil
}

func (r *Reconciler) processPage(ctx context.Context, page []storage.ObjectInfo, existing map[string]string, opts Options, result *domain.SyncRunResult) {
	work := make([]*candidate, 0, len(page))
	for _, obj := range page {
		result.Scanned++
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}

		meta, ok := ParseKey(obj.Key)
		if !ok {
			result.Skipped++
			continue
		}

		_, known := existing[obj.Key]
		if known && !opts.Force {
			result.Skipped++
			continue
		}
		work = append(work, &candidate{obj: obj, meta: meta, existing: known})
	}

	r.fetch(ctx, work)

	for _, c := range work {
		if c.err != nil {
			r.fail(result, c.obj.Key, c.err)
			continue
		}

		now := r.now()
		if c.existing {
			if err := r.repo.UpdateContent(ctx, c.obj.Key, c.content, now); err != nil {
				r.fail(result, c.obj.Key, err)
				continue
			}
			result.Updated++
			continue
		}

		doc := domain.NewDocument(GenerateID(c.obj.Key), r.store.Bucket(), c.obj.Key, c.obj.Size, c.meta, c.content, now)
		if err := r.repo.InsertDocument(ctx, doc); err != nil {
			r.fail(result, c.obj.Key, err)
			continue
		}
		existing[c.obj.Key] = doc.ID
		result.Inserted++
	}
}

// fetch reads and decodes text candidates concurrently. Errors stay on the
// candidate so one bad object never cancels its siblings.
func (r *Reconciler) fetch(ctx context.Context, work []*candidate) {
	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)

	for _, c := range work {
		if !c.meta.Format.IsText() {
			continue
		}
		if c.obj.Size > r.cfg.MaxObjectBytes {
			c.err = fmt.Errorf("object size %d exceeds limit of %d bytes", c.obj.Size, r.cfg.MaxObjectBytes)
			continue
		}

		g.Go(func() error {
			c.content, c.err = r.readText(ctx, c.obj.Key)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Reconciler) readText(ctx context.Context, key string) (*string, error) {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		r.logger.Warn().Str("key", key).Msg("object disappeared before it could be read")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	if int64(len(raw)) > r.cfg.MaxObjectBytes {
		return nil, fmt.Errorf("object size %d exceeds limit of %d bytes", len(raw), r.cfg.MaxObjectBytes)
	}

	text, enc := Decode(raw)
	r.logger.Debug().Str("key", key).Str("encoding", string(enc)).Int("bytes", len(raw)).Msg("decoded text object")
	return &text, nil
}

func (r *Reconciler) fail(result *domain.SyncRunResult, key string, err error) {
	r.logger.Error().Err(err).Str("key", key).Msg("failed to reconcile object")
	result.AddError(key, err)
}
