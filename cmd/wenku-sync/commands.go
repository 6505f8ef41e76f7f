package main

import (
	"fmt"
	"io"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/catalog"
	"github.com/andresuchdata/wenku/backend-go/internal/config"
	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/andresuchdata/wenku/backend-go/internal/repository/sqldb"
	"github.com/andresuchdata/wenku/backend-go/internal/storage"
	"github.com/andresuchdata/wenku/backend-go/pkg/logger"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func runSync(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	if c.Bool("migrate") {
		if err := db.Migrate(c.Context); err != nil {
			return err
		}
	}

	cfg := config.Load()
	storeCfg := cfg.Storage
	if c.IsSet("source") {
		storeCfg.Driver = c.String("source")
	}
	if c.IsSet("local-root") {
		storeCfg.LocalRoot = c.String("local-root")
	}
	store, err := storage.Open(storeCfg)
	if err != nil {
		return fmt.Errorf("failed to open object store: %w", err)
	}

	syncCfg := catalog.ReconcilerConfig{
		PageSize:       cfg.Sync.PageSize,
		Workers:        cfg.Sync.Workers,
		MaxObjectBytes: cfg.Sync.MaxObjectBytes,
	}
	if c.IsSet("page-size") {
		syncCfg.PageSize = c.Int("page-size")
	}
	if c.IsSet("workers") {
		syncCfg.Workers = c.Int("workers")
	}

	log := logger.Log.With().Str("run_id", uuid.NewString()).Logger()
	reconciler := catalog.NewReconciler(store, sqldb.NewDocumentRepository(db), syncCfg, log)

	started := time.Now()
	result, err := reconciler.Reconcile(c.Context, catalog.Options{Force: c.Bool("force")})
	if result != nil {
		if werr := writeJSON(c.App.Writer, result); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}

	log.Info().Dur("elapsed", time.Since(started)).Msg("sync complete")
	return nil
}

// parsedKey is one line of `parse` output.
type parsedKey struct {
	Key      string                 `json:"key"`
	ID       string                 `json:"id,omitempty"`
	Parsed   bool                   `json:"parsed"`
	Metadata *domain.ParsedMetadata `json:"metadata,omitempty"`
}

func parseKeys(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("at least one KEY is required", 2)
	}

	for _, key := range c.Args().Slice() {
		out := parsedKey{Key: key}
		if meta, ok := catalog.ParseKey(key); ok {
			out.Parsed = true
			out.ID = catalog.GenerateID(key)
			out.Metadata = &meta
		}
		if err := writeJSON(c.App.Writer, out); err != nil {
			return err
		}
	}
	return nil
}

func migrate(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	if err := db.Migrate(c.Context); err != nil {
		return err
	}
	logger.Log.Info().Str("driver", db.DriverName()).Msg("catalog schema applied")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}
