package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andresuchdata/wenku/backend-go/internal/config"
	"github.com/andresuchdata/wenku/backend-go/internal/repository/sqldb"
	"github.com/andresuchdata/wenku/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Postgres connection string; overrides the DB_* settings",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newSQLiteFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "sqlite",
		Usage:   "Path of a SQLite catalog to use instead of Postgres",
		EnvVars: []string{"DB_SQLITE_PATH"},
	}
}

func initDB(c *cli.Context) error {
	dbCfg := config.Load().Database
	switch {
	case c.IsSet("sqlite"):
		dbCfg.Driver = sqldb.DriverSQLite
		dbCfg.SQLitePath = c.String("sqlite")
	case c.String("db-url") != "":
		dbCfg.Driver = sqldb.DriverPGX
		dbCfg.URL = c.String("db-url")
	}

	db, err := sqldb.Open(&dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*sqldb.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sqldb.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*sqldb.DB)
	if !ok || db == nil {
		return nil, errors.New("database not initialized")
	}
	return db, nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "wenku-sync",
		Usage: "Reconcile the document catalog with the object bucket",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "console",
				EnvVars: []string{"LOG_FORMAT"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(c.String("log-level"), c.String("log-format"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Scan the bucket and insert or refresh catalog rows",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newSQLiteFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-read cataloged objects and overwrite their content",
					},
					&cli.StringFlag{
						Name:    "source",
						Usage:   "Object store driver: s3 or local",
						EnvVars: []string{"STORAGE_DRIVER"},
					},
					&cli.StringFlag{
						Name:    "local-root",
						Usage:   "Directory served as the bucket when --source=local",
						EnvVars: []string{"STORAGE_LOCAL_ROOT"},
					},
					&cli.IntFlag{
						Name:    "page-size",
						Usage:   "Objects per listing page",
						EnvVars: []string{"SYNC_PAGE_SIZE"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Concurrent object reads",
						EnvVars: []string{"SYNC_WORKERS"},
					},
					&cli.BoolFlag{
						Name:  "migrate",
						Usage: "Apply the catalog schema before syncing",
						Value: true,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runSync,
			},
			{
				Name:      "parse",
				Usage:     "Print the metadata and id derived from bucket keys",
				ArgsUsage: "KEY...",
				Action:    parseKeys,
			},
			{
				Name:  "migrate",
				Usage: "Create the catalog schema",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newSQLiteFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: migrate,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("wenku-sync failed")
	}
}
