package testutil

import (
	"context"
	"testing"

	"github.com/andresuchdata/wenku/backend-go/internal/repository/sqldb"
	"github.com/stretchr/testify/require"
)

// OpenTestDB returns a migrated in-memory SQLite catalog that is closed when the
// test ends.
func OpenTestDB(t *testing.T) (*sqldb.DB, *sqldb.DocumentRepository) {
	t.Helper()

	db, err := sqldb.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db, sqldb.NewDocumentRepository(db)
}
