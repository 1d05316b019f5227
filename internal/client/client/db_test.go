package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpenDatabase_AppliesJournalSchema(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDatabase(ctx, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.PingContext(ctx))
	for _, table := range []string{"goose_db_version", "uploads", "upload_files", "links"} {
		require.True(t, tableExists(t, db, table), table)
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))
	require.True(t, tableExists(t, db, "uploads"))
}

func TestInitDatabase_WiresJournal(t *testing.T) {
	repos, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer repos.Close()

	require.NotNil(t, repos.Journal)

	uploads, err := repos.Journal.ListUploads(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, uploads)
}

func TestOpenDatabase_BadPath(t *testing.T) {
	_, err := OpenDatabase(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "journal.db"))
	require.Error(t, err)
}
