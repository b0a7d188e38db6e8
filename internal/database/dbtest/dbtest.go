// Package dbtest opens migrated databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taiwoajasa245/reading-engine-api/internal/corpus"
	"github.com/taiwoajasa245/reading-engine-api/internal/database"
)

// SQLite returns a migrated database in a fresh temp dir, closed when the test ends.
func SQLite(t *testing.T) database.Service {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "reading.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Postgres starts a throwaway postgres container. The test is skipped in -short mode and
// when no container provider is reachable.
func Postgres(t *testing.T) database.Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"docker.io/postgres:16-alpine",
		postgres.WithDatabase("reading_engine"),
		postgres.WithUsername("reader"),
		postgres.WithPassword("reader"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.OpenPostgres(connStr, "reading_engine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// InsertVerses writes verses with their explicit ids. Book ids must exist in the seeded books table.
func InsertVerses(t *testing.T, db database.Service, verses []corpus.Verse) {
	t.Helper()

	ctx := context.Background()
	for _, v := range verses {
		_, err := db.DB().ExecContext(ctx,
			`INSERT INTO verses (id, book_id, chapter_number, verse_number, text) VALUES ($1, $2, $3, $4, $5)`,
			v.ID, v.Ref.Book, v.Ref.Chapter, v.Ref.Verse, v.Text)
		require.NoError(t, err)
	}
}

// Corpus inserts verses and loads them back through the repository.
func Corpus(t *testing.T, db database.Service, verses []corpus.Verse) *corpus.Corpus {
	t.Helper()

	InsertVerses(t, db, verses)
	c, err := corpus.LoadFromRepository(context.Background(), corpus.NewRepository(db))
	require.NoError(t, err)
	return c
}
