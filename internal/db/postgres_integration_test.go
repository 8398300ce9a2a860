//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Run with: DATABASE_URL=postgres://... go test -tags integration ./internal/db/...
func TestPostgres_Contract(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	runStoreContract(t, func(t *testing.T) Store {
		db, err := Connect(ctx, url)
		require.NoError(t, err)
		require.NoError(t, db.Migrate(ctx))
		t.Cleanup(func() {
			_, _ = db.pool.Exec(ctx, `TRUNCATE users, resumes, optimization_records, chat_conversations, chat_messages CASCADE`)
			_ = db.Close()
		})
		return db
	})
}

func TestPostgres_MigrationVersion(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, url)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate(ctx))
	version, err := db.MigrationVersion(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, version, int64(1))
}
