package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpen_RunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taste.db")
	logger := zaptest.NewLogger(t)

	conn, err := Open(Config{Path: path}, logger)
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM migrations`).Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, conn.Close())

	// reopening must not re-apply
	conn, err = Open(Config{Path: path}, logger)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM migrations`).Scan(&n))
	assert.Equal(t, 1, n)

	var mode string
	require.NoError(t, conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestIsMemory(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{":memory:", true},
		{"file::memory:", true},
		{"file::memory:?cache=shared", true},
		{"file:taste?mode=memory&cache=shared", true},
		{"./data/taste.db", false},
		{"file:taste.db?_pragma=busy_timeout(5000)", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isMemory(tt.path), tt.path)
	}
}

func TestOpen_MemoryURIUsesOneConnection(t *testing.T) {
	conn, err := Open(Config{Path: "file::memory:"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, 1, conn.Stats().MaxOpenConnections)

	tx, err := conn.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestLoadMigrations_Ordered(t *testing.T) {
	conn, err := Open(Config{Path: ":memory:"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer conn.Close()

	migrations, err := NewMigrationManager(conn, zaptest.NewLogger(t)).LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	conn, err := Open(Config{Path: ":memory:"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer conn.Close()
	ctx := context.Background()

	boom := errors.New("boom")
	err = Transaction(ctx, conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO users (email, nickname, password_hash) VALUES ('a@b.c', 'a', 'x')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Zero(t, n)

	err = Transaction(ctx, conn, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO users (email, nickname, password_hash) VALUES ('a@b.c', 'a', 'x')`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestForeignKeysEnforced(t *testing.T) {
	conn, err := Open(Config{Path: ":memory:"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`INSERT INTO stays (user_id, lat, lng, start_time, end_time, duration_ms) VALUES (999, 0, 0, 1, 2, 1)`)
	assert.Error(t, err)
}
