package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/warbler/config"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "warbler.db?_foreign_keys=on", sqliteDSN("warbler.db"))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=on", sqliteDSN("file::memory:?cache=shared"))
	assert.Equal(t, "warbler.db?_fk=1", sqliteDSN("warbler.db?_fk=1"))
}

func TestOpen_ForeignKeysOnEveryConnection(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "fk.db")
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn, LogLevel: "silent", MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	ctx := context.Background()

	// 同时持有两个连接，确保第二个是新建的
	c1, err := sqlDB.Conn(ctx)
	require.NoError(t, err)
	defer c1.Close()
	c2, err := sqlDB.Conn(ctx)
	require.NoError(t, err)
	defer c2.Close()

	for _, c := range []*sql.Conn{c1, c2} {
		var on int
		require.NoError(t, c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on))
		assert.Equal(t, 1, on)
	}
}

func TestOpenMemory_RejectsOrphanMessage(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	err = db.Exec("INSERT INTO messages (text, user_id, timestamp) VALUES ('x', 424242, CURRENT_TIMESTAMP)").Error
	assert.Error(t, err)
}
