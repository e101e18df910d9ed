package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "app.db?_foreign_keys=1", sqliteDSN("app.db"))
	assert.Equal(t, ":memory:?_foreign_keys=1", sqliteDSN(":memory:"))
	assert.Equal(t, "file:app.db?cache=shared&_foreign_keys=1", sqliteDSN("file:app.db?cache=shared"))
}

func TestOpenSQL_SQLiteForeignKeysOnEveryConnection(t *testing.T) {
	db, err := OpenSQL(DatabaseConfig{
		Driver:       "sqlite",
		FilePath:     filepath.Join(t.TempDir(), "fk.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 4,
	}, true)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, db.Exec(`CREATE TABLE parents (id INTEGER PRIMARY KEY)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE children (
		id INTEGER PRIMARY KEY,
		parent_id INTEGER NOT NULL REFERENCES parents(id) ON DELETE CASCADE
	)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO parents (id) VALUES (1)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO children (id, parent_id) VALUES (1, 1)`).Error)

	// An open transaction holds one connection; everything below runs on another.
	tx := db.Begin()
	require.NoError(t, tx.Error)
	defer tx.Rollback()

	var enabled int
	require.NoError(t, db.Raw(`PRAGMA foreign_keys`).Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	require.Error(t, db.Exec(`INSERT INTO children (id, parent_id) VALUES (2, 42)`).Error)

	require.NoError(t, db.Exec(`DELETE FROM parents WHERE id = 1`).Error)
	var orphans int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM children`).Scan(&orphans).Error)
	assert.Zero(t, orphans)
}
