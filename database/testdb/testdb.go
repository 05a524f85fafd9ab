// Package testdb builds migrated in-memory databases for tests.
package testdb

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rasa-cafe/config"
	"rasa-cafe/database"
)

// New returns an isolated sqlite database with every table migrated and the
// default rows in place. It is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.Database{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.EnsureDefaults(db))
	return db
}
