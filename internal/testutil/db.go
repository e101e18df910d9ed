// Package testutil opens migrated in-memory databases and seeds fixtures for tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/pkg/config"
)

// NewDB opens a migrated in-memory SQLite database. A single connection keeps every query on the
// same in-memory database and serializes concurrent transactions.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := config.OpenSQL(config.DatabaseConfig{
		Driver:       "sqlite",
		FilePath:     ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, true)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

var userSeq atomic.Int64

// CreateUser inserts a user with a unique username and email.
func CreateUser(t testing.TB, db *gorm.DB) *models.User {
	t.Helper()

	n := userSeq.Add(1)
	user := &models.User{
		Email:    fmt.Sprintf("user%d@example.com", n),
		Username: fmt.Sprintf("user%d", n),
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost inserts a post owned by userID.
func CreatePost(t testing.TB, db *gorm.DB, user *models.User, content string) *models.Post {
	t.Helper()

	post := &models.Post{UserID: user.ID, Content: content}
	require.NoError(t, db.Create(post).Error)
	return post
}
