package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/testutil"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "dup@example.com", Username: "first"}))
	err := repo.Create(ctx, &models.User{Email: "dup@example.com", Username: "second"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUserRepository_Search(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	for _, name := range []string{"alice", "Alicia", "bob", "al_x"} {
		require.NoError(t, repo.Create(ctx, &models.User{Email: name + "@example.com", Username: name}))
	}

	total, items, err := repo.Search(ctx, "ALI", pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	// wildcards in the query match literally
	total, items, err = repo.Search(ctx, "_", pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "al_x", items[0].Username)
}

func TestUserRepository_Update(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db)
	u.Bio = "hi there"
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi there", got.Bio)
}
