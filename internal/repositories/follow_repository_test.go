package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/testutil"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

func TestFollowRepository_CreateAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateUser(t, db), testutil.CreateUser(t, db)

	_, err := repo.Find(ctx, a.ID, b.ID)
	require.ErrorIs(t, err, ErrNotFound)

	created, err := repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowPending, created.AcceptStatus)
	assert.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.Find(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// the reverse direction is a different pair
	_, err = repo.Find(ctx, b.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowRepository_CreateDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateUser(t, db), testutil.CreateUser(t, db)

	_, err := repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = repo.Create(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFollowRepository_CreateUnknownUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormFollowRepository(db)
	a := testutil.CreateUser(t, db)

	_, err := repo.Create(context.Background(), a.ID, uuid.New())
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestFollowRepository_Accept(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateUser(t, db), testutil.CreateUser(t, db)

	_, err := repo.Accept(ctx, a.ID, b.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)

	accepted, err := repo.Accept(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowAccepted, accepted.AcceptStatus)

	// only a pending row can be accepted
	_, err = repo.Accept(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowRepository_DeleteMatchesStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateUser(t, db), testutil.CreateUser(t, db)

	_, err := repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, a.ID, b.ID, models.FollowAccepted)
	require.NoError(t, err)
	assert.False(t, deleted, "a pending request must survive an unfollow")

	_, err = repo.Find(ctx, a.ID, b.ID)
	require.NoError(t, err)

	deleted, err = repo.Delete(ctx, a.ID, b.ID, models.FollowPending)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, a.ID, b.ID, models.FollowPending)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestFollowRepository_Lists(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()
	target := testutil.CreateUser(t, db)

	var accepted []uuid.UUID
	for i := 0; i < 3; i++ {
		u := testutil.CreateUser(t, db)
		_, err := repo.Create(ctx, u.ID, target.ID)
		require.NoError(t, err)
		_, err = repo.Accept(ctx, u.ID, target.ID)
		require.NoError(t, err)
		accepted = append(accepted, u.ID)
	}
	pending := testutil.CreateUser(t, db)
	_, err := repo.Create(ctx, pending.ID, target.ID)
	require.NoError(t, err)

	p := pagination.Params{Limit: 10}

	total, followers, err := repo.ListFollowers(ctx, target.ID, p)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, followers, 3)
	for i, f := range followers {
		assert.Equal(t, accepted[i], f.ID)
	}

	total, requests, err := repo.ListPendingRequests(ctx, target.ID, p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, requests, 1)
	assert.Equal(t, pending.ID, requests[0].ID)

	total, followings, err := repo.ListFollowings(ctx, accepted[0], p)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, followings, 1)
	assert.Equal(t, target.ID, followings[0].ID)

	total, page, err := repo.ListFollowers(ctx, target.ID, pagination.Params{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, accepted[2], page[0].ID)

	count, err := repo.CountFollowers(ctx, target.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestFollowRepository_Status(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateUser(t, db), testutil.CreateUser(t, db)

	out, in, err := repo.Status(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStateNone, out)
	assert.Equal(t, models.FollowStateNone, in)

	_, err = repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = repo.Create(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = repo.Accept(ctx, b.ID, a.ID)
	require.NoError(t, err)

	out, in, err = repo.Status(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatePending, out)
	assert.Equal(t, models.FollowStateAccepted, in)
}

func TestFollowRepository_CascadeOnUserDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGormFollowRepository(db)
	users := NewGormUserRepository(db)
	ctx := context.Background()
	a, b, c := testutil.CreateUser(t, db), testutil.CreateUser(t, db), testutil.CreateUser(t, db)

	_, err := repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = repo.Create(ctx, c.ID, a.ID)
	require.NoError(t, err)
	_, err = repo.Create(ctx, c.ID, b.ID)
	require.NoError(t, err)

	deleted, err := users.Delete(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	var remaining []models.Follow
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, c.ID, remaining[0].FollowingUserID)
	assert.Equal(t, b.ID, remaining[0].FollowedUserID)
}
