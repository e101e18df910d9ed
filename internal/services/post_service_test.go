package services

import (
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/repositories"
	"github.com/anonto42/spire/backend/internal/testutil"
	"github.com/anonto42/spire/backend/pkg/pagination"
	"github.com/anonto42/spire/backend/pkg/storage"
)

func newPostService(t *testing.T) (*PostService, *gorm.DB, *storage.LocalStorage, *recordingNotifications) {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	notes := &recordingNotifications{}
	svc := NewPostService(db,
		repositories.NewGormPostRepository(db),
		repositories.NewGormLikeRepository(db),
		store,
		NewNotificationService(notes),
	)
	return svc, db, store, notes
}

func TestPostService_OwnershipEnforced(t *testing.T) {
	svc, db, _, _ := newPostService(t)
	ctx := context.Background()
	owner, other := testutil.CreateUser(t, db), testutil.CreateUser(t, db)

	post, err := svc.CreatePost(ctx, owner.ID, models.CreatePostRequest{Content: "first"})
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, post.ID, other.ID, models.UpdatePostRequest{Content: "hijack"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.DeletePost(ctx, post.ID, other.ID), ErrForbidden)

	updated, err := svc.UpdatePost(ctx, post.ID, owner.ID, models.UpdatePostRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, svc.DeletePost(ctx, post.ID, owner.ID))
	_, err = svc.GetPost(ctx, post.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdatePost(ctx, uuid.New(), owner.ID, models.UpdatePostRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostService_CreatePostUnknownAuthor(t *testing.T) {
	svc, _, _, _ := newPostService(t)

	_, err := svc.CreatePost(context.Background(), uuid.New(), models.CreatePostRequest{Content: "ghost"})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestPostService_TogglePostLike(t *testing.T) {
	svc, db, _, notes := newPostService(t)
	ctx := context.Background()
	owner, fan := testutil.CreateUser(t, db), testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, owner, "likeable")

	like, err := svc.TogglePostLike(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, like.IsLiked)

	view, err := svc.GetPost(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.LikeCnt)
	assert.True(t, view.IsLiked)

	like, err = svc.TogglePostLike(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, like.IsLiked)

	view, err = svc.GetPost(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.Zero(t, view.LikeCnt)
	assert.False(t, view.IsLiked)

	_, err = svc.TogglePostLike(ctx, uuid.New(), fan.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []models.NotificationType{models.NotificationPostLike}, notes.types())
}

func TestPostService_UploadImage(t *testing.T) {
	svc, db, store, _ := newPostService(t)
	ctx := context.Background()
	owner, other := testutil.CreateUser(t, db), testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, owner, "with picture")

	req := models.UploadImageRequest{Image: base64.StdEncoding.EncodeToString([]byte("fake-png"))}

	_, err := svc.UploadImage(ctx, post.ID, other.ID, req)
	assert.ErrorIs(t, err, ErrForbidden)

	image, err := svc.UploadImage(ctx, post.ID, owner.ID, req)
	require.NoError(t, err)
	prefix := "/uploads/post_image/" + post.ID.String() + "/"
	require.True(t, strings.HasPrefix(image.ImageURL, prefix), image.ImageURL)

	rc, err := store.Open(ctx, strings.TrimPrefix(image.ImageURL, "/uploads/"))
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "fake-png", string(data))

	view, err := svc.GetPost(ctx, post.ID, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, view.Images, 1)
	assert.Equal(t, image.ImageURL, view.Images[0].ImageURL)

	_, err = svc.UploadImage(ctx, post.ID, owner.ID, models.UploadImageRequest{Image: "%%%"})
	assert.ErrorIs(t, err, ErrBadRequest)

	// deleting the post removes its stored files
	require.NoError(t, svc.DeletePost(ctx, post.ID, owner.ID))
	_, err = store.Open(ctx, strings.TrimPrefix(image.ImageURL, "/uploads/"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// queryingStore runs a query on the shared pool during Put. The test pool has a single
// connection, so the query only succeeds when no transaction is open.
type queryingStore struct {
	*storage.LocalStorage
	db       *gorm.DB
	queryErr error
}

func (s *queryingStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	qctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	var one int
	s.queryErr = s.db.WithContext(qctx).Raw("SELECT 1").Scan(&one).Error
	return s.LocalStorage.Put(ctx, key, r, size, contentType)
}

func TestPostService_UploadImageOutsideTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	local, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	store := &queryingStore{LocalStorage: local, db: db}
	svc := NewPostService(db,
		repositories.NewGormPostRepository(db),
		repositories.NewGormLikeRepository(db),
		store,
		NewNotificationService(&recordingNotifications{}),
	)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db)
	post := testutil.CreatePost(t, db, owner, "with picture")

	req := models.UploadImageRequest{Image: base64.StdEncoding.EncodeToString([]byte("fake-png"))}
	image, err := svc.UploadImage(ctx, post.ID, owner.ID, req)
	require.NoError(t, err)
	require.NoError(t, store.queryErr)

	view, err := svc.GetPost(ctx, post.ID, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, view.Images, 1)
	assert.Equal(t, image.ImageURL, view.Images[0].ImageURL)
}

func TestPostService_GetUserPosts(t *testing.T) {
	svc, db, _, _ := newPostService(t)
	ctx := context.Background()
	a, b := testutil.CreateUser(t, db), testutil.CreateUser(t, db)
	testutil.CreatePost(t, db, a, "a1")
	testutil.CreatePost(t, db, a, "a2")
	testutil.CreatePost(t, db, b, "b1")

	page, err := svc.GetUserPosts(ctx, a.ID, b.ID, pagination.Params{Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, 1, *page.NextCursor)

	page, err = svc.GetPosts(ctx, uuid.Nil, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Nil(t, page.NextCursor)
}

func TestPostService_GetFeed(t *testing.T) {
	svc, db, _, _ := newPostService(t)
	ctx := context.Background()
	me, followed, pending, stranger := testutil.CreateUser(t, db), testutil.CreateUser(t, db), testutil.CreateUser(t, db), testutil.CreateUser(t, db)

	require.NoError(t, db.Create(&models.Follow{FollowingUserID: me.ID, FollowedUserID: followed.ID, AcceptStatus: models.FollowAccepted}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowingUserID: me.ID, FollowedUserID: pending.ID, AcceptStatus: models.FollowPending}).Error)

	testutil.CreatePost(t, db, me, "mine")
	testutil.CreatePost(t, db, followed, "followed")
	testutil.CreatePost(t, db, pending, "pending")
	testutil.CreatePost(t, db, stranger, "stranger")

	page, err := svc.GetFeed(ctx, me.ID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	var contents []string
	for _, item := range page.Items {
		contents = append(contents, item.Content)
	}
	assert.ElementsMatch(t, []string{"mine", "followed"}, contents)
}
