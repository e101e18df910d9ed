package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/repositories"
	"github.com/anonto42/spire/backend/pkg/logger"
	"github.com/anonto42/spire/backend/pkg/pagination"
	"github.com/anonto42/spire/backend/pkg/storage"
)

type PostService struct {
	db            *gorm.DB
	posts         repositories.PostRepository
	likes         repositories.LikeRepository
	store         storage.Storage
	notifications *NotificationService
	now           func() time.Time
}

func NewPostService(db *gorm.DB, posts repositories.PostRepository, likes repositories.LikeRepository, store storage.Storage, notifications *NotificationService) *PostService {
	return &PostService{
		db:            db,
		posts:         posts,
		likes:         likes,
		store:         store,
		notifications: notifications,
		now:           time.Now,
	}
}

// GetPosts pages through every post, newest first.
func (s *PostService) GetPosts(ctx context.Context, viewer uuid.UUID, p pagination.Params) (pagination.Page[models.PostView], error) {
	return s.list(ctx, nil, viewer, p)
}

// GetUserPosts pages through the posts of owner, newest first.
func (s *PostService) GetUserPosts(ctx context.Context, owner, viewer uuid.UUID, p pagination.Params) (pagination.Page[models.PostView], error) {
	return s.list(ctx, &owner, viewer, p)
}

// GetFeed pages through the caller's posts and those of the users they follow.
func (s *PostService) GetFeed(ctx context.Context, caller uuid.UUID, p pagination.Params) (pagination.Page[models.PostView], error) {
	return s.page(ctx, p, func(posts repositories.PostRepository) (int64, []models.PostView, error) {
		return posts.ListFeed(ctx, caller, p)
	})
}

func (s *PostService) list(ctx context.Context, owner *uuid.UUID, viewer uuid.UUID, p pagination.Params) (pagination.Page[models.PostView], error) {
	return s.page(ctx, p, func(posts repositories.PostRepository) (int64, []models.PostView, error) {
		return posts.ListViews(ctx, owner, viewer, p)
	})
}

func (s *PostService) page(ctx context.Context, p pagination.Params, list func(repositories.PostRepository) (int64, []models.PostView, error)) (pagination.Page[models.PostView], error) {
	var (
		total int64
		items []models.PostView
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		total, items, err = list(s.posts.WithTx(tx))
		return err
	})
	if err != nil {
		return pagination.Page[models.PostView]{}, err
	}
	return pagination.NewPage(total, items, p), nil
}

func (s *PostService) GetPost(ctx context.Context, id, viewer uuid.UUID) (*models.PostView, error) {
	var view *models.PostView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		view, err = s.posts.WithTx(tx).GetView(ctx, id, viewer)
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("post")
		}
		return err
	})
	return view, err
}

func (s *PostService) CreatePost(ctx context.Context, caller uuid.UUID, req models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{UserID: caller, Content: req.Content}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := s.posts.WithTx(tx).Create(ctx, post)
		if errors.Is(err, repositories.ErrConstraint) {
			return badRequest("post author does not exist")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id, caller uuid.UUID, req models.UpdatePostRequest) (*models.PostView, error) {
	var view *models.PostView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)
		if _, err := s.ownedPost(ctx, posts, id, caller); err != nil {
			return err
		}
		if err := posts.UpdateContent(ctx, id, req.Content); err != nil {
			return err
		}

		var err error
		view, err = posts.GetView(ctx, id, caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DeletePost removes the post with its images, comments and likes. Stored image files are
// removed after the commit on a best-effort basis.
func (s *PostService) DeletePost(ctx context.Context, id, caller uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)
		if _, err := s.ownedPost(ctx, posts, id, caller); err != nil {
			return err
		}
		return posts.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if err := s.store.DeletePrefix(ctx, imagePrefix(id)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("post_id", id.String()).Msg("failed to delete post images from storage")
	}
	return nil
}

// UploadImage decodes a base64 image, stores it under post_image/{post_id}/{timestamp} and
// attaches it to the caller's post.
func (s *PostService) UploadImage(ctx context.Context, postID, caller uuid.UUID, req models.UploadImageRequest) (*models.Image, error) {
	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil || len(data) == 0 {
		return nil, badRequest("image is not valid base64")
	}
	ext := req.FileExtension
	if ext == "" {
		ext = "png"
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.ownedPost(ctx, s.posts.WithTx(tx), postID, caller)
		return err
	})
	if err != nil {
		return nil, err
	}

	// No transaction is open while the file uploads.
	key := imagePrefix(postID) + strconv.FormatInt(s.now().UTC().UnixNano(), 10)
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "image/"+ext); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	image := &models.Image{PostID: postID, UserID: caller, ImageURL: s.store.URL(key)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.posts.WithTx(tx).CreateImage(ctx, image)
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logger.Ctx(ctx).Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned image")
		}
		if errors.Is(err, repositories.ErrConstraint) {
			// post deleted while the file was uploading
			return nil, notFound("post")
		}
		return nil, err
	}
	return image, nil
}

// TogglePostLike likes the post, or flips an existing like.
func (s *PostService) TogglePostLike(ctx context.Context, postID, caller uuid.UUID) (*models.PostLike, error) {
	var (
		like  *models.PostLike
		owner uuid.UUID
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.posts.WithTx(tx).GetByID(ctx, postID)
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("post")
		}
		if err != nil {
			return err
		}
		owner = post.UserID

		like, err = s.likes.WithTx(tx).Toggle(ctx, postID, caller)
		if errors.Is(err, repositories.ErrAlreadyExists) || errors.Is(err, repositories.ErrConstraint) {
			return badRequest(err.Error())
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if like.IsLiked {
		s.notifications.Notify(ctx, models.Notification{
			RecipientID: owner.String(),
			ActorID:     caller.String(),
			Type:        models.NotificationPostLike,
			TargetID:    postID.String(),
			Message:     "liked your post",
		})
	}
	return like, nil
}

func (s *PostService) ownedPost(ctx context.Context, posts repositories.PostRepository, id, caller uuid.UUID) (*models.Post, error) {
	post, err := posts.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("post")
	}
	if err != nil {
		return nil, err
	}
	if err := assertOwner(post.UserID, caller); err != nil {
		return nil, err
	}
	return post, nil
}

func imagePrefix(postID uuid.UUID) string {
	return "post_image/" + postID.String() + "/"
}
