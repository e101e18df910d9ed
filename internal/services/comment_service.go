package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/repositories"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

type CommentService struct {
	db            *gorm.DB
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	likes         repositories.CommentLikeRepository
	notifications *NotificationService
}

func NewCommentService(db *gorm.DB, posts repositories.PostRepository, comments repositories.CommentRepository, likes repositories.CommentLikeRepository, notifications *NotificationService) *CommentService {
	return &CommentService{
		db:            db,
		posts:         posts,
		comments:      comments,
		likes:         likes,
		notifications: notifications,
	}
}

// GetComments pages through the comments of a post, oldest first.
func (s *CommentService) GetComments(ctx context.Context, postID, viewer uuid.UUID, p pagination.Params) (pagination.Page[models.CommentView], error) {
	var (
		total int64
		items []models.CommentView
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.post(ctx, tx, postID); err != nil {
			return err
		}

		var err error
		total, items, err = s.comments.WithTx(tx).ListViews(ctx, postID, viewer, p)
		return err
	})
	if err != nil {
		return pagination.Page[models.CommentView]{}, err
	}
	return pagination.NewPage(total, items, p), nil
}

func (s *CommentService) CreateComment(ctx context.Context, postID, caller uuid.UUID, req models.CreateCommentRequest) (*models.Comment, error) {
	comment := &models.Comment{PostID: postID, UserID: caller, Content: req.Content}

	var owner uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.post(ctx, tx, postID)
		if err != nil {
			return err
		}
		owner = post.UserID

		err = s.comments.WithTx(tx).Create(ctx, comment)
		if errors.Is(err, repositories.ErrConstraint) {
			return badRequest(err.Error())
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, models.Notification{
		RecipientID: owner.String(),
		ActorID:     caller.String(),
		Type:        models.NotificationComment,
		TargetID:    postID.String(),
		Message:     "commented on your post",
	})
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, id, caller uuid.UUID, req models.UpdateCommentRequest) (*models.Comment, error) {
	var comment *models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := s.comments.WithTx(tx)

		var err error
		comment, err = s.ownedComment(ctx, comments, id, caller)
		if err != nil {
			return err
		}
		if err := comments.UpdateContent(ctx, id, req.Content); err != nil {
			return err
		}
		comment, err = comments.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, id, caller uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		comments := s.comments.WithTx(tx)
		if _, err := s.ownedComment(ctx, comments, id, caller); err != nil {
			return err
		}
		return comments.Delete(ctx, id)
	})
}

// ToggleCommentLike likes the comment, or flips an existing like.
func (s *CommentService) ToggleCommentLike(ctx context.Context, id, caller uuid.UUID) (*models.CommentLike, error) {
	var like *models.CommentLike
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.comments.WithTx(tx).GetByID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return notFound("comment")
			}
			return err
		}

		var err error
		like, err = s.likes.WithTx(tx).Toggle(ctx, id, caller)
		if errors.Is(err, repositories.ErrAlreadyExists) || errors.Is(err, repositories.ErrConstraint) {
			return badRequest(err.Error())
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return like, nil
}

func (s *CommentService) post(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.WithTx(tx).GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("post")
	}
	return post, err
}

func (s *CommentService) ownedComment(ctx context.Context, comments repositories.CommentRepository, id, caller uuid.UUID) (*models.Comment, error) {
	comment, err := comments.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("comment")
	}
	if err != nil {
		return nil, err
	}
	if err := assertOwner(comment.UserID, caller); err != nil {
		return nil, err
	}
	return comment, nil
}
