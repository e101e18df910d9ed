package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
)

// CommentLikeRepository defines the interface for comment like operations
type CommentLikeRepository interface {
	WithTx(tx *gorm.DB) CommentLikeRepository
	Toggle(ctx context.Context, commentID, userID uuid.UUID) (*models.CommentLike, error)
}

// GormCommentLikeRepository implements CommentLikeRepository using GORM.
type GormCommentLikeRepository struct {
	db *gorm.DB
}

// NewGormCommentLikeRepository creates a new GormCommentLikeRepository
func NewGormCommentLikeRepository(db *gorm.DB) *GormCommentLikeRepository {
	return &GormCommentLikeRepository{db: db}
}

func (r *GormCommentLikeRepository) WithTx(tx *gorm.DB) CommentLikeRepository {
	return &GormCommentLikeRepository{db: tx}
}

func (r *GormCommentLikeRepository) Toggle(ctx context.Context, commentID, userID uuid.UUID) (*models.CommentLike, error) {
	db := r.db.WithContext(ctx)

	var like models.CommentLike
	err := db.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&like).Error
	switch {
	case isNotFound(err):
		like = models.CommentLike{CommentID: commentID, UserID: userID, IsLiked: true}
		if err := db.Create(&like).Error; err != nil {
			return nil, translateWriteError(err)
		}
		return &like, nil
	case err != nil:
		return nil, err
	}

	like.IsLiked = !like.IsLiked
	if err := db.Model(&like).Update("is_liked", like.IsLiked).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

var _ CommentLikeRepository = (*GormCommentLikeRepository)(nil)
