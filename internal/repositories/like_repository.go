package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
)

// LikeRepository defines the interface for post like operations
type LikeRepository interface {
	WithTx(tx *gorm.DB) LikeRepository
	// Toggle creates a liked row on first use and flips IsLiked afterwards.
	Toggle(ctx context.Context, postID, userID uuid.UUID) (*models.PostLike, error)
}

// GormLikeRepository implements LikeRepository using GORM.
type GormLikeRepository struct {
	db *gorm.DB
}

// NewGormLikeRepository creates a new GormLikeRepository
func NewGormLikeRepository(db *gorm.DB) *GormLikeRepository {
	return &GormLikeRepository{db: db}
}

func (r *GormLikeRepository) WithTx(tx *gorm.DB) LikeRepository {
	return &GormLikeRepository{db: tx}
}

func (r *GormLikeRepository) Toggle(ctx context.Context, postID, userID uuid.UUID) (*models.PostLike, error) {
	db := r.db.WithContext(ctx)

	var like models.PostLike
	err := db.Where("post_id = ? AND user_id = ?", postID, userID).First(&like).Error
	switch {
	case isNotFound(err):
		like = models.PostLike{PostID: postID, UserID: userID, IsLiked: true}
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

var _ LikeRepository = (*GormLikeRepository)(nil)
