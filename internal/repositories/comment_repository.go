package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListViews(ctx context.Context, postID, viewer uuid.UUID, p pagination.Params) (int64, []models.CommentView, error)
}

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: tx}
}

// Create inserts comment; an unknown post fails with ErrConstraint.
func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translateWriteError(r.db.WithContext(ctx).Create(comment).Error)
}

func (r *GormCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translateReadError(err)
	}
	return &comment, nil
}

func (r *GormCommentRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return translateWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListViews pages through the comments of a post, oldest first, with like counts.
func (r *GormCommentRepository) ListViews(ctx context.Context, postID, viewer uuid.UUID, p pagination.Params) (int64, []models.CommentView, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&total).Error
	if err != nil {
		return 0, nil, err
	}

	views := make([]models.CommentView, 0, p.Limit)
	err = r.db.WithContext(ctx).
		Table("comments").
		Select(`comments.*,
			(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = comments.id AND cl.is_liked = ?) AS like_cnt,
			EXISTS (SELECT 1 FROM comment_likes vl WHERE vl.comment_id = comments.id AND vl.user_id = ? AND vl.is_liked = ?) AS is_liked`,
			true, viewer, true).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC, comments.id ASC").
		Limit(p.Limit).
		Offset(p.Offset).
		Scan(&views).Error
	if err != nil {
		return 0, nil, err
	}
	return total, views, nil
}

var _ CommentRepository = (*GormCommentRepository)(nil)
