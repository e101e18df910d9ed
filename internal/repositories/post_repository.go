package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// GetView returns a post with counts as seen by viewer; uuid.Nil means anonymous.
	GetView(ctx context.Context, id, viewer uuid.UUID) (*models.PostView, error)

	// ListViews pages through posts newest first, optionally only those of owner.
	ListViews(ctx context.Context, owner *uuid.UUID, viewer uuid.UUID, p pagination.Params) (int64, []models.PostView, error)

	// ListFeed pages through posts by viewer and by the users viewer follows, newest first.
	ListFeed(ctx context.Context, viewer uuid.UUID, p pagination.Params) (int64, []models.PostView, error)

	CreateImage(ctx context.Context, image *models.Image) error
}

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) WithTx(tx *gorm.DB) PostRepository {
	return &GormPostRepository{db: tx}
}

// Create inserts post; an unknown author fails with ErrConstraint.
func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	return translateWriteError(r.db.WithContext(ctx).Create(post).Error)
}

func (r *GormPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translateReadError(err)
	}
	return &post, nil
}

func (r *GormPostRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return translateWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// viewQuery selects posts with like and comment counts aggregated at read time.
func (r *GormPostRepository) viewQuery(ctx context.Context, viewer uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Select(`posts.*,
			(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = posts.id AND pl.is_liked = ?) AS like_cnt,
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id) AS comment_cnt,
			EXISTS (SELECT 1 FROM post_likes vl WHERE vl.post_id = posts.id AND vl.user_id = ? AND vl.is_liked = ?) AS is_liked`,
			true, viewer, true)
}

func (r *GormPostRepository) GetView(ctx context.Context, id, viewer uuid.UUID) (*models.PostView, error) {
	var views []models.PostView
	if err := r.viewQuery(ctx, viewer).Where("posts.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	if err := r.attachImages(ctx, views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (r *GormPostRepository) ListViews(ctx context.Context, owner *uuid.UUID, viewer uuid.UUID, p pagination.Params) (int64, []models.PostView, error) {
	filter := func(db *gorm.DB) *gorm.DB { return db }
	if owner != nil {
		filter = func(db *gorm.DB) *gorm.DB { return db.Where("posts.user_id = ?", *owner) }
	}
	return r.listViews(ctx, filter, viewer, p)
}

// ListFeed pages through the viewer's own posts and those of users they follow (accepted only).
func (r *GormPostRepository) ListFeed(ctx context.Context, viewer uuid.UUID, p pagination.Params) (int64, []models.PostView, error) {
	followed := r.db.Table("follow").
		Select("followed_user_id").
		Where("following_user_id = ? AND accept_status = ?", viewer, models.FollowAccepted)
	filter := func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ? OR posts.user_id IN (?)", viewer, followed)
	}
	return r.listViews(ctx, filter, viewer, p)
}

func (r *GormPostRepository) listViews(ctx context.Context, filter func(*gorm.DB) *gorm.DB, viewer uuid.UUID, p pagination.Params) (int64, []models.PostView, error) {
	var total int64
	if err := filter(r.db.WithContext(ctx).Table("posts")).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	views := make([]models.PostView, 0, p.Limit)
	err := filter(r.viewQuery(ctx, viewer)).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Scan(&views).Error
	if err != nil {
		return 0, nil, err
	}
	if err := r.attachImages(ctx, views); err != nil {
		return 0, nil, err
	}
	return total, views, nil
}

// attachImages loads the images of every post in views with a single query.
func (r *GormPostRepository) attachImages(ctx context.Context, views []models.PostView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(views))
	for i := range views {
		ids[i] = views[i].ID
		views[i].Images = []models.Image{}
	}

	var images []models.Image
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&images).Error
	if err != nil {
		return err
	}

	byPost := make(map[uuid.UUID][]models.Image, len(views))
	for _, img := range images {
		byPost[img.PostID] = append(byPost[img.PostID], img)
	}
	for i := range views {
		if imgs, ok := byPost[views[i].ID]; ok {
			views[i].Images = imgs
		}
	}
	return nil
}

// CreateImage inserts image; an unknown post fails with ErrConstraint.
func (r *GormPostRepository) CreateImage(ctx context.Context, image *models.Image) error {
	return translateWriteError(r.db.WithContext(ctx).Create(image).Error)
}

var _ PostRepository = (*GormPostRepository)(nil)
