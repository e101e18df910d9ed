package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// FollowRepository defines the interface for follow data operations. Every method addresses the
// ordered pair (followingID, followedID).
type FollowRepository interface {
	// WithTx returns a repository bound to tx.
	WithTx(tx *gorm.DB) FollowRepository

	// Find returns ErrNotFound when no row exists for the pair.
	Find(ctx context.Context, followingID, followedID uuid.UUID) (*models.Follow, error)

	// Create inserts a pending row. A duplicate pair fails with ErrAlreadyExists.
	Create(ctx context.Context, followingID, followedID uuid.UUID) (*models.Follow, error)

	// Accept moves a pending row to accepted; ErrNotFound when there is no pending row.
	Accept(ctx context.Context, followingID, followedID uuid.UUID) (*models.Follow, error)

	// Delete removes the row only if its status equals expected and reports whether it did.
	Delete(ctx context.Context, followingID, followedID uuid.UUID, expected models.AcceptStatus) (bool, error)

	ListFollowers(ctx context.Context, userID uuid.UUID, p pagination.Params) (int64, []models.UserSummary, error)
	ListFollowings(ctx context.Context, userID uuid.UUID, p pagination.Params) (int64, []models.UserSummary, error)
	ListPendingRequests(ctx context.Context, userID uuid.UUID, p pagination.Params) (int64, []models.UserSummary, error)

	CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)
	CountFollowings(ctx context.Context, userID uuid.UUID) (int64, error)

	// Status returns the state of a -> b and of b -> a.
	Status(ctx context.Context, a, b uuid.UUID) (outgoing, incoming models.FollowState, err error)
}

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-backed follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

func (r *GormFollowRepository) WithTx(tx *gorm.DB) FollowRepository {
	return &GormFollowRepository{db: tx}
}

func (r *GormFollowRepository) Find(ctx context.Context, followingID, followedID uuid.UUID) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("following_user_id = ? AND followed_user_id = ?", followingID, followedID).
		First(&follow).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return &follow, nil
}

// Create relies on ux_follow_pair rather than a prior lookup, so concurrent requests for the same
// pair cannot both succeed.
func (r *GormFollowRepository) Create(ctx context.Context, followingID, followedID uuid.UUID) (*models.Follow, error) {
	follow := models.Follow{
		FollowingUserID: followingID,
		FollowedUserID:  followedID,
		AcceptStatus:    models.FollowPending,
	}
	if err := r.db.WithContext(ctx).Create(&follow).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return &follow, nil
}

func (r *GormFollowRepository) Accept(ctx context.Context, followingID, followedID uuid.UUID) (*models.Follow, error) {
	res := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_user_id = ? AND followed_user_id = ? AND accept_status = ?",
			followingID, followedID, models.FollowPending).
		Update("accept_status", models.FollowAccepted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Find(ctx, followingID, followedID)
}

func (r *GormFollowRepository) Delete(ctx context.Context, followingID, followedID uuid.UUID, expected models.AcceptStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("following_user_id = ? AND followed_user_id = ? AND accept_status = ?",
			followingID, followedID, expected).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListFollowers returns the accepted followers of userID.
func (r *GormFollowRepository) ListFollowers(ctx context.Context, userID uuid.UUID, p pagination.Params) (int64, []models.UserSummary, error) {
	return r.listUsers(ctx, "following_user_id", "followed_user_id", userID, models.FollowAccepted, p)
}

// ListFollowings returns the users userID follows with an accepted relationship.
func (r *GormFollowRepository) ListFollowings(ctx context.Context, userID uuid.UUID, p pagination.Params) (int64, []models.UserSummary, error) {
	return r.listUsers(ctx, "followed_user_id", "following_user_id", userID, models.FollowAccepted, p)
}

// ListPendingRequests returns the users waiting for userID to accept their request.
func (r *GormFollowRepository) ListPendingRequests(ctx context.Context, userID uuid.UUID, p pagination.Params) (int64, []models.UserSummary, error) {
	return r.listUsers(ctx, "following_user_id", "followed_user_id", userID, models.FollowPending, p)
}

// listUsers pages through users on the userCol side of rows whose filterCol equals userID.
func (r *GormFollowRepository) listUsers(ctx context.Context, userCol, filterCol string, userID uuid.UUID, status models.AcceptStatus, p pagination.Params) (int64, []models.UserSummary, error) {
	q := r.db.WithContext(ctx).
		Table("follow AS f").
		Joins("JOIN users AS u ON u.id = f."+userCol).
		Where("f."+filterCol+" = ? AND f.accept_status = ?", userID, status).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.UserSummary, 0, p.Limit)
	err := q.Select("u.id, u.username, u.bio, u.profile_image_url").
		Order("f.created_at ASC, f.id ASC").
		Limit(p.Limit).
		Offset(p.Offset).
		Scan(&items).Error
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormFollowRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followed_user_id = ? AND accept_status = ?", userID, models.FollowAccepted).
		Count(&count).Error
	return count, err
}

func (r *GormFollowRepository) CountFollowings(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_user_id = ? AND accept_status = ?", userID, models.FollowAccepted).
		Count(&count).Error
	return count, err
}

func (r *GormFollowRepository) Status(ctx context.Context, a, b uuid.UUID) (models.FollowState, models.FollowState, error) {
	var rows []models.Follow
	err := r.db.WithContext(ctx).
		Where("(following_user_id = ? AND followed_user_id = ?) OR (following_user_id = ? AND followed_user_id = ?)", a, b, b, a).
		Find(&rows).Error
	if err != nil {
		return "", "", err
	}

	var outgoing, incoming *models.Follow
	for i := range rows {
		if rows[i].FollowingUserID == a {
			outgoing = &rows[i]
		} else {
			incoming = &rows[i]
		}
	}
	return outgoing.State(), incoming.State(), nil
}

// Ensure interface is satisfied at compile time.
var _ FollowRepository = (*GormFollowRepository)(nil)
