package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/repositories"
	"github.com/anonto42/spire/backend/pkg/logger"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// FollowService drives the follow state machine for an ordered pair of users:
//
//	None --request--> Pending --accept--> Accepted
//	Pending --cancel/reject--> None
//	Accepted --unfollow/reject_follow--> None
//
// Every operation runs in its own transaction. The acting user always comes first in the
// argument list and must be the authenticated caller.
type FollowService struct {
	db            *gorm.DB
	follows       repositories.FollowRepository
	users         repositories.UserRepository
	notifications *NotificationService
}

func NewFollowService(db *gorm.DB, follows repositories.FollowRepository, users repositories.UserRepository, notifications *NotificationService) *FollowService {
	return &FollowService{
		db:            db,
		follows:       follows,
		users:         users,
		notifications: notifications,
	}
}

// RequestFollow creates a pending request from follower to followee.
func (s *FollowService) RequestFollow(ctx context.Context, follower, followee uuid.UUID) (*models.Follow, error) {
	if follower == followee {
		return nil, ErrSelfFollow
	}

	var follow *models.Follow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.users.WithTx(tx).Exists(ctx, followee)
		if err != nil {
			return err
		}
		if !exists {
			return notFound("user")
		}

		follow, err = s.follows.WithTx(tx).Create(ctx, follower, followee)
		switch {
		case errors.Is(err, repositories.ErrAlreadyExists):
			return errFollowExists
		case errors.Is(err, repositories.ErrConstraint):
			// a user deleted between the check and the insert
			return notFound("user")
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, models.Notification{
		RecipientID: followee.String(),
		ActorID:     follower.String(),
		Type:        models.NotificationFollowRequest,
		TargetID:    follower.String(),
		Message:     "requested to follow you",
	})
	return follow, nil
}

var errFollowExists = fmt.Errorf("follow relationship %w", ErrAlreadyExists)

// CancelRequest withdraws follower's pending request. Without a pending request it does nothing.
func (s *FollowService) CancelRequest(ctx context.Context, follower, followee uuid.UUID) error {
	return s.remove(ctx, "cancel_request", follower, followee, models.FollowPending)
}

// AcceptRequest accepts the pending request follower sent to followee.
func (s *FollowService) AcceptRequest(ctx context.Context, followee, follower uuid.UUID) (*models.Follow, error) {
	var follow *models.Follow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		follow, err = s.follows.WithTx(tx).Accept(ctx, follower, followee)
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("follow request")
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, models.Notification{
		RecipientID: follower.String(),
		ActorID:     followee.String(),
		Type:        models.NotificationFollowAccept,
		TargetID:    followee.String(),
		Message:     "accepted your follow request",
	})
	return follow, nil
}

// RejectRequest drops the pending request follower sent to followee.
func (s *FollowService) RejectRequest(ctx context.Context, followee, follower uuid.UUID) error {
	return s.remove(ctx, "reject_request", follower, followee, models.FollowPending)
}

// Unfollow ends follower's accepted relationship with followee.
func (s *FollowService) Unfollow(ctx context.Context, follower, followee uuid.UUID) error {
	return s.remove(ctx, "unfollow", follower, followee, models.FollowAccepted)
}

// RejectFollow lets followee remove an accepted follower.
func (s *FollowService) RejectFollow(ctx context.Context, followee, follower uuid.UUID) error {
	return s.remove(ctx, "reject_follow", follower, followee, models.FollowAccepted)
}

// remove deletes the (follower, followee) row if it is in the expected state. A missing or
// differently-stated row is left alone and reported as success.
func (s *FollowService) remove(ctx context.Context, op string, follower, followee uuid.UUID, expected models.AcceptStatus) error {
	var removed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = s.follows.WithTx(tx).Delete(ctx, follower, followee, expected)
		return err
	})
	if err != nil {
		return err
	}

	if !removed {
		logger.Ctx(ctx).Debug().
			Str("op", op).
			Str("following_user_id", follower.String()).
			Str("followed_user_id", followee.String()).
			Msg("no follow relationship in the expected state")
	}
	return nil
}

// GetFollowers pages through the accepted followers of userID.
func (s *FollowService) GetFollowers(ctx context.Context, userID uuid.UUID, p pagination.Params) (pagination.Page[models.UserSummary], error) {
	return s.page(ctx, p, func(r repositories.FollowRepository) (int64, []models.UserSummary, error) {
		return r.ListFollowers(ctx, userID, p)
	})
}

// GetFollowings pages through the users userID follows.
func (s *FollowService) GetFollowings(ctx context.Context, userID uuid.UUID, p pagination.Params) (pagination.Page[models.UserSummary], error) {
	return s.page(ctx, p, func(r repositories.FollowRepository) (int64, []models.UserSummary, error) {
		return r.ListFollowings(ctx, userID, p)
	})
}

// GetPendingRequests pages through the requests waiting for userID to answer.
func (s *FollowService) GetPendingRequests(ctx context.Context, userID uuid.UUID, p pagination.Params) (pagination.Page[models.UserSummary], error) {
	return s.page(ctx, p, func(r repositories.FollowRepository) (int64, []models.UserSummary, error) {
		return r.ListPendingRequests(ctx, userID, p)
	})
}

// page reads total and items in one transaction.
func (s *FollowService) page(ctx context.Context, p pagination.Params, list func(repositories.FollowRepository) (int64, []models.UserSummary, error)) (pagination.Page[models.UserSummary], error) {
	var (
		total int64
		items []models.UserSummary
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		total, items, err = list(s.follows.WithTx(tx))
		return err
	})
	if err != nil {
		return pagination.Page[models.UserSummary]{}, err
	}
	return pagination.NewPage(total, items, p), nil
}
