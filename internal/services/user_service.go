package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/repositories"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

type UserService struct {
	db      *gorm.DB
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

func NewUserService(db *gorm.DB, users repositories.UserRepository, follows repositories.FollowRepository) *UserService {
	return &UserService{db: db, users: users, follows: follows}
}

// GetProfile returns a user with follow counts. A non-nil viewer other than the user also gets
// the relationship state in both directions.
func (s *UserService) GetProfile(ctx context.Context, id, viewer uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.users.WithTx(tx).GetByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("user")
		}
		if err != nil {
			return err
		}
		profile.User = *user

		follows := s.follows.WithTx(tx)
		if profile.FollowerCnt, err = follows.CountFollowers(ctx, id); err != nil {
			return err
		}
		if profile.FollowingCnt, err = follows.CountFollowings(ctx, id); err != nil {
			return err
		}

		if viewer != uuid.Nil && viewer != id {
			outgoing, incoming, err := follows.Status(ctx, viewer, id)
			if err != nil {
				return err
			}
			profile.Following = &outgoing
			profile.FollowedBy = &incoming
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		var err error
		user, err = users.GetByID(ctx, caller)
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("user")
		}
		if err != nil {
			return err
		}

		if req.Username != nil {
			user.Username = *req.Username
		}
		if req.Bio != nil {
			user.Bio = *req.Bio
		}
		if req.ProfileImageURL != nil {
			user.ProfileImageURL = *req.ProfileImageURL
		}

		err = users.Update(ctx, user)
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return fmt.Errorf("username %w", ErrAlreadyExists)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the caller. Their follows, posts, comments and likes are removed by the
// database cascade.
func (s *UserService) DeleteAccount(ctx context.Context, caller uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := s.users.WithTx(tx).Delete(ctx, caller)
		if err != nil {
			return err
		}
		if !deleted {
			return notFound("user")
		}
		return nil
	})
}

// Search finds users by username.
func (s *UserService) Search(ctx context.Context, query string, p pagination.Params) (pagination.Page[models.UserSummary], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return pagination.Page[models.UserSummary]{}, badRequest("query must not be empty")
	}

	var (
		total int64
		items []models.UserSummary
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		total, items, err = s.users.WithTx(tx).Search(ctx, query, p)
		return err
	})
	if err != nil {
		return pagination.Page[models.UserSummary]{}, err
	}
	return pagination.NewPage(total, items, p), nil
}
