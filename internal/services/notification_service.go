package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/repositories"
	"github.com/anonto42/spire/backend/pkg/logger"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

type NotificationService struct {
	repo repositories.NotificationRepository
}

func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify stores a notification. Failures are logged and never returned: a social action that
// already committed must not fail because its notification could not be written.
func (s *NotificationService) Notify(ctx context.Context, n models.Notification) {
	if n.RecipientID == n.ActorID {
		return
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("recipient_id", n.RecipientID).
			Str("type", string(n.Type)).
			Msg("failed to store notification")
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, p pagination.Params) (pagination.Page[models.Notification], error) {
	total, items, err := s.repo.ListByRecipient(ctx, recipientID.String(), p)
	if err != nil {
		return pagination.Page[models.Notification]{}, err
	}
	return pagination.NewPage(total, items, p), nil
}

func (s *NotificationService) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID.String())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID.String())
}
