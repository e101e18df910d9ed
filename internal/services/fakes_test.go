package services

import (
	"context"
	"sync"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/internal/repositories"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// recordingNotifications keeps created notifications in memory.
type recordingNotifications struct {
	repositories.NopNotificationRepository
	mu    sync.Mutex
	items []models.Notification
}

func (r *recordingNotifications) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *n)
	return nil
}

func (r *recordingNotifications) ListByRecipient(_ context.Context, recipientID string, p pagination.Params) (int64, []models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.items {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return int64(len(out)), out, nil
}

func (r *recordingNotifications) types() []models.NotificationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.NotificationType, len(r.items))
	for i, n := range r.items {
		out[i] = n.Type
	}
	return out
}
