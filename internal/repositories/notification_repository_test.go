package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

func TestMongoNotificationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id and time", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n := &models.Notification{RecipientID: "r", ActorID: "a", Type: models.NotificationFollowRequest}
		require.NoError(mt, repo.Create(ctx, n))
		assert.False(mt, n.ID.IsZero())
		assert.False(mt, n.CreatedAt.IsZero())
	})

	mt.Run("list by recipient", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		ns := mt.DB.Name() + ".notifications"
		now := time.Now().UTC()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "recipient_id", Value: "r"},
					{Key: "type", Value: string(models.NotificationComment)},
					{Key: "created_at", Value: now},
				},
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "recipient_id", Value: "r"},
					{Key: "type", Value: string(models.NotificationPostLike)},
					{Key: "created_at", Value: now.Add(-time.Minute)},
				},
			),
		)

		total, items, err := repo.ListByRecipient(ctx, "r", pagination.Params{Limit: 2})
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, total)
		require.Len(mt, items, 2)
		assert.Equal(mt, models.NotificationComment, items[0].Type)
	})

	mt.Run("mark all read", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(2)},
			bson.E{Key: "nModified", Value: int32(2)},
		))

		updated, err := repo.MarkAllRead(ctx, "r")
		require.NoError(mt, err)
		assert.EqualValues(mt, 2, updated)
	})

	mt.Run("store error", func(mt *mtest.T) {
		repo := NewMongoNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
			Name:    "BadValue",
		}))

		_, err := repo.CountUnread(ctx, "r")
		require.Error(mt, err)
	})
}
