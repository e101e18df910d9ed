package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/spire/backend/internal/models"
	"github.com/anonto42/spire/backend/pkg/pagination"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, p pagination.Params) (int64, []models.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// EnsureIndexes creates the recipient/created_at index used by ListByRecipient.
func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *MongoNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// ListByRecipient returns notifications newest first.
func (r *MongoNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, p pagination.Params) (int64, []models.Notification, error) {
	filter := bson.M{"recipient_id": recipientID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, nil, err
	}

	findOptions := options.Find().
		SetSkip(int64(p.Offset)).
		SetLimit(int64(p.Limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return 0, nil, err
	}
	defer cursor.Close(ctx)

	notifications := make([]models.Notification, 0, p.Limit)
	if err = cursor.All(ctx, &notifications); err != nil {
		return 0, nil, err
	}
	return total, notifications, nil
}

func (r *MongoNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}

func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// NopNotificationRepository discards notifications. It is used when MongoDB is not configured.
type NopNotificationRepository struct{}

func (NopNotificationRepository) Create(context.Context, *models.Notification) error { return nil }

func (NopNotificationRepository) ListByRecipient(context.Context, string, pagination.Params) (int64, []models.Notification, error) {
	return 0, []models.Notification{}, nil
}

func (NopNotificationRepository) CountUnread(context.Context, string) (int64, error) { return 0, nil }

func (NopNotificationRepository) MarkAllRead(context.Context, string) (int64, error) { return 0, nil }

var (
	_ NotificationRepository = (*MongoNotificationRepository)(nil)
	_ NotificationRepository = NopNotificationRepository{}
)
