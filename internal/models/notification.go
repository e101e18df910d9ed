package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationFollowRequest NotificationType = "follow_request"
	NotificationFollowAccept  NotificationType = "follow_accept"
	NotificationPostLike      NotificationType = "post_like"
	NotificationComment       NotificationType = "comment"
)

// Notification represents a user notification stored in MongoDB
type Notification struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RecipientID string             `json:"recipient_id" bson:"recipient_id"`
	ActorID     string             `json:"actor_id" bson:"actor_id"`
	Type        NotificationType   `json:"type" bson:"type"`
	TargetID    string             `json:"target_id" bson:"target_id"` // user, post or comment id
	Message     string             `json:"message" bson:"message"`
	IsRead      bool               `json:"is_read" bson:"is_read"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
