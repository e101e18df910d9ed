package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostLike is a user's like on a post. Unliking flips IsLiked instead of deleting the row.
type PostLike struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index;uniqueIndex:ux_post_like_pair"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:ux_post_like_pair"`
	IsLiked   bool      `json:"is_liked" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Post *Post `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}
