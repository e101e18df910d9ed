package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentLike represents a like on a comment
type CommentLike struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CommentID uuid.UUID `json:"comment_id" gorm:"type:uuid;not null;index;uniqueIndex:ux_comment_like_pair"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:ux_comment_like_pair"`
	IsLiked   bool      `json:"is_liked" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Comment *Comment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	User    *User    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}
