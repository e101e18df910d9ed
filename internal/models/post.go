package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Image is an uploaded picture attached to a post.
type Image struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	ImageURL  string    `json:"image_url" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	Post *Post `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// PostView is a post with its aggregated counts and whether the viewer likes it.
type PostView struct {
	Post
	LikeCnt    int64   `json:"like_cnt"`
	CommentCnt int64   `json:"comment_cnt"`
	IsLiked    bool    `json:"is_liked"`
	Images     []Image `json:"images" gorm:"-"`
}

type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type UpdatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// UploadImageRequest carries a base64-encoded image.
type UploadImageRequest struct {
	Image         string `json:"modified_image" validate:"required,base64"`
	FileExtension string `json:"file_extension" validate:"omitempty,oneof=png jpg jpeg gif webp"`
}
