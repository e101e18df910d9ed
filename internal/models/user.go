package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null"`
	Username        string    `json:"username" gorm:"uniqueIndex;not null"`
	Password        string    `json:"-"` // bcrypt hash
	Bio             string    `json:"bio"`
	ProfileImageURL string    `json:"profile_image_url"`
	FirebaseUID     *string   `json:"-" gorm:"uniqueIndex"` // set for accounts created through Firebase sign-in
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// UserSummary is the public view of a user inside lists.
type UserSummary struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Bio             string    `json:"bio"`
	ProfileImageURL string    `json:"profile_image_url"`
}

// UserProfile is a user with follow counts and, for an authenticated viewer, the relationship in
// both directions.
type UserProfile struct {
	User
	FollowerCnt  int64        `json:"follower_cnt"`
	FollowingCnt int64        `json:"following_cnt"`
	Following    *FollowState `json:"following,omitempty"`   // viewer -> user
	FollowedBy   *FollowState `json:"followed_by,omitempty"` // user -> viewer
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type UpdateUserRequest struct {
	Username        *string `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	Bio             *string `json:"bio,omitempty" validate:"omitempty,max=300"`
	ProfileImageURL *string `json:"profile_image_url,omitempty" validate:"omitempty,url"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims. The token id (jti)
// is what logout revokes.
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
