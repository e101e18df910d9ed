package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AcceptStatus is the persisted state of a follow relationship.
type AcceptStatus int

const (
	FollowPending  AcceptStatus = 0
	FollowAccepted AcceptStatus = 1
)

// Follow is the directed edge "FollowingUser follows FollowedUser". At most one row exists per
// ordered pair; the row is removed when the relationship ends.
type Follow struct {
	ID              uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	AcceptStatus    AcceptStatus `json:"accept_status" gorm:"not null"`
	FollowingUserID uuid.UUID    `json:"following_user_id" gorm:"type:uuid;not null;index;uniqueIndex:ux_follow_pair"`
	FollowedUserID  uuid.UUID    `json:"followed_user_id" gorm:"type:uuid;not null;index;uniqueIndex:ux_follow_pair"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	FollowingUser *User `json:"-" gorm:"foreignKey:FollowingUserID;constraint:OnDelete:CASCADE"`
	FollowedUser  *User `json:"-" gorm:"foreignKey:FollowedUserID;constraint:OnDelete:CASCADE"`
}

func (Follow) TableName() string {
	return "follow"
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	return nil
}

// FollowState describes one direction of a relationship as seen by clients.
type FollowState string

const (
	FollowStateNone     FollowState = "none"
	FollowStatePending  FollowState = "pending"
	FollowStateAccepted FollowState = "accepted"
)

// State maps a row (or its absence) to a FollowState.
func (f *Follow) State() FollowState {
	switch {
	case f == nil:
		return FollowStateNone
	case f.AcceptStatus == FollowAccepted:
		return FollowStateAccepted
	default:
		return FollowStatePending
	}
}
