package model

import "time"

// MembershipStatus enumerates membership states. Removal is soft.
type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "ACTIVE"
	MembershipStatusInactive MembershipStatus = "INACTIVE"
)

// ClassMembership links a student to a class. (ClassID, UserID) is unique.
type ClassMembership struct {
	ID        int              `json:"id"`
	ClassID   int              `json:"class_id"`
	UserID    int              `json:"user_id"`
	Status    MembershipStatus `json:"status"`
	JoinedAt  time.Time        `json:"joined_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Member is an active class member with the user's public fields.
type Member struct {
	UserID   int       `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}
