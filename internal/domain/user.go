package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusPendingApproval UserStatus = "pending_approval"
	UserStatusActive          UserStatus = "active"
	UserStatusSuspended       UserStatus = "suspended"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is the profile row created after a successful verification.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	FullName        string     `json:"full_name"`
	DateOfBirth     time.Time  `json:"date_of_birth"`
	Gender          string     `json:"gender"`
	PhoneNumber     string     `json:"phone_number"`
	BusinessAddress string     `json:"business_address"`
	PostalCode      string     `json:"postal_code"`
	IDType          IDType     `json:"id_type"`
	SelfieURL       string     `json:"selfie_url"`
	IDFrontURL      string     `json:"id_front_url"`
	IDBackURL       *string    `json:"id_back_url,omitempty"`
	IsFaceVerified  bool       `json:"is_face_verified"`
	FaceMatchScore  float64    `json:"face_match_score"`
	Status          UserStatus `json:"status"`
	Role            UserRole   `json:"role"`
	PasswordHash    string     `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsSuspended reports whether moderation has locked the account.
func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}
