package models

import "time"

// Roles a user document can carry.
const (
	RoleUser         = "user"
	RolePsychologist = "psychologist"
	RoleAdmin        = "admin"
)

// Subscription statuses stored on the user document.
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
)

// User represents a user profile in the system.
// The Firebase Auth UID is the document ID.
type User struct {
	ID                    string     `json:"id" firestore:"-"`
	Username              string     `json:"username" firestore:"username"` // stored lowercase, unique
	Email                 string     `json:"email" firestore:"email"`
	Gender                string     `json:"gender,omitempty" firestore:"gender"`
	DateOfBirth           string     `json:"dateOfBirth,omitempty" firestore:"dateOfBirth"`
	Role                  string     `json:"role" firestore:"role"`
	Disabled              bool       `json:"disabled" firestore:"disabled"`
	DisabledReason        string     `json:"disabledReason,omitempty" firestore:"disabledReason,omitempty"`
	DisabledAt            *time.Time `json:"disabledAt,omitempty" firestore:"disabledAt,omitempty"`
	ProfilePicture        string     `json:"profilePicture,omitempty" firestore:"profilePicture"`
	SubscriptionStatus    string     `json:"subscriptionStatus" firestore:"subscriptionStatus"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate,omitempty" firestore:"subscriptionStartDate,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty" firestore:"subscriptionEndDate,omitempty"`
	EmailVerified         bool       `json:"emailVerified" firestore:"emailVerified"`
	PendingEmail          string     `json:"pendingEmail,omitempty" firestore:"pendingEmail,omitempty"`
	CreatedAt             time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt" firestore:"updatedAt"`
}
