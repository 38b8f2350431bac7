package auth_models

import (
	"time"
)

// User represents a user in the system
type User struct {
	UserID    string    `json:"user_id" bson:"_id,omitempty"`
	Username  string    `json:"username" bson:"username"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"` // Password is not exposed in JSON
	Role      string    `json:"role" bson:"role"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// Profile fields, editable only by the user themselves.
	FirstName    string `json:"first_name" bson:"first_name,omitempty"`
	SecondName   string `json:"second_name" bson:"second_name,omitempty"`
	Phone        string `json:"phone" bson:"phone,omitempty"`
	Location     string `json:"location" bson:"location,omitempty"`
	InterestedIn string `json:"interested_in" bson:"interested_in,omitempty"`
}

// NewUser creates a new User instance
func NewUser(username, email, password, role string) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Email:     email,
		Password:  password, // Note: This should be hashed before saving
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProfileUpdate carries the self-editable profile fields.
type ProfileUpdate struct {
	FirstName    string `json:"first_name" binding:"required"`
	SecondName   string `json:"second_name" binding:"required"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	InterestedIn string `json:"interested_in"`
}
