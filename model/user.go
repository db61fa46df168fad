package model

import "time"

// User backs the auth collaborator: it exists so the API can mint tokens
// whose subject the stores stamp as author_uid / user_uid.
type User struct {
	UserID          string     `bson:"_id,omitempty" json:"user_id"`
	Username        string     `bson:"username" json:"username" validate:"required,min=4,max=20"`
	Email           string     `bson:"email" json:"email" validate:"required,email"`
	PasswordHash    string     `bson:"password_hash" json:"-"`
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
	LastLoginAt     *time.Time `bson:"last_login_at" json:"last_login_at"`
	LastLoginDevice string     `bson:"last_login_device,omitempty" json:"last_login_device,omitempty"`
}
