package models

import "time"

// User is a registered identity as persisted in the users table.
// PasswordHash holds the bcrypt output and never the plaintext password.
type User struct {
	UserID       string
	Name         string
	Email        string
	PasswordHash []byte
	AboutMe      *string
	Joined       time.Time
	IsActive     bool
}

// PublicUser is the part of a User that may leave the service.
type PublicUser struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Public strips everything but the public fields.
func (u *User) Public() *PublicUser {
	return &PublicUser{UserID: u.UserID, Name: u.Name, Email: u.Email}
}
