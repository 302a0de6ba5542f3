package model

import (
	"time"
)

type User struct {
	ID                         string     `db:"id"`
	Email                      string     `db:"email"`
	FullName                   string     `db:"full_name"`
	PasswordHash               string     `db:"password_hash"`
	ProfilePic                 string     `db:"profile_pic"`
	EmailVerifiedAt            *time.Time `db:"email_verified_at"`
	VerificationToken          *string    `db:"verification_token"`
	VerificationTokenExpiresAt *time.Time `db:"verification_token_expires_at"`
	CreatedAt                  time.Time  `db:"created_at"`
	UpdatedAt                  time.Time  `db:"updated_at"`
}

func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

// HasPendingVerification reports whether the user holds a verification token that is still usable at now.
func (u *User) HasPendingVerification(now time.Time) bool {
	if u.IsVerified() || u.VerificationToken == nil || u.VerificationTokenExpiresAt == nil {
		return false
	}
	return now.Before(*u.VerificationTokenExpiresAt)
}

// ClearVerification marks the user verified at now and drops the token fields.
func (u *User) ClearVerification(now time.Time) {
	u.EmailVerifiedAt = &now
	u.VerificationToken = nil
	u.VerificationTokenExpiresAt = nil
}

// PublicUser is the JSON shape exposed to clients.
type PublicUser struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullname"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
	}
}
