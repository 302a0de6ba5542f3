package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_HasPendingVerification(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := "abc"
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Second)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"no token", User{}, false},
		{"live token", User{VerificationToken: &token, VerificationTokenExpiresAt: &later}, true},
		{"expired token", User{VerificationToken: &token, VerificationTokenExpiresAt: &earlier}, false},
		{"already verified", User{EmailVerifiedAt: &now, VerificationToken: &token, VerificationTokenExpiresAt: &later}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.HasPendingVerification(now))
		})
	}
}

func TestUser_ClearVerification(t *testing.T) {
	now := time.Now().UTC()
	token := "abc"
	u := &User{VerificationToken: &token, VerificationTokenExpiresAt: &now}

	u.ClearVerification(now)

	assert.True(t, u.IsVerified())
	assert.Nil(t, u.VerificationToken)
	assert.Nil(t, u.VerificationTokenExpiresAt)
}

func TestUser_PublicOmitsSecrets(t *testing.T) {
	token := "secret-token"
	u := &User{
		ID:                "u1",
		Email:             "a@x.com",
		FullName:          "A",
		PasswordHash:      "$2a$10$hash",
		ProfilePic:        "https://cdn/x.png",
		VerificationToken: &token,
	}

	raw, err := json.Marshal(u.Public())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "u1", got["_id"])
	assert.Equal(t, "A", got["fullname"])
	assert.Equal(t, "a@x.com", got["email"])
	assert.Equal(t, "https://cdn/x.png", got["profilePic"])
	assert.NotContains(t, string(raw), "hash")
	assert.NotContains(t, string(raw), token)
}
