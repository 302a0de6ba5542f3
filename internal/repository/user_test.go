package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chatkit/chatauth/internal/db/testdb"
	"github.com/chatkit/chatauth/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string, now time.Time) *model.User {
	return &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "$2a$10$notarealhash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func withToken(u *model.User, token string, expires time.Time) *model.User {
	u.VerificationToken = &token
	u.VerificationTokenExpiresAt = &expires
	return u
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))
	now := time.Now().UTC().Truncate(time.Second)

	u := newUser("a@x.com", now)
	require.NoError(t, repo.Create(ctx, u))

	byEmail, err := repo.ByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "Test User", byEmail.FullName)
	assert.False(t, byEmail.IsVerified())

	byID, err := repo.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
	assert.True(t, byID.CreatedAt.Equal(now))
}

func TestUserRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))

	_, err := repo.ByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, repo.DeletePending(ctx, "missing", "tok"), ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newUser("dup@x.com", now)))

	err := repo.Create(ctx, newUser("dup@x.com", now))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_ConsumeVerificationToken(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))
	now := time.Now().UTC()

	u := withToken(newUser("v@x.com", now), "tok-1", now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, u))

	verified, err := repo.ConsumeVerificationToken(ctx, "tok-1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, u.ID, verified.ID)
	assert.True(t, verified.IsVerified())
	assert.Nil(t, verified.VerificationToken)
	assert.Nil(t, verified.VerificationTokenExpiresAt)

	_, err = repo.ConsumeVerificationToken(ctx, "tok-1", now.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrTokenNotFound, "a token is accepted at most once")
}

func TestUserRepository_ConsumeExpiredToken(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))
	now := time.Now().UTC()

	u := withToken(newUser("e@x.com", now), "tok-old", now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, u))

	_, err := repo.ConsumeVerificationToken(ctx, "tok-old", now.Add(time.Hour+time.Second))
	assert.ErrorIs(t, err, ErrTokenNotFound)

	stored, err := repo.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsVerified(), "expired token leaves the account untouched")
}

func TestUserRepository_ConsumeUnknownToken(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))

	_, err := repo.ConsumeVerificationToken(ctx, "nope", time.Now().UTC())
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestUserRepository_SupersedeUnverified(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))
	now := time.Now().UTC()

	u := withToken(newUser("s@x.com", now), "first", now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, u))

	withToken(u, "second", now.Add(time.Hour))
	u.FullName = "Renamed"
	require.NoError(t, repo.SupersedeUnverified(ctx, u))

	_, err := repo.ConsumeVerificationToken(ctx, "first", now)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	verified, err := repo.ConsumeVerificationToken(ctx, "second", now)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", verified.FullName)
}

func TestUserRepository_SupersedeKeepsVerifiedAccount(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))
	now := time.Now().UTC()

	u := withToken(newUser("owner@x.com", now), "owner-tok", now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, u))
	_, err := repo.ConsumeVerificationToken(ctx, "owner-tok", now)
	require.NoError(t, err)

	// a stale copy read before verification
	withToken(u, "other-tok", now.Add(time.Hour))
	u.FullName = "Someone Else"
	u.PasswordHash = "$2a$10$someoneelse"
	assert.ErrorIs(t, repo.SupersedeUnverified(ctx, u), ErrUserVerified)

	stored, err := repo.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified())
	assert.Equal(t, "Test User", stored.FullName)
	assert.Equal(t, "$2a$10$notarealhash", stored.PasswordHash)
}

func TestUserRepository_DeletePending(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))
	now := time.Now().UTC()

	pending := withToken(newUser("pending@x.com", now), "p-tok", now.Add(time.Hour))
	verified := withToken(newUser("verified@x.com", now), "v-tok", now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, verified))
	_, err := repo.ConsumeVerificationToken(ctx, "v-tok", now)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.DeletePending(ctx, pending.ID, "wrong-tok"), ErrUserNotFound)
	assert.ErrorIs(t, repo.DeletePending(ctx, verified.ID, "v-tok"), ErrUserNotFound)
	require.NoError(t, repo.DeletePending(ctx, pending.ID, "p-tok"))

	_, err = repo.ByID(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.ByID(ctx, verified.ID)
	assert.NoError(t, err)
}

func TestUserRepository_UpdateProfileFields(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))
	u := newUser("p@x.com", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, u))

	updated, err := repo.UpdateProfilePic(ctx, u.ID, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.ProfilePic)

	updated, err = repo.UpdateFullName(ctx, u.ID, "New Name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.ProfilePic)

	_, err = repo.UpdateProfilePic(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_PurgeUnverified(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.RunWhile(t))
	now := time.Now().UTC()

	stale := withToken(newUser("stale@x.com", now), "stale", now.Add(-48*time.Hour))
	fresh := withToken(newUser("fresh@x.com", now), "fresh", now.Add(time.Hour))
	verified := newUser("done@x.com", now)
	verified.EmailVerifiedAt = &now
	for _, u := range []*model.User{stale, fresh, verified} {
		require.NoError(t, repo.Create(ctx, u))
	}

	n, err := repo.PurgeUnverified(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.ByID(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.ByID(ctx, fresh.ID)
	assert.NoError(t, err)
	_, err = repo.ByID(ctx, verified.ID)
	assert.NoError(t, err)
}

func TestUserRepository_PostgresDuplicateKey(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewUserRepository(sqlx.NewDb(mockDB, "pgx"))

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`))

	err = repo.Create(context.Background(), newUser("pg@x.com", time.Now().UTC()))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_PropagatesDriverErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewUserRepository(sqlx.NewDb(mockDB, "pgx"))
	boom := errors.New("connection reset by peer")

	mock.ExpectQuery("SELECT \\* FROM users WHERE email").WillReturnError(boom)

	_, err = repo.ByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
