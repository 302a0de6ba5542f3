package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/chatkit/chatauth/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrTokenNotFound  = errors.New("token not found")
	ErrUserVerified   = errors.New("user already verified")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	SupersedeUnverified(ctx context.Context, user *model.User) error
	UpdateProfilePic(ctx context.Context, id, url string) (*model.User, error)
	UpdateFullName(ctx context.Context, id, name string) (*model.User, error)
	DeletePending(ctx context.Context, id, token string) error
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*model.User, error)
	PurgeUnverified(ctx context.Context, cutoff time.Time) (int64, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, full_name, password_hash, profile_pic,
			email_verified_at, verification_token, verification_token_expires_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.ProfilePic,
		user.EmailVerifiedAt,
		user.VerificationToken,
		user.VerificationTokenExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "email") {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}

	err := r.db.GetContext(ctx, user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}

	err := r.db.GetContext(ctx, user, `SELECT * FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// SupersedeUnverified overwrites a registration that has not been verified yet.
// It returns ErrUserVerified when the stored row is verified or gone, so a
// confirmed account is never reset by a later signup.
func (r *userRepository) SupersedeUnverified(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET full_name = $1, password_hash = $2, profile_pic = $3,
			email_verified_at = $4, verification_token = $5, verification_token_expires_at = $6,
			updated_at = $7
		WHERE id = $8
		AND email_verified_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		user.FullName,
		user.PasswordHash,
		user.ProfilePic,
		user.EmailVerifiedAt,
		user.VerificationToken,
		user.VerificationTokenExpiresAt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserVerified
	}
	return nil
}

func (r *userRepository) UpdateProfilePic(ctx context.Context, id, url string) (*model.User, error) {
	user := &model.User{}
	query := `UPDATE users SET profile_pic = $1, updated_at = $2 WHERE id = $3 RETURNING *`

	err := r.db.GetContext(ctx, user, query, url, time.Now().UTC(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) UpdateFullName(ctx context.Context, id, name string) (*model.User, error) {
	user := &model.User{}
	query := `UPDATE users SET full_name = $1, updated_at = $2 WHERE id = $3 RETURNING *`

	err := r.db.GetContext(ctx, user, query, name, time.Now().UTC(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// DeletePending removes a registration that still holds token and is unverified.
// A row that was verified or superseded in the meantime is left alone.
func (r *userRepository) DeletePending(ctx context.Context, id, token string) error {
	query := `
		DELETE FROM users
		WHERE id = $1
		AND verification_token = $2
		AND email_verified_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// ConsumeVerificationToken atomically marks the owner of token as verified and clears
// the token fields. Only the first caller wins; replays and expired tokens get ErrTokenNotFound.
func (r *userRepository) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	user := &model.User{}
	query := `
		UPDATE users
		SET email_verified_at = $1,
			verification_token = NULL,
			verification_token_expires_at = NULL,
			updated_at = $2
		WHERE verification_token = $3
		AND email_verified_at IS NULL
		AND verification_token_expires_at > $4
		RETURNING *
	`

	err := r.db.GetContext(ctx, user, query, now, now, token, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// PurgeUnverified removes accounts that never confirmed their email and whose
// verification link expired before cutoff.
func (r *userRepository) PurgeUnverified(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM users
		WHERE email_verified_at IS NULL
		AND verification_token_expires_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// isUniqueViolation checks for a unique constraint violation on column (works for both SQLite and PostgreSQL)
func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	unique := strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
	return unique && strings.Contains(msg, column)
}
