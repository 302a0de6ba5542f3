package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chatkit/chatauth/internal/model"
	"github.com/chatkit/chatauth/internal/repository"
	"github.com/chatkit/chatauth/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the cookie carrying the session JWT.
const SessionCookieName = "jwt"

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrEmailNotVerified         = errors.New("email not verified")
	ErrTokenMissing             = errors.New("verification token missing")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrEmailDelivery            = errors.New("failed to deliver verification email")
)

// dummyPasswordHash is compared against when no user matches a login, so both
// failure paths pay for one bcrypt comparison.
var dummyPasswordHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

type SignupInput struct {
	FullName string
	Email    string
	Password string
}

// SignupResult reports what happened to a signup. When VerificationPending is false the
// account is already usable and the caller may issue a session for User.
type SignupResult struct {
	User                *model.User
	VerificationPending bool
}

type AuthService struct {
	userRepository         repository.UserRepository
	emailService           *EmailService
	jwtSecret              string
	isProduction           bool
	requireVerification    bool
	jwtExpiry              time.Duration
	tokenEmailVerifyExpiry time.Duration
	verificationURL        func(token string) string
	now                    func() time.Time
}

func NewAuthService(
	userRepository repository.UserRepository,
	emailService *EmailService,
	jwtSecret string,
	isProduction bool,
	requireVerification bool,
	jwtExpiry time.Duration,
	tokenEmailVerifyExpiry time.Duration,
	verificationURL func(token string) string,
) *AuthService {
	return &AuthService{
		userRepository:         userRepository,
		emailService:           emailService,
		jwtSecret:              jwtSecret,
		isProduction:           isProduction,
		requireVerification:    requireVerification,
		jwtExpiry:              jwtExpiry,
		tokenEmailVerifyExpiry: tokenEmailVerifyExpiry,
		verificationURL:        verificationURL,
		now:                    func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) RequireVerification() bool {
	return s.requireVerification
}

func (s *AuthService) JWTExpiry() time.Duration {
	return s.jwtExpiry
}

// Signup registers a new account. A previous unverified registration for the same
// address is superseded so that only the newest verification link works.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	fullName := validation.NormalizeName(in.FullName)
	email := validation.NormalizeEmail(in.Email)

	err := validation.ValidateSignup(fullName, email, in.Password)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepository.ByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil && existing.IsVerified() {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := existing
	if user == nil {
		user = &model.User{
			ID:        uuid.New().String(),
			Email:     email,
			CreatedAt: now,
		}
	}
	user.FullName = fullName
	user.PasswordHash = hash
	user.UpdatedAt = now

	if !s.requireVerification {
		user.ClearVerification(now)
		err = s.save(ctx, user, existing != nil)
		if err != nil {
			return nil, err
		}
		slog.Info("user signed up", "user_id", user.ID, "verification", false)
		return &SignupResult{User: user}, nil
	}

	token, err := s.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	expiresAt := now.Add(s.tokenEmailVerifyExpiry)
	user.EmailVerifiedAt = nil
	user.VerificationToken = &token
	user.VerificationTokenExpiresAt = &expiresAt

	err = s.save(ctx, user, existing != nil)
	if err != nil {
		return nil, err
	}

	err = s.emailService.SendVerificationEmail(ctx, user.Email, user.FullName, s.verificationURL(token), s.tokenEmailVerifyExpiry)
	if err != nil {
		slog.Error("failed to send verification email", "error", err, "user_id", user.ID)
		// Without the link the row is unreachable, so drop it unless it moved on.
		delErr := s.userRepository.DeletePending(ctx, user.ID, token)
		if delErr != nil && !errors.Is(delErr, repository.ErrUserNotFound) {
			slog.Error("failed to remove unverified user", "error", delErr, "user_id", user.ID)
		}
		return nil, fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}

	slog.Info("user signed up", "user_id", user.ID, "verification", true, "superseded", existing != nil)
	return &SignupResult{User: user, VerificationPending: true}, nil
}

func (s *AuthService) save(ctx context.Context, user *model.User, exists bool) error {
	if exists {
		err := s.userRepository.SupersedeUnverified(ctx, user)
		if errors.Is(err, repository.ErrUserVerified) {
			// The owner verified after our lookup.
			return ErrEmailAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	}

	err := s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost a race with a concurrent signup for the same address.
		return ErrEmailAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// VerifyEmail consumes a verification token. Each token works exactly once.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	// ConsumeVerificationToken atomically verifies the user (prevents replay)
	user, err := s.userRepository.ConsumeVerificationToken(ctx, token, s.now())
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, ErrInvalidVerificationToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}

	err = s.emailService.SendWelcomeEmail(ctx, user.Email, user.FullName)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
	}

	slog.Info("email verified", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash(), []byte(password))
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	if s.requireVerification && !user.IsVerified() {
		return nil, fmt.Errorf("email not verified: %w", ErrEmailNotVerified)
	}

	return user, nil
}

func (s *AuthService) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepository.ByID(ctx, id)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.jwtExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// IssueSession signs a JWT for user and attaches it as the session cookie.
func (s *AuthService) IssueSession(w http.ResponseWriter, user *model.User) error {
	token, err := s.GenerateJWT(user)
	if err != nil {
		return fmt.Errorf("failed to generate jwt: %w", err)
	}
	s.SetSessionCookie(w, token, time.Now().Add(s.jwtExpiry))
	return nil
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  expiry,
		MaxAge:   int(time.Until(expiry).Seconds()),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: s.sameSite(),
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: s.sameSite(),
	})
}

func (s *AuthService) sameSite() http.SameSite {
	if s.isProduction {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}
