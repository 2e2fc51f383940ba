package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/auth"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/event"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/repository"
	apperrors "github.com/spartak030506-hash/fastapi-shop-1/pkg/errors"
)

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AuthService orchestrates registration, login, token rotation, and session
// revocation over the identity and session stores.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   *auth.PasswordHasher
	codec    *auth.TokenCodec
	producer *event.Producer
	logger   *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	hasher *auth.PasswordHasher,
	codec *auth.TokenCodec,
	producer *event.Producer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		codec:    codec,
		producer: producer,
		logger:   logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	DeviceInfo string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email      string
	Password   string
	DeviceInfo string
}

// Register creates a new user account, hashes the password, and returns the
// user with a fresh token pair.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.FirstName == "" {
		return nil, nil, apperrors.InvalidInput("first name is required")
	}
	if input.LastName == "" {
		return nil, nil, apperrors.InvalidInput("last name is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	taken, err := s.users.EmailInUse(ctx, input.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, nil, apperrors.AlreadyExists("user", "email", input.Email)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		PasswordHash: hashed,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         domain.RoleCustomer,
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issuePair(ctx, user.ID, input.DeviceInfo)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	// Event publication never fails the registration.
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Login authenticates a user with email and password, returning tokens.
// A missing user and a wrong password produce the same error so callers
// cannot enumerate registered emails.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if !user.IsActive {
		return nil, nil, apperrors.Forbidden("account is deactivated")
	}

	tokens, err := s.issuePair(ctx, user.ID, input.DeviceInfo)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return user, tokens, nil
}

// Refresh rotates a refresh token: the presented token is revoked before a
// new pair is issued, so each refresh token is single-use. Revoked, expired,
// and unknown tokens all fail with the same error.
func (s *AuthService) Refresh(ctx context.Context, rawToken, deviceInfo string) (*domain.TokenPair, error) {
	if rawToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.codec.VerifyRefresh(rawToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	fingerprint := auth.Fingerprint(rawToken)
	session, err := s.sessions.GetByHash(ctx, fingerprint)
	if err != nil {
		return nil, apperrors.Unauthorized("session not found")
	}

	// A validly signed token presented against another user's session row is
	// treated as missing, not as a distinct error.
	if session.UserID != claims.Subject {
		return nil, apperrors.Unauthorized("session not found")
	}

	if !session.Valid(time.Now().UTC()) {
		return nil, apperrors.Unauthorized("session not found")
	}

	// Conditional revoke: of two concurrent refreshes racing on the same
	// token, at most one sees revoked=true and proceeds.
	revoked, err := s.sessions.Revoke(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("revoke presented token: %w", err)
	}
	if !revoked {
		return nil, apperrors.Unauthorized("session not found")
	}

	if _, err := s.users.GetByID(ctx, claims.Subject); err != nil {
		return nil, apperrors.Unauthorized("session not found")
	}

	tokens, err := s.issuePair(ctx, claims.Subject, deviceInfo)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens rotated",
		slog.String("user_id", claims.Subject),
	)

	return tokens, nil
}

// Logout revokes the session backing the presented refresh token. If no
// active session matched, the token was already used or revoked.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return apperrors.InvalidInput("refresh token is required")
	}

	revoked, err := s.sessions.Revoke(ctx, auth.Fingerprint(rawToken))
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if !revoked {
		return apperrors.Unauthorized("session not found")
	}

	return nil
}

// LogoutAll revokes every active session for the user and returns the count.
// Zero revoked sessions is a valid result, not an error.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	count, err := s.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke all sessions: %w", err)
	}

	s.logger.InfoContext(ctx, "all sessions revoked",
		slog.String("user_id", userID),
		slog.Int64("count", count),
	)

	return count, nil
}

// ChangePassword verifies the current password, persists the new hash, and
// revokes every existing session so the change takes effect everywhere.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return apperrors.InvalidInput("current password is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return apperrors.InvalidInput("new password must be different from current password")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for password change: %w", err)
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return apperrors.Unauthorized("current password is incorrect")
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashed
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	count, err := s.sessions.RevokeAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("revoke sessions after password change: %w", err)
	}

	if err := s.producer.PublishUserPasswordChanged(ctx, userID, count); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_changed event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("user_id", userID),
		slog.Int64("sessions_revoked", count),
	)

	return nil
}

// DeleteAccount revokes every session and then soft-deletes the user. The
// revoke happens first so no window exists where a live session points at a
// deleted account.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for deletion: %w", err)
	}

	if _, err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions before deletion: %w", err)
	}

	if err := s.users.SoftDelete(ctx, userID); err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}

	if err := s.producer.PublishUserDeleted(ctx, userID, user.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.deleted event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account deleted",
		slog.String("user_id", userID),
	)

	return nil
}

// SweepExpiredSessions hard-deletes expired session records. It is invoked
// explicitly as a maintenance operation, never inline with requests.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep expired sessions: %w", err)
	}

	s.logger.InfoContext(ctx, "expired sessions swept",
		slog.Int64("count", count),
	)

	return count, nil
}

// Authenticate verifies an access token and materializes the acting user.
// Inactive accounts are rejected even when the token itself is valid.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden("account is deactivated")
	}

	return user, nil
}

// issuePair generates an access/refresh pair and persists the session record
// backing the refresh token.
func (s *AuthService) issuePair(ctx context.Context, userID, deviceInfo string) (*domain.TokenPair, error) {
	accessToken, err := s.codec.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.codec.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		TokenHash:  auth.Fingerprint(refreshToken),
		ExpiresAt:  now.Add(s.codec.RefreshTTL()),
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// validatePassword checks that the password meets minimum complexity
// requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
