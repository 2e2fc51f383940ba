package service

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/auth"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/event"
	apperrors "github.com/spartak030506-hash/fastapi-shop-1/pkg/errors"
	pkgkafka "github.com/spartak030506-hash/fastapi-shop-1/pkg/kafka"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/pagination"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) EmailInUse(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepository) List(ctx context.Context, params pagination.Params) ([]domain.User, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

// --- Mock Session Repository ---

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepository) IsValid(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepository) Revoke(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCodec() *auth.TokenCodec {
	return auth.NewTokenCodec(auth.CodecConfig{
		AccessSecret:  "test-access-secret-key-for-testing",
		RefreshSecret: "test-refresh-secret-key-for-testing",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "shop-test",
	})
}

func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func newTestAuthService(userRepo *mockUserRepository, sessionRepo *mockSessionRepository) *AuthService {
	return NewAuthService(
		userRepo,
		sessionRepo,
		auth.NewPasswordHasherWithCost(4),
		newTestCodec(),
		newTestEventProducer(),
		newTestLogger(),
	)
}

func strPtr(s string) *string {
	return &s
}

// testUser builds an active user whose password hash matches the given
// plaintext at the fast test cost.
func testUser(password string) *domain.User {
	hash, err := auth.NewPasswordHasherWithCost(4).Hash(password)
	if err != nil {
		panic(err)
	}
	now := time.Now().UTC()
	return &domain.User{
		ID:           uuid.New().String(),
		Email:        "john@example.com",
		PasswordHash: hash,
		FirstName:    "John",
		LastName:     "Doe",
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	userRepo.On("EmailInUse", ctx, "john@example.com").Return(false, nil)
	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)
	sessionRepo.On("Create", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	input := RegisterInput{
		Email:     "john@example.com",
		Password:  "SecurePass123",
		FirstName: "John",
		LastName:  "Doe",
	}

	user, tokens, err := svc.Register(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "john@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "SecurePass123", user.PasswordHash)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	userRepo.AssertExpectations(t)
	sessionRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	userRepo.On("EmailInUse", ctx, "john@example.com").Return(true, nil)

	input := RegisterInput{
		Email:     "john@example.com",
		Password:  "SecurePass123",
		FirstName: "John",
		LastName:  "Doe",
	}

	user, tokens, err := svc.Register(ctx, input)

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	userRepo.AssertExpectations(t)
}

func TestRegister_WeakPasswords(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1"},
		{"no uppercase", "securepass123"},
		{"no lowercase", "SECUREPASS123"},
		{"no digit", "SecurePassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

			_, _, err := svc.Register(context.Background(), RegisterInput{
				Email:     "john@example.com",
				Password:  tt.password,
				FirstName: "John",
				LastName:  "Doe",
			})

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestRegister_OverlongPassword(t *testing.T) {
	// 73 bytes, otherwise policy-compliant. Must be rejected, not truncated.
	long := "Aa1" + strings.Repeat("x", 70)

	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	userRepo.On("EmailInUse", mock.Anything, "john@example.com").Return(false, nil)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:     "john@example.com",
		Password:  long,
		FirstName: "John",
		LastName:  "Doe",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("SecurePass123")
	userRepo.On("GetByEmail", ctx, "john@example.com").Return(user, nil)
	sessionRepo.On("Create", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	got, tokens, err := svc.Login(ctx, LoginInput{
		Email:    "john@example.com",
		Password: "SecurePass123",
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	sessionRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "john@example.com").Return(testUser("SecurePass123"), nil)

	_, _, err := svc.Login(ctx, LoginInput{
		Email:    "john@example.com",
		Password: "WrongPass456",
	})

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_UnknownEmail_SameErrorAsWrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", ctx, "john@example.com").Return(testUser("SecurePass123"), nil)

	_, _, errUnknown := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "SecurePass123"})
	_, _, errWrongPass := svc.Login(ctx, LoginInput{Email: "john@example.com", Password: "WrongPass456"})

	require.Error(t, errUnknown)
	require.Error(t, errWrongPass)
	// Identical messages keep login from leaking which emails are registered.
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

func TestLogin_InactiveAccount(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("SecurePass123")
	user.IsActive = false
	userRepo.On("GetByEmail", ctx, "john@example.com").Return(user, nil)

	_, _, err := svc.Login(ctx, LoginInput{
		Email:    "john@example.com",
		Password: "SecurePass123",
	})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- Refresh Tests ---

func refreshTokenForUser(t *testing.T, userID string) (string, *domain.Session) {
	t.Helper()
	token, err := newTestCodec().IssueRefresh(userID)
	require.NoError(t, err)

	return token, &domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: auth.Fingerprint(token),
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
		CreatedAt: time.Now().UTC(),
	}
}

func TestRefresh_Success_RotatesToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("SecurePass123")
	token, session := refreshTokenForUser(t, user.ID)

	sessionRepo.On("GetByHash", ctx, session.TokenHash).Return(session, nil)
	sessionRepo.On("Revoke", ctx, session.TokenHash).Return(true, nil)
	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	sessionRepo.On("Create", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	tokens, err := svc.Refresh(ctx, token, "test-agent")

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, token, tokens.RefreshToken)

	sessionRepo.AssertExpectations(t)
}

func TestRefresh_ReusedToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("SecurePass123")
	token, session := refreshTokenForUser(t, user.ID)

	sessionRepo.On("GetByHash", ctx, session.TokenHash).Return(session, nil)
	// Another request already consumed the token: the conditional revoke
	// matches no row.
	sessionRepo.On("Revoke", ctx, session.TokenHash).Return(false, nil)

	_, err := svc.Refresh(ctx, token, "test-agent")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRefresh_RevokedSession(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("SecurePass123")
	token, session := refreshTokenForUser(t, user.ID)
	session.IsRevoked = true

	sessionRepo.On("GetByHash", ctx, session.TokenHash).Return(session, nil)

	_, err := svc.Refresh(ctx, token, "test-agent")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	sessionRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

func TestRefresh_SessionOwnedByAnotherUser(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("SecurePass123")
	token, session := refreshTokenForUser(t, user.ID)
	session.UserID = uuid.New().String()

	sessionRepo.On("GetByHash", ctx, session.TokenHash).Return(session, nil)

	_, err := svc.Refresh(ctx, token, "test-agent")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	sessionRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

func TestRefresh_UnknownSession(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("SecurePass123")
	token, session := refreshTokenForUser(t, user.ID)

	sessionRepo.On("GetByHash", ctx, session.TokenHash).Return(nil, apperrors.ErrNotFound)

	_, err := svc.Refresh(ctx, token, "test-agent")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	_, err := svc.Refresh(context.Background(), "not-a-jwt", "test-agent")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	// An access token must never pass refresh verification, even though it is
	// validly signed.
	access, err := newTestCodec().IssueAccess(uuid.New().String())
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), access, "test-agent")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// --- Logout Tests ---

func TestLogout_Success(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), sessionRepo)
	ctx := context.Background()

	token, session := refreshTokenForUser(t, uuid.New().String())
	sessionRepo.On("Revoke", ctx, session.TokenHash).Return(true, nil)

	err := svc.Logout(ctx, token)

	require.NoError(t, err)
	sessionRepo.AssertExpectations(t)
}

func TestLogout_AlreadyRevoked(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), sessionRepo)
	ctx := context.Background()

	token, session := refreshTokenForUser(t, uuid.New().String())
	sessionRepo.On("Revoke", ctx, session.TokenHash).Return(false, nil)

	err := svc.Logout(ctx, token)

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogoutAll_ReturnsCount(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), sessionRepo)
	ctx := context.Background()

	userID := uuid.New().String()
	sessionRepo.On("RevokeAllForUser", ctx, userID).Return(int64(3), nil)

	count, err := svc.LogoutAll(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestLogoutAll_NoActiveSessions(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), sessionRepo)
	ctx := context.Background()

	userID := uuid.New().String()
	sessionRepo.On("RevokeAllForUser", ctx, userID).Return(int64(0), nil)

	count, err := svc.LogoutAll(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

// --- ChangePassword Tests ---

func TestChangePassword_Success_RevokesAllSessions(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("OldPassword1")
	oldHash := user.PasswordHash

	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)
	sessionRepo.On("RevokeAllForUser", ctx, user.ID).Return(int64(2), nil)

	err := svc.ChangePassword(ctx, user.ID, "OldPassword1", "NewPassword2")

	require.NoError(t, err)
	assert.NotEqual(t, oldHash, user.PasswordHash)
	userRepo.AssertExpectations(t)
	sessionRepo.AssertExpectations(t)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("OldPassword1")
	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)

	err := svc.ChangePassword(ctx, user.ID, "NotTheRightOne1", "NewPassword2")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	sessionRepo.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
}

func TestChangePassword_SameAsCurrent(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	err := svc.ChangePassword(context.Background(), uuid.New().String(), "SamePassword1", "SamePassword1")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestChangePassword_WeakNewPassword(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	err := svc.ChangePassword(context.Background(), uuid.New().String(), "OldPassword1", "weak")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- DeleteAccount Tests ---

func TestDeleteAccount_RevokesSessionsBeforeDelete(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	user := testUser("SecurePass123")

	var order []string
	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	sessionRepo.On("RevokeAllForUser", ctx, user.ID).Return(int64(1), nil).Run(func(mock.Arguments) {
		order = append(order, "revoke")
	})
	userRepo.On("SoftDelete", ctx, user.ID).Return(nil).Run(func(mock.Arguments) {
		order = append(order, "delete")
	})

	err := svc.DeleteAccount(ctx, user.ID)

	require.NoError(t, err)
	// No window where a live session outlasts the account.
	assert.Equal(t, []string{"revoke", "delete"}, order)
}

func TestDeleteAccount_UserNotFound(t *testing.T) {
	userRepo := new(mockUserRepository)
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(userRepo, sessionRepo)
	ctx := context.Background()

	id := uuid.New().String()
	userRepo.On("GetByID", ctx, id).Return(nil, apperrors.ErrNotFound)

	err := svc.DeleteAccount(ctx, id)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	sessionRepo.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
}

// --- Sweep / Authenticate Tests ---

func TestSweepExpiredSessions(t *testing.T) {
	sessionRepo := new(mockSessionRepository)
	svc := newTestAuthService(new(mockUserRepository), sessionRepo)
	ctx := context.Background()

	sessionRepo.On("DeleteExpired", ctx).Return(int64(5), nil)

	count, err := svc.SweepExpiredSessions(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestAuthenticate_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestAuthService(userRepo, new(mockSessionRepository))
	ctx := context.Background()

	user := testUser("SecurePass123")
	access, err := newTestCodec().IssueAccess(user.ID)
	require.NoError(t, err)

	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)

	got, err := svc.Authenticate(ctx, access)

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestAuthService(userRepo, new(mockSessionRepository))
	ctx := context.Background()

	id := uuid.New().String()
	access, err := newTestCodec().IssueAccess(id)
	require.NoError(t, err)

	userRepo.On("GetByID", ctx, id).Return(nil, apperrors.ErrNotFound)

	_, err = svc.Authenticate(ctx, access)

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newTestAuthService(userRepo, new(mockSessionRepository))
	ctx := context.Background()

	user := testUser("SecurePass123")
	user.IsActive = false
	access, err := newTestCodec().IssueAccess(user.ID)
	require.NoError(t, err)

	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)

	_, err = svc.Authenticate(ctx, access)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockSessionRepository))

	refresh, err := newTestCodec().IssueRefresh(uuid.New().String())
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), refresh)

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
