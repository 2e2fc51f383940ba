package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	apperrors "github.com/spartak030506-hash/fastapi-shop-1/pkg/errors"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/pagination"
)

func newTestUserService(repo *mockUserRepository) *UserService {
	return NewUserService(repo, newTestLogger())
}

func TestGetProfile_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	user := testUser("Str0ngPassword")
	repo.On("GetByID", ctx, user.ID).Return(user, nil)

	got, err := svc.GetProfile(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestGetProfile_NotFound(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetProfile(ctx, "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	user := testUser("Str0ngPassword")
	originalLast := user.LastName
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		FirstName: strPtr("Jane"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Jane", updated.FirstName)
	assert.Equal(t, originalLast, updated.LastName)
}

func TestUpdateProfile_EmptyFirstNameRejected(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	user := testUser("Str0ngPassword")
	repo.On("GetByID", ctx, user.ID).Return(user, nil)

	_, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		FirstName: strPtr(""),
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProfile_ClearPhoneAllowed(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	user := testUser("Str0ngPassword")
	user.Phone = "+1234567890"
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		Phone: strPtr(""),
	})

	require.NoError(t, err)
	assert.Empty(t, updated.Phone)
}

func TestListUsers(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	user := testUser("Str0ngPassword")
	params := pagination.DefaultParams()
	repo.On("List", ctx, params).Return([]domain.User{*user}, 1, nil)

	users, total, err := svc.ListUsers(ctx, params)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)
}
