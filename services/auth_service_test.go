package services

import (
	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		handle := "test@example.com"
		password := "ComplexPass123!"
		expectedUserID := "user-uuid"

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(handle, gomock.Any()).
			Return(expectedUserID, nil).
			Times(1)

		token, err := svc.Register(handle, password)

		req.NoError(err)
		req.NotEmpty(token)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		handle := "test@example.com"
		password := "simple"

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		token, err := svc.Register(handle, password)

		req.Error(err)
		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)
		handle := "duplicate@example.com"
		password := "ComplexPass123!"

		mockRepo.EXPECT().
			CreateUser(handle, gomock.Any()).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		token, err := svc.Register(handle, password)

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
		req.Empty(token)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, 24*time.Hour)

	t.Run("should login with valid credentials", func(t *testing.T) {
		req := require.New(t)
		handle := "alice@example.com"
		password := "ComplexPass123!"

		hash, err := auth.HashPassword(password)
		req.NoError(err)

		mockRepo.EXPECT().
			GetUserByHandle(handle).
			Return(repositories.User{
				ID:           "user-uuid",
				Handle:       handle,
				PasswordHash: hash,
				Roles:        []string{"user"},
			}, nil).
			Times(1)

		token, err := svc.Login(handle, password)
		req.NoError(err)
		req.NotEmpty(token)
	})

	t.Run("should reject wrong password", func(t *testing.T) {
		req := require.New(t)
		handle := "alice@example.com"

		hash, err := auth.HashPassword("ComplexPass123!")
		req.NoError(err)

		mockRepo.EXPECT().
			GetUserByHandle(handle).
			Return(repositories.User{Handle: handle, PasswordHash: hash}, nil).
			Times(1)

		token, err := svc.Login(handle, "WrongPass456!!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
		req.Empty(token)
	})

	t.Run("should reject unknown handle without leaking existence", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByHandle("ghost@example.com").
			Return(repositories.User{}, errors.ErrUnknownParticipant).
			Times(1)

		token, err := svc.Login("ghost@example.com", "ComplexPass123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
		req.Empty(token)
	})
}
