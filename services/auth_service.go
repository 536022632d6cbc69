package services

import (
	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/repositories"
	"fmt"
	"time"
)

type IAuthService interface {
	Login(handle, password string) (Token, error)
	Register(handle, password string) (Token, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokenDuration  time.Duration
}

type Token string

func NewAuthService(repo repositories.IUserRepository, tokenDuration time.Duration) IAuthService {
	return &AuthService{userRepository: repo, tokenDuration: tokenDuration}
}

func (s *AuthService) Register(handle, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Handle:   handle,
		Password: password,
	}

	// 1. Validate business rules (handle format, password complexity)
	// before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id.
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the account with the generated hash.
	userID, err := s.userRepository.CreateUser(handle, hashedPassword)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists if the handle is taken
	}

	// 4. Issue the initial session token.
	token, err := auth.GenerateToken(userID, handle, []string{"user"}, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

// Login verifies credentials and issues a JWT. Availability is left
// untouched: only the explicit toggle endpoint changes it.
func (s *AuthService) Login(handle, password string) (Token, error) {
	user, err := s.userRepository.GetUserByHandle(handle)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Handle, user.Roles, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
