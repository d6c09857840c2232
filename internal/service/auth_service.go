package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"finplan/internal/auth"
	"finplan/internal/models"
	"finplan/internal/repository"
	"finplan/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo      *repository.UserRepository
	sessions      *auth.Sessions
	emailService  *EmailService
	resetTokenTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, sessions *auth.Sessions, emailService *EmailService, resetTokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		sessions:      sessions,
		emailService:  emailService,
		resetTokenTTL: resetTokenTTL,
	}
}

// Register creates a new user account and returns a signed session token
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validation.ValidateEmail(email); err != nil {
		return "", nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return "", nil, err
	}
	if err := validation.ValidateName("first_name", firstName); err != nil {
		return "", nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return "", nil, ErrEmailTaken
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, strings.TrimSpace(firstName), strings.TrimSpace(lastName))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.sessions.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	// Welcome email is best effort; registration already succeeded
	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(ctx, user.Email, user.FirstName); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return token, user, nil
}

// Login authenticates a user and returns a signed session token
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return token, user, nil
}

// GetUser retrieves a user by ID, nil when absent
func (s *AuthService) GetUser(userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// RequestPasswordReset stores a reset token for the account and emails the
// reset link. An unknown email is not an error; the caller must respond the
// same either way so account existence can't be probed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(s.resetTokenTTL)
	if err := s.userRepo.SetResetToken(user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	// A delivery failure must not leak account existence either, so it is
	// logged rather than surfaced.
	if s.emailService != nil {
		if err := s.emailService.SendPasswordResetEmail(ctx, user.Email, user.FirstName, token); err != nil {
			log.Printf("Failed to send password reset email to %s: %v", user.Email, err)
		}
	}

	return nil
}

// ConfirmPasswordReset sets a new password for the account holding the reset
// token. The token is cleared in the same statement, so it can only be
// redeemed once even under concurrent requests.
func (s *AuthService) ConfirmPasswordReset(token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.userRepo.ConsumeResetToken(token, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if userID == 0 {
		return ErrInvalidResetToken
	}

	return nil
}
