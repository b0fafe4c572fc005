package service

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/repository"
	"github.com/warblerhq/warbler/internal/utils"
	"github.com/warblerhq/warbler/pkg/logger"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameTooLong  = errors.New("username must be at most 50 characters")
	ErrEmailTooLong     = errors.New("email must be at most 100 characters")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailTaken       = errors.New("email already taken")
)

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Signup hashes the password and inserts the user. Missing fields fail
// before anything touches the database; username/email collisions surface
// from the insert itself and are mapped to the taken-errors.
func (s *AuthService) Signup(username, email, password, imageURL string) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing signup",
		zap.String("username", username),
		zap.String("email", email),
	)

	if err := validateSignupInput(username, email, password); err != nil {
		logger.Log.Warn("Signup validation failed",
			zap.String("username", username),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password",
			zap.Error(err),
		)
		return nil, err
	}

	if imageURL == "" {
		imageURL = models.DefaultImageURL
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hashedPassword,
		ImageURL:       imageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		mapped := mapUniqueViolation(err)
		if mapped != err {
			logger.Log.Warn("Signup hit unique constraint",
				zap.String("username", username),
				zap.String("email", email),
				zap.Error(mapped),
			)
			return nil, mapped
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User signed up successfully",
		zap.Uint("user_id", user.ID),
		zap.String("username", username),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

// Authenticate looks the user up by username and verifies the password.
// (nil, nil) is the no-match result; it is not an error.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	logger.Log.Debug("Processing authentication",
		zap.String("username", username),
	)

	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to look up user",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		logger.Log.Warn("Authentication failed: unknown username",
			zap.String("username", username),
		)
		return nil, nil
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}
	if !valid {
		logger.Log.Warn("Authentication failed: invalid password",
			zap.String("username", username),
			zap.Uint("user_id", user.ID),
		)
		return nil, nil
	}

	logger.Log.Info("User authenticated",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, nil
}

func validateSignupInput(username, email, password string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if len(username) > 50 {
		return ErrUsernameTooLong
	}
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 100 {
		return ErrEmailTooLong
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// mapUniqueViolation translates driver unique-constraint errors into the
// service sentinels. Both the sqlite message ("UNIQUE constraint failed:
// users.username") and the postgres one (constraint name
// idx_users_username) mention the offending column.
func mapUniqueViolation(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique") && !strings.Contains(msg, "duplicate") {
		return err
	}
	if strings.Contains(msg, "username") {
		return ErrUsernameTaken
	}
	if strings.Contains(msg, "email") {
		return ErrEmailTaken
	}
	return err
}
