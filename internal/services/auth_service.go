package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/events"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidUsername      = errors.New("username may only contain lowercase letters, digits and underscores")
	ErrUsernameTooLong      = errors.New("username is too long")
	ErrEmailRequired        = errors.New("email is required")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrFullNameTooLong      = errors.New("full name is too long")
	ErrUserNotFound         = errors.New("user not found")
	ErrUnknownField         = errors.New("field must be username or email")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles registration, login and profile changes.
type AuthService struct {
	userRepo  repository.UserRepository
	publisher events.Publisher
}

// NewAuthService creates a new AuthService. publisher may be nil.
func NewAuthService(userRepo repository.UserRepository, publisher events.Publisher) *AuthService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AuthService{
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Register validates the input and creates the user. Nothing is written when
// validation or a uniqueness check fails.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if !ValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if utf8.RuneCountInString(username) > constants.MaxUsernameLength {
		return nil, ErrUsernameTooLong
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	if utf8.RuneCountInString(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		fullName = constants.DefaultFullName
	}
	if utf8.RuneCountInString(fullName) > constants.MaxFullNameLength {
		return nil, ErrFullNameTooLong
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     fullName,
	}

	if err := s.userRepo.CreateUnique(user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrCreateUser):
			return nil, ErrFailedToCreateUser
		default:
			return nil, fmt.Errorf("failed to complete registration: %w", err)
		}
	}

	userID := user.ID
	if err := s.publisher.Publish(events.NewEvent(events.UserRegistered, &userID)); err != nil {
		log.Printf("Failed to publish %s event: %v", events.UserRegistered, err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication. Identifier is either
// the username or the email address.
type LoginInput struct {
	Identifier string
	Password   string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByLogin(strings.TrimSpace(input.Identifier))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateProfileInput lists the mutable profile fields; nil or empty values
// are left unchanged. The username cannot be changed.
type UpdateProfileInput struct {
	FullName        *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile changes the user's display name, email or password.
// A password change requires the current password.
func (s *AuthService) UpdateProfile(userID uint64, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		fullName := strings.TrimSpace(*input.FullName)
		if fullName == "" {
			fullName = constants.DefaultFullName
		}
		if utf8.RuneCountInString(fullName) > constants.MaxFullNameLength {
			return nil, ErrFullNameTooLong
		}
		user.FullName = fullName
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != user.Email {
			taken, err := s.userRepo.ExistsExcept(constants.UniquenessFieldMail, email, user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				return nil, ErrEmailTaken
			}
			user.Email = email
		}
	}

	if input.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
			return nil, ErrInvalidCredentials
		}
		if utf8.RuneCountInString(input.NewPassword) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// CheckUniqueness reports whether a user already has the given username or
// email. It never writes.
func (s *AuthService) CheckUniqueness(field, value string) (bool, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if field != constants.UniquenessFieldUser && field != constants.UniquenessFieldMail {
		return false, ErrUnknownField
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}

	exists, err := s.userRepo.Exists(field, value)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", field, err)
	}
	return exists, nil
}
