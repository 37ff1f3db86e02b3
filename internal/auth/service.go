package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"batchbook/internal/exceptions"
	"batchbook/models"
)

const invalidCredentials = "Invalid login credentials"

// Service manages accounts: registration, password sign-in and profile
// metadata. Sessions are the concern of the session package.
type Service struct {
	db   *gorm.DB
	cost int
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy of the service hashing with the given bcrypt cost.
func (s *Service) WithCost(cost int) *Service {
	clone := *s
	clone.cost = cost
	return &clone
}

// SignUp registers a new account with its profile metadata.
func (s *Service) SignUp(ctx context.Context, email, password string, meta Metadata) (*models.User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	normalized := normalizeEmail(email)
	if _, err := s.findByEmail(ctx, normalized); err == nil {
		return nil, exceptions.InvalidInput("An account with that email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, exceptions.Backend("Authentication failed", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, exceptions.Backend("Authentication failed", err)
	}

	user := &models.User{
		Email:        normalized,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(meta.FirstName),
		LastName:     strings.TrimSpace(meta.LastName),
		Username:     meta.Username,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, exceptions.Backend("Authentication failed", err)
	}
	return user, nil
}

// SignIn verifies an email and password pair.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, exceptions.InvalidInput("Email and password are required")
	}

	user, err := s.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exceptions.Authentication(invalidCredentials)
		}
		return nil, exceptions.Backend("Authentication failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, exceptions.Authentication(invalidCredentials)
	}
	return user, nil
}

// GetUser loads an account by id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exceptions.NotFound("user", id)
		}
		return nil, exceptions.Backend("Failed to load profile", err)
	}
	return user, nil
}

// UpdateMetadata replaces the profile metadata of the account.
func (s *Service) UpdateMetadata(ctx context.Context, id string, meta Metadata) (*models.User, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"first_name": strings.TrimSpace(meta.FirstName),
		"last_name":  strings.TrimSpace(meta.LastName),
		"username":   meta.Username,
	})
	if result.Error != nil {
		return nil, exceptions.Backend("Failed to update profile", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, exceptions.NotFound("user", id)
	}
	return s.GetUser(ctx, id)
}

func (s *Service) findByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.WithContext(ctx).Where("lower(email) = ?", email).Take(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
