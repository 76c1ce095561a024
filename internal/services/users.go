package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/clinicxz/backend/internal/auth"
	"github.com/clinicxz/backend/internal/models"
)

// DefaultAccounts are created by SeedUsers on an empty users table.
// Placeholder credentials for a fresh install, not a security boundary.
var DefaultAccounts = []struct{ Username, Password string }{
	{"therapist1", "password123"},
	{"therapist2", "password123"},
}

type Users struct {
	db *gorm.DB
}

func NewUsers(gdb *gorm.DB) *Users {
	return &Users{db: gdb}
}

// SeedUsers creates the default staff accounts when no user exists yet.
// It reports how many accounts were created.
func (s *Users) SeedUsers(ctx context.Context) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, a := range DefaultAccounts {
			if _, err := createUser(tx, a.Username, a.Password); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed users: %w", err)
	}
	if created > 0 {
		log.Warn().Int("count", created).Msg("seeded default staff accounts; change their passwords")
	}
	return created, nil
}

// Create registers a new staff account.
func (s *Users) Create(ctx context.Context, username, password string) (*models.User, error) {
	var u *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", strings.TrimSpace(username)).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return invalid("username %q already taken", username)
		}
		var err error
		u, err = createUser(tx, username, password)
		return err
	})
	return u, err
}

func createUser(tx *gorm.DB, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid("username and password are required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := models.User{Username: username, HashedPassword: hash, IsActive: true}
	if err := tx.Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate checks a username/password pair against the stored hash.
func (s *Users) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.ActiveUser(ctx, username)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.HashedPassword, password) {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// ActiveUser loads an active user by username.
func (s *Users) ActiveUser(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("user %q inactive: %w", username, ErrUnauthorized)
	}
	return &u, nil
}
