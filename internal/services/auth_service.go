package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/epms/epms/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterUser creates a new staff account with a bcrypt password hash.
// Username and email collisions are checked with a single existence query.
func RegisterUser(db *gorm.DB, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", username, email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateUser
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Authenticate verifies credentials by exact username. A missing user and a
// wrong password return the same error so accounts cannot be enumerated.
func Authenticate(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// EnsureDefaultAdmin creates the bootstrap admin account if it does not
// exist. Check-then-create runs in one transaction so concurrent cold starts
// cannot race a duplicate admin into the table.
func EnsureDefaultAdmin(db *gorm.DB, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&models.User{
			Username:     "admin",
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			IsAdmin:      true,
		}).Error
	})
}
