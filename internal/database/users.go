package database

import (
	"errors"

	"real-estate-site/internal/models"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a username does not resolve to a row.
var ErrUserNotFound = errors.New("user not found")

// GetUserByUsername retrieves a user by username
func (gdb *GormDB) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := gdb.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user row
func (gdb *GormDB) CreateUser(user *models.User) error {
	return gdb.db.Create(user).Error
}

// SaveUser persists lockout counters and other mutable user fields
func (gdb *GormDB) SaveUser(user *models.User) error {
	return gdb.db.Save(user).Error
}

// CountUsers returns the number of user rows
func (gdb *GormDB) CountUsers() (int64, error) {
	var count int64
	err := gdb.db.Model(&models.User{}).Count(&count).Error
	return count, err
}
