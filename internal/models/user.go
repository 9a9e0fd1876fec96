package models

import "time"

// User represents a staff account that can sign in to the application
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:180;not null" json:"email"`
	PasswordHash string `gorm:"size:200;not null" json:"-"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
