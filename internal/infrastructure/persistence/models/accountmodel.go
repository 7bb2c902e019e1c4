package models

import (
	"time"

	"gorm.io/gorm"
)

// AccountModel represents the database persistence model for accounts.
// This is the anti-corruption layer between domain and database.
type AccountModel struct {
	ID           uint    `gorm:"primarykey"`
	SID          string  `gorm:"uniqueIndex;not null;size:32;column:sid"`
	Email        string  `gorm:"uniqueIndex;not null;size:255"`
	Name         string  `gorm:"not null;size:100"`
	AvatarURL    *string `gorm:"size:500"`
	Role         string  `gorm:"not null;default:client;size:20"`
	Verified     bool    `gorm:"default:false"`
	AuthMethod   string  `gorm:"not null;size:30;column:auth_method"`
	PasswordHash *string `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}
