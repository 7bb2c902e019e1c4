package models

import "time"

// RefreshTokenModel tracks issued refresh tokens by hash so they can be
// revoked and rotated. The raw token never touches the database.
type RefreshTokenModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"uniqueIndex;not null;size:32;column:sid"`
	AccountID uint   `gorm:"not null;index:idx_refresh_account_id"`
	TokenHash string `gorm:"uniqueIndex;not null;size:64;column:token_hash"`
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}
