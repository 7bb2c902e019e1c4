package models

import "time"

// LinkedAccountModel represents the database persistence model for
// external identity links. The composite unique index on (provider,
// subject_id) is what serializes racing reconciliations; the one on
// (account_id, provider) caps an account at one link per provider.
type LinkedAccountModel struct {
	ID            uint   `gorm:"primarykey"`
	SID           string `gorm:"uniqueIndex;not null;size:32;column:sid"`
	AccountID     uint   `gorm:"not null;uniqueIndex:idx_account_provider"`
	Provider      string `gorm:"not null;size:50;uniqueIndex:idx_provider_subject;uniqueIndex:idx_account_provider"`
	SubjectID     string `gorm:"not null;size:255;uniqueIndex:idx_provider_subject;column:subject_id"`
	Email         string `gorm:"size:255"`
	DisplayName   string `gorm:"size:100"`
	AvatarURL     string `gorm:"size:500"`
	EmailVerified bool   `gorm:"default:false"`
	LastLoginAt   *time.Time
	LoginCount    uint `gorm:"default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (LinkedAccountModel) TableName() string {
	return "linked_accounts"
}
