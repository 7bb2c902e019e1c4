package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEventModel persists the login audit trail. Rows are append-only.
type AuditEventModel struct {
	ID                uint   `gorm:"primarykey"`
	SID               string `gorm:"uniqueIndex;not null;size:32;column:sid"`
	EventType         string `gorm:"not null;size:20;index:idx_audit_event_type"`
	Provider          string `gorm:"not null;size:50"`
	CorrelationID     string `gorm:"size:64;index:idx_audit_correlation"`
	AccountSID        string `gorm:"size:32;index:idx_audit_account_sid;column:account_sid"`
	ExternalSubjectID string `gorm:"size:255;column:external_subject_id"`
	Context           datatypes.JSON
	Error             string `gorm:"size:1000"`
	OccurredAt        time.Time
	CreatedAt         time.Time
}

// TableName specifies the table name for GORM
func (AuditEventModel) TableName() string {
	return "audit_events"
}
