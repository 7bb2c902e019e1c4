// Package audit persists the federated-login audit trail.
package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/servana-inc/servana/internal/domain/audit"
	"github.com/servana-inc/servana/internal/infrastructure/persistence/models"
	"github.com/servana-inc/servana/internal/shared/id"
	"github.com/servana-inc/servana/internal/shared/logger"
)

// GormAuditSink writes audit events to the database and mirrors them to
// the structured log. Recording is best-effort: a failed insert is logged
// and swallowed so the login flow never stalls on bookkeeping.
type GormAuditSink struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewGormAuditSink creates a new GormAuditSink.
func NewGormAuditSink(db *gorm.DB, log logger.Interface) *GormAuditSink {
	return &GormAuditSink{db: db, logger: log.Named("audit")}
}

func (s *GormAuditSink) Record(ctx context.Context, event audit.Event) {
	var contextJSON []byte
	if event.Context != nil {
		data, err := json.Marshal(event.Context)
		if err != nil {
			s.logger.Warnw("failed to marshal audit context", "error", err)
		} else {
			contextJSON = data
		}
	}

	model := &models.AuditEventModel{
		SID:               id.MustGenerateWithPrefix(id.PrefixAuditEvent, id.DefaultLength),
		EventType:         string(event.Type),
		Provider:          event.Provider,
		CorrelationID:     event.CorrelationID,
		AccountSID:        event.AccountSID,
		ExternalSubjectID: event.ExternalSubjectID,
		Context:           contextJSON,
		Error:             event.Error,
		OccurredAt:        event.OccurredAt,
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		s.logger.Errorw("failed to persist audit event",
			"error", err,
			"event_type", event.Type,
			"correlation_id", event.CorrelationID,
		)
	}

	s.logger.Infow("auth event",
		"event_type", event.Type,
		"provider", event.Provider,
		"correlation_id", event.CorrelationID,
		"account_sid", event.AccountSID,
		"error", event.Error,
	)
}
