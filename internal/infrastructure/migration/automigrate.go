package migration

import (
	"github.com/servana-inc/servana/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.AccountModel{},
		&models.LinkedAccountModel{},
		&models.RefreshTokenModel{},
		&models.AuditEventModel{},
	}
}
