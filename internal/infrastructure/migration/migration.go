package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/servana-inc/servana/internal/shared/constants"
	"github.com/servana-inc/servana/internal/shared/logger"
)

// Manager runs the schema migration appropriate for the environment.
type Manager struct {
	db          *gorm.DB
	environment string
	scriptsPath string
	logger      logger.Interface
}

// NewManager creates a migration manager for the given environment.
func NewManager(db *gorm.DB, environment, scriptsPath string) *Manager {
	return &Manager{
		db:          db,
		environment: environment,
		scriptsPath: scriptsPath,
		logger:      logger.NewLogger().Named("migration"),
	}
}

// Run selects a strategy by environment and applies it. Development uses
// GORM auto-migrate, everything else runs the versioned SQL scripts.
func (m *Manager) Run() error {
	strategy := m.selectStrategy()
	m.logger.Infow("running migrations",
		"environment", m.environment,
		"strategy", strategy.GetName())

	if err := strategy.Migrate(m.db, AutoMigrateModels()...); err != nil {
		return fmt.Errorf("migration failed (%s): %w", strategy.GetName(), err)
	}
	return nil
}

// Rollback reverts the given number of steps. Only supported with the
// script-based strategy.
func (m *Manager) Rollback(steps int) error {
	strategy, ok := m.selectStrategy().(*GolangMigrateStrategy)
	if !ok {
		return fmt.Errorf("rollback is not supported in %s environment", m.environment)
	}
	return strategy.MigrateDown(m.db, steps)
}

// Force sets the schema version, clearing a dirty flag after a failed run.
func (m *Manager) Force(version int) error {
	strategy, ok := m.selectStrategy().(*GolangMigrateStrategy)
	if !ok {
		return fmt.Errorf("force is not supported in %s environment", m.environment)
	}
	return strategy.Force(m.db, version)
}

func (m *Manager) selectStrategy() Strategy {
	if m.environment == constants.EnvDevelopment {
		return NewGormAutoMigrateStrategy()
	}
	return NewGolangMigrateStrategy(m.scriptsPath)
}
