package postgres

import (
	"fmt"

	"it-asset-dashboard/internal/infrastructure/database/postgres/models"
	"it-asset-dashboard/internal/logger"
)

// Migrate creates or updates the schema, including the partial unique
// index on open maintenance schedules.
func (d *DB) Migrate() error {
	err := d.DB.AutoMigrate(
		&models.TechnicianModel{},
		&models.UserModel{},
		&models.DeviceModel{},
		&models.MaintenanceScheduleModel{},
		&models.AlertModel{},
		&models.ActivityLogModel{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("Database schema migrated")
	return nil
}
