package postgres

import (
	"context"
	"fmt"
	"time"

	domainAlert "it-asset-dashboard/internal/domain/alert"
	"it-asset-dashboard/internal/infrastructure/database/postgres/models"
)

type AlertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) domainAlert.Repository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a *domainAlert.Alert) error {
	m := &models.AlertModel{
		DeviceID:  a.DeviceID,
		AlertType: a.AlertType,
		Severity:  a.Severity,
		Message:   a.Message,
		Resolved:  a.Resolved,
		CreatedAt: a.CreatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	if err := r.db.DB.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	a.ID = m.ID
	a.CreatedAt = m.CreatedAt
	return nil
}

func (r *AlertRepository) ListByDevice(ctx context.Context, deviceID uint) ([]*domainAlert.Alert, error) {
	var dbModels []models.AlertModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	alerts := make([]*domainAlert.Alert, len(dbModels))
	for i, m := range dbModels {
		alerts[i] = &domainAlert.Alert{
			ID:        m.ID,
			DeviceID:  m.DeviceID,
			AlertType: m.AlertType,
			Severity:  m.Severity,
			Message:   m.Message,
			Resolved:  m.Resolved,
			CreatedAt: m.CreatedAt,
		}
	}
	return alerts, nil
}

func (r *AlertRepository) DeleteByDevice(ctx context.Context, deviceID uint) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Delete(&models.AlertModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete device alerts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *AlertRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.AlertModel{}).
		Where("resolved = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}
