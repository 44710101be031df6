package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	"it-asset-dashboard/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const completedStatus = string(domainMaintenance.StatusCompleted)

// ScheduleRepository implements maintenance.Repository on top of gorm.
type ScheduleRepository struct {
	db *DB
}

func NewScheduleRepository(db *DB) domainMaintenance.Repository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, s *domainMaintenance.Schedule) error {
	stampNew(s)

	dbModel := toScheduleModel(s)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return domainMaintenance.ErrOpenScheduleExists
		}
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	s.ID = dbModel.ID
	return nil
}

// InsertIfNoneOpen leans on ux_schedules_open_device: a conflicting row is
// skipped by the database instead of raising an error.
func (r *ScheduleRepository) InsertIfNoneOpen(ctx context.Context, s *domainMaintenance.Schedule) (bool, error) {
	stampNew(s)

	dbModel := toScheduleModel(s)
	result := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(dbModel)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	s.ID = dbModel.ID
	return true, nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, scheduleID uint) (*domainMaintenance.Schedule, error) {
	var dbModel models.MaintenanceScheduleModel
	err := r.db.DB.WithContext(ctx).Where("id = ?", scheduleID).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainMaintenance.ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	return toScheduleEntity(&dbModel), nil
}

func (r *ScheduleRepository) Update(ctx context.Context, s *domainMaintenance.Schedule) error {
	s.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.MaintenanceScheduleModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"device_id":        s.DeviceID,
			"technician_id":    s.TechnicianID,
			"maintenance_type": s.MaintenanceType,
			"scheduled_date":   s.ScheduledDate,
			"completed_date":   s.CompletedDate,
			"status":           string(domainMaintenance.Normalize(s.Status)),
			"description":      s.Description,
			"notes":            s.Notes,
			"updated_at":       s.UpdatedAt,
		})

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainMaintenance.ErrOpenScheduleExists
		}
		return fmt.Errorf("failed to update schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainMaintenance.ErrScheduleNotFound
	}

	return nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, scheduleID uint) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", scheduleID).
		Delete(&models.MaintenanceScheduleModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainMaintenance.ErrScheduleNotFound
	}

	return nil
}

func (r *ScheduleRepository) List(ctx context.Context, filter *domainMaintenance.Filter) ([]*domainMaintenance.Schedule, error) {
	db := r.db.DB.WithContext(ctx).Model(&models.MaintenanceScheduleModel{})

	if filter != nil {
		if filter.DeviceID != nil {
			db = db.Where("device_id = ?", *filter.DeviceID)
		}
		if filter.Status != nil {
			db = db.Where("LOWER(status) = ?", string(domainMaintenance.Normalize(*filter.Status)))
		}
	}

	var dbModels []models.MaintenanceScheduleModel
	if err := db.Order("scheduled_date DESC, id DESC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	return toScheduleEntities(dbModels), nil
}

func (r *ScheduleRepository) FindOpenByDevice(ctx context.Context, deviceID uint) ([]*domainMaintenance.Schedule, error) {
	var dbModels []models.MaintenanceScheduleModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND LOWER(status) <> ?", deviceID, completedStatus).
		Order("id DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find open schedules: %w", err)
	}

	return toScheduleEntities(dbModels), nil
}

func (r *ScheduleRepository) CompleteLatestOpen(ctx context.Context, deviceID uint, completedOn time.Time) (*domainMaintenance.Schedule, error) {
	var dbModel models.MaintenanceScheduleModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ? AND LOWER(status) <> ?", deviceID, completedStatus).
		Order("id DESC").
		Take(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open schedule: %w", err)
	}

	now := time.Now()
	// The status guard keeps a concurrent completion from being overwritten.
	result := r.db.DB.WithContext(ctx).
		Model(&models.MaintenanceScheduleModel{}).
		Where("id = ? AND LOWER(status) <> ?", dbModel.ID, completedStatus).
		Updates(map[string]interface{}{
			"status":         completedStatus,
			"completed_date": completedOn,
			"updated_at":     now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to complete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	s := toScheduleEntity(&dbModel)
	s.Status = domainMaintenance.StatusCompleted
	s.CompletedDate = &completedOn
	s.UpdatedAt = now
	return s, nil
}

func (r *ScheduleRepository) DeleteByDevice(ctx context.Context, deviceID uint) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Delete(&models.MaintenanceScheduleModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete device schedules: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ScheduleRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.MaintenanceScheduleModel{}).
		Where("LOWER(status) <> ?", completedStatus).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count open schedules: %w", err)
	}
	return count, nil
}

func stampNew(s *domainMaintenance.Schedule) {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = domainMaintenance.StatusPending
	}
}

func toScheduleModel(s *domainMaintenance.Schedule) *models.MaintenanceScheduleModel {
	return &models.MaintenanceScheduleModel{
		ID:              s.ID,
		DeviceID:        s.DeviceID,
		TechnicianID:    s.TechnicianID,
		MaintenanceType: s.MaintenanceType,
		ScheduledDate:   s.ScheduledDate,
		CompletedDate:   s.CompletedDate,
		Status:          string(domainMaintenance.Normalize(s.Status)),
		Description:     s.Description,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func toScheduleEntity(m *models.MaintenanceScheduleModel) *domainMaintenance.Schedule {
	return &domainMaintenance.Schedule{
		ID:              m.ID,
		DeviceID:        m.DeviceID,
		TechnicianID:    m.TechnicianID,
		MaintenanceType: m.MaintenanceType,
		ScheduledDate:   m.ScheduledDate,
		CompletedDate:   m.CompletedDate,
		Status:          domainMaintenance.Normalize(domainMaintenance.Status(m.Status)),
		Description:     m.Description,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toScheduleEntities(dbModels []models.MaintenanceScheduleModel) []*domainMaintenance.Schedule {
	schedules := make([]*domainMaintenance.Schedule, len(dbModels))
	for i := range dbModels {
		schedules[i] = toScheduleEntity(&dbModels[i])
	}
	return schedules
}
