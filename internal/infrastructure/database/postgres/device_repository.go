package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainDevice "it-asset-dashboard/internal/domain/device"
	"it-asset-dashboard/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

// sortable device columns accepted from list requests
var deviceSortColumns = map[string]string{
	"id":                    "devices.id",
	"device_name":           "devices.device_name",
	"serial_number":         "devices.serial_number",
	"status":                "devices.status",
	"next_maintenance_date": "devices.next_maintenance_date",
	"created_at":            "devices.created_at",
	"updated_at":            "devices.updated_at",
}

// DeviceRepository implements domain.Device.Repository interface
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, d *domainDevice.Device) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.Status == "" {
		d.Status = domainDevice.StatusActive
	}

	dbModel := toDeviceModel(d)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return domainDevice.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	d.ID = dbModel.ID
	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uint) (*domainDevice.Device, error) {
	return r.getOne(ctx, "devices.id = ?", deviceID)
}

func (r *DeviceRepository) GetBySerialNumber(ctx context.Context, serialNumber string) (*domainDevice.Device, error) {
	return r.getOne(ctx, "devices.serial_number = ?", serialNumber)
}

func (r *DeviceRepository) getOne(ctx context.Context, query string, arg interface{}) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Joins("AssignedTechnician").
		Where(query, arg).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) Update(ctx context.Context, d *domainDevice.Device) error {
	d.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"device_name":            d.DeviceName,
			"serial_number":          d.SerialNumber,
			"model":                  d.Model,
			"manufacturer":           d.Manufacturer,
			"status":                 string(domainDevice.Normalize(d.Status)),
			"location":               d.Location,
			"assigned_technician_id": d.AssignedTechnicianID,
			"purchase_date":          d.PurchaseDate,
			"warranty_expiry":        d.WarrantyExpiry,
			"last_maintenance_date":  d.LastMaintenanceDate,
			"next_maintenance_date":  d.NextMaintenanceDate,
			"notes":                  d.Notes,
			"updated_at":             d.UpdatedAt,
		})

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainDevice.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("failed to update device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) SetMaintenanceDates(ctx context.Context, deviceID uint, last, next *time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"last_maintenance_date": last,
			"next_maintenance_date": next,
			"updated_at":            time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to set maintenance dates: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) Delete(ctx context.Context, deviceID uint) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		Delete(&models.DeviceModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) List(ctx context.Context, filter *domainDevice.Filter) ([]*domainDevice.Device, int64, error) {
	var dbModels []models.DeviceModel
	var total int64

	if filter == nil {
		filter = &domainDevice.Filter{}
	}

	db := r.db.DB.WithContext(ctx).Model(&models.DeviceModel{}).
		Joins("AssignedTechnician")

	if filter.Status != nil {
		db = db.Where("LOWER(devices.status) = ?", string(domainDevice.Normalize(*filter.Status)))
	}
	if filter.TechnicianID != nil {
		db = db.Where("devices.assigned_technician_id = ?", *filter.TechnicianID)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		db = db.Where("(devices.device_name ILIKE ? OR devices.serial_number ILIKE ? OR devices.model ILIKE ?)",
			search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	sortBy := "devices.id"
	if column, ok := deviceSortColumns[strings.ToLower(filter.SortBy)]; ok {
		sortBy = column
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)

	err := db.Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
		Limit(limit).
		Offset(offset).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}

	return devices, total, nil
}

func (r *DeviceRepository) CountByStatus(ctx context.Context) (map[domainDevice.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Select("LOWER(status) AS status, COUNT(*) AS count").
		Group("LOWER(status)").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count devices by status: %w", err)
	}

	counts := make(map[domainDevice.Status]int64, len(rows))
	for _, row := range rows {
		counts[domainDevice.Normalize(domainDevice.Status(row.Status))] += row.Count
	}
	return counts, nil
}

func (r *DeviceRepository) UpcomingMaintenance(ctx context.Context, limit int) ([]*domainDevice.Device, error) {
	var dbModels []models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Joins("AssignedTechnician").
		Where("devices.next_maintenance_date IS NOT NULL").
		Order("devices.next_maintenance_date ASC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming maintenance: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}
	return devices, nil
}

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:                   d.ID,
		DeviceName:           d.DeviceName,
		SerialNumber:         d.SerialNumber,
		Model:                d.Model,
		Manufacturer:         d.Manufacturer,
		Status:               string(domainDevice.Normalize(d.Status)),
		Location:             d.Location,
		AssignedTechnicianID: d.AssignedTechnicianID,
		PurchaseDate:         d.PurchaseDate,
		WarrantyExpiry:       d.WarrantyExpiry,
		LastMaintenanceDate:  d.LastMaintenanceDate,
		NextMaintenanceDate:  d.NextMaintenanceDate,
		Notes:                d.Notes,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	d := &domainDevice.Device{
		ID:                   m.ID,
		DeviceName:           m.DeviceName,
		SerialNumber:         m.SerialNumber,
		Model:                m.Model,
		Manufacturer:         m.Manufacturer,
		Status:               domainDevice.Normalize(domainDevice.Status(m.Status)),
		Location:             m.Location,
		AssignedTechnicianID: m.AssignedTechnicianID,
		PurchaseDate:         m.PurchaseDate,
		WarrantyExpiry:       m.WarrantyExpiry,
		LastMaintenanceDate:  m.LastMaintenanceDate,
		NextMaintenanceDate:  m.NextMaintenanceDate,
		Notes:                m.Notes,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	if m.AssignedTechnician != nil && m.AssignedTechnician.ID != 0 {
		name := m.AssignedTechnician.FullName
		d.TechnicianName = &name
	}
	return d
}
