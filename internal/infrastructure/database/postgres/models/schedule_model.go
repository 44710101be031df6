package models

import "time"

// MaintenanceScheduleModel represents the database model for maintenance schedules.
//
// ux_schedules_open_device allows a single non-completed row per device.
type MaintenanceScheduleModel struct {
	ID              uint       `gorm:"primaryKey;autoIncrement"`
	DeviceID        uint       `gorm:"not null;index:idx_schedules_device;uniqueIndex:ux_schedules_open_device,where:status <> 'completed'"`
	TechnicianID    *uint      `gorm:"index"`
	MaintenanceType string     `gorm:"type:varchar(100);not null"`
	ScheduledDate   time.Time  `gorm:"not null"`
	CompletedDate   *time.Time `gorm:"type:date"`
	Status          string     `gorm:"type:varchar(50);not null;default:'pending'"`
	Description     *string    `gorm:"type:text"`
	Notes           *string    `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`

	Device     *DeviceModel     `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE"`
	Technician *TechnicianModel `gorm:"foreignKey:TechnicianID;constraint:OnDelete:SET NULL"`
}

func (MaintenanceScheduleModel) TableName() string {
	return "maintenance_schedules"
}
