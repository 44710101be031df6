package models

import (
	"time"
)

// DeviceModel represents the database model for Devices.
type DeviceModel struct {
	ID                   uint       `gorm:"primaryKey;autoIncrement"`
	DeviceName           string     `gorm:"type:varchar(255);not null"`
	SerialNumber         string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Model                string     `gorm:"type:varchar(255);not null"`
	Manufacturer         *string    `gorm:"type:varchar(255)"`
	Status               string     `gorm:"type:varchar(50);not null;default:'active';index"`
	Location             *string    `gorm:"type:varchar(255)"`
	AssignedTechnicianID *uint      `gorm:"index"`
	PurchaseDate         *time.Time `gorm:"type:date"`
	WarrantyExpiry       *time.Time `gorm:"type:date"`
	LastMaintenanceDate  *time.Time `gorm:"type:date"`
	NextMaintenanceDate  *time.Time `gorm:"type:date;index"`
	Notes                *string    `gorm:"type:text"`
	CreatedAt            time.Time  `gorm:"not null"`
	UpdatedAt            time.Time  `gorm:"not null"`

	AssignedTechnician *TechnicianModel `gorm:"foreignKey:AssignedTechnicianID;constraint:OnDelete:SET NULL"`
}

func (DeviceModel) TableName() string {
	return "devices"
}

// TechnicianModel is only joined for display; technicians are managed elsewhere.
type TechnicianModel struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"`
	FullName       string  `gorm:"type:varchar(255);not null"`
	Specialization *string `gorm:"type:varchar(255)"`
	PhoneNumber    *string `gorm:"type:varchar(20);uniqueIndex"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (TechnicianModel) TableName() string {
	return "technicians"
}
