package models

import "time"

type AlertModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	DeviceID  uint      `gorm:"not null;index"`
	AlertType string    `gorm:"type:varchar(100);not null"`
	Severity  string    `gorm:"type:varchar(50);not null;default:'medium'"`
	Message   string    `gorm:"type:text"`
	Resolved  bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time `gorm:"not null"`

	Device *DeviceModel `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE"`
}

func (AlertModel) TableName() string {
	return "alerts"
}
