package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityLogModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    *uint     `gorm:"index"`
	Action    string    `gorm:"type:varchar(20);not null"`
	Table     string    `gorm:"column:table_name;type:varchar(100);not null"`
	RecordID  uint      `gorm:"not null"`
	Details   string    `gorm:"type:text"`
	Snapshot  datatypes.JSON `gorm:"type:jsonb"`
	Timestamp time.Time `gorm:"not null;index"`
}

func (ActivityLogModel) TableName() string {
	return "activity_logs"
}
