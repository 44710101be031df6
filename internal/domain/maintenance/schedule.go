package maintenance

import (
	"strings"
	"time"
)

const (
	AutoType        = "Auto"
	AutoDescription = "Auto created when device set to maintenance"
)

// Schedule is a planned or performed maintenance job for one device.
type Schedule struct {
	ID              uint
	DeviceID        uint
	TechnicianID    *uint
	MaintenanceType string
	ScheduledDate   time.Time
	CompletedDate   *time.Time
	Status          Status
	Description     *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func Normalize(s Status) Status {
	return Status(strings.ToLower(strings.TrimSpace(string(s))))
}

func ParseStatus(value string) (Status, error) {
	switch s := Normalize(Status(value)); s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return s, nil
	case "in_progress", "inprogress":
		return StatusInProgress, nil
	default:
		return "", ErrInvalidStatus
	}
}

// IsOpen reports whether the schedule still counts as open work.
func (s *Schedule) IsOpen() bool {
	return Normalize(s.Status) != StatusCompleted
}

// NewAutoSchedule builds the schedule opened when a device enters maintenance.
func NewAutoSchedule(deviceID uint, now time.Time) *Schedule {
	description := AutoDescription
	return &Schedule{
		DeviceID:        deviceID,
		MaintenanceType: AutoType,
		ScheduledDate:   now,
		Status:          StatusPending,
		Description:     &description,
	}
}
