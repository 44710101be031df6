package device

import (
	"context"
	"time"
)

// Repository defines the interface for device repository operations
type Repository interface {
	Create(ctx context.Context, device *Device) error
	GetByID(ctx context.Context, deviceID uint) (*Device, error)
	GetBySerialNumber(ctx context.Context, serialNumber string) (*Device, error)
	// Update writes every mutable column of device in one statement.
	Update(ctx context.Context, device *Device) error
	SetMaintenanceDates(ctx context.Context, deviceID uint, last, next *time.Time) error
	// Delete returns ErrDeviceNotFound when no row was removed.
	Delete(ctx context.Context, deviceID uint) error
	List(ctx context.Context, filter *Filter) ([]*Device, int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	UpcomingMaintenance(ctx context.Context, limit int) ([]*Device, error)
}

// Filter represents filtering options for listing devices
type Filter struct {
	Status       *Status
	TechnicianID *uint
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
