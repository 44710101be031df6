package maintenance

import (
	"context"
	"time"
)

// Repository defines persistence for maintenance schedules.
//
// At most one open schedule may exist per device. Create and
// InsertIfNoneOpen rely on the store to enforce it atomically.
type Repository interface {
	// Create returns ErrOpenScheduleExists when s is open and the device
	// already has an open schedule.
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, scheduleID uint) (*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, scheduleID uint) error
	List(ctx context.Context, filter *Filter) ([]*Schedule, error)

	// FindOpenByDevice lists non-completed schedules, newest id first.
	FindOpenByDevice(ctx context.Context, deviceID uint) ([]*Schedule, error)
	// InsertIfNoneOpen is a single conditional write; it reports false
	// without error when an open schedule already exists.
	InsertIfNoneOpen(ctx context.Context, s *Schedule) (bool, error)
	// CompleteLatestOpen completes the open schedule with the highest id.
	// It returns nil, nil when the device has no open schedule.
	CompleteLatestOpen(ctx context.Context, deviceID uint, completedOn time.Time) (*Schedule, error)
	DeleteByDevice(ctx context.Context, deviceID uint) (int64, error)
	CountOpen(ctx context.Context) (int64, error)
}

type Filter struct {
	DeviceID *uint
	Status   *Status
}
