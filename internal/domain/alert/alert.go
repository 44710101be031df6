package alert

import (
	"context"
	"time"
)

// Alert is a device alert raised by monitoring or by hand.
type Alert struct {
	ID        uint
	DeviceID  uint
	AlertType string
	Severity  string
	Message   string
	Resolved  bool
	CreatedAt time.Time
}

// Severity levels raised by telemetry ingestion.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Repository covers the alert operations the device lifecycle and telemetry
// ingestion need.
type Repository interface {
	Create(ctx context.Context, a *Alert) error
	ListByDevice(ctx context.Context, deviceID uint) ([]*Alert, error)
	DeleteByDevice(ctx context.Context, deviceID uint) (int64, error)
	CountUnresolved(ctx context.Context) (int64, error)
}
