package device

import (
	"strings"
	"time"
)

// Device represents a tracked IT asset in the domain
type Device struct {
	ID                   uint
	DeviceName           string
	SerialNumber         string
	Model                string
	Manufacturer         *string
	Status               Status
	Location             *string
	AssignedTechnicianID *uint
	TechnicianName       *string // read-only, joined from technicians
	PurchaseDate         *time.Time
	WarrantyExpiry       *time.Time
	LastMaintenanceDate  *time.Time
	NextMaintenanceDate  *time.Time
	Notes                *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Status represents the lifecycle status of a device
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusInactive    Status = "inactive"
)

// DefaultMaintenanceIntervalMonths is used when no interval is configured.
const DefaultMaintenanceIntervalMonths = 6

// Normalize lowercases and trims a stored status. Stored values are free text
// in legacy rows, so every comparison goes through here.
func Normalize(s Status) Status {
	return Status(strings.ToLower(strings.TrimSpace(string(s))))
}

// ParseStatus validates a status supplied at the API boundary.
func ParseStatus(value string) (Status, error) {
	switch s := Normalize(Status(value)); s {
	case StatusActive, StatusMaintenance, StatusInactive:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Is compares statuses case-insensitively.
func (s Status) Is(other Status) bool {
	return Normalize(s) == Normalize(other)
}

// WarrantyValid reports whether the warranty expiry is not earlier than the
// purchase date. Missing dates are always valid.
func WarrantyValid(purchase, expiry *time.Time) bool {
	if purchase == nil || expiry == nil {
		return true
	}
	return !expiry.Before(*purchase)
}

// NextMaintenanceDate returns purchase + months, or now + months without a
// purchase date, as a calendar date. Month overflow rolls into the next month
// (Aug 31 + 6 months is Mar 3 in a non-leap year).
func NextMaintenanceDate(purchase *time.Time, now time.Time, months int) time.Time {
	if months <= 0 {
		months = DefaultMaintenanceIntervalMonths
	}
	base := now
	if purchase != nil {
		base = *purchase
	}
	base = base.UTC()
	next := base.AddDate(0, months, 0)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
}
