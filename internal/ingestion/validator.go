package ingestion

import (
	"fmt"
	"time"
)

// maxClockSkew bounds how far in the future a device clock may run.
const maxClockSkew = 5 * time.Minute

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

func ValidateTelemetry(msg *TelemetryMessage, now time.Time) error {
	if msg.SerialNumber == "" {
		return &ValidationError{Field: "serial_number", Message: "serial_number is required"}
	}
	if len(msg.SerialNumber) > 255 {
		return &ValidationError{Field: "serial_number", Message: "serial_number must be at most 255 characters"}
	}

	if msg.Timestamp.After(now.Add(maxClockSkew)) {
		return &ValidationError{Field: "timestamp", Message: "timestamp is in the future"}
	}

	if msg.CPUTempC != nil && (*msg.CPUTempC < -40 || *msg.CPUTempC > 150) {
		return &ValidationError{Field: "cpu_temp_c", Message: "cpu_temp_c must be between -40 and 150"}
	}
	if msg.DiskFreePct != nil && (*msg.DiskFreePct < 0 || *msg.DiskFreePct > 100) {
		return &ValidationError{Field: "disk_free_pct", Message: "disk_free_pct must be between 0 and 100"}
	}
	if msg.MemoryUsedPct != nil && (*msg.MemoryUsedPct < 0 || *msg.MemoryUsedPct > 100) {
		return &ValidationError{Field: "memory_used_pct", Message: "memory_used_pct must be between 0 and 100"}
	}
	if msg.BatteryLevel != nil && (*msg.BatteryLevel < 0 || *msg.BatteryLevel > 100) {
		return &ValidationError{Field: "battery_level", Message: "battery_level must be between 0 and 100"}
	}

	return nil
}
