package ingestion

import (
	"context"
	"fmt"

	domainAlert "it-asset-dashboard/internal/domain/alert"
	"it-asset-dashboard/internal/logger"

	"go.uber.org/zap"
)

// Alert types raised from telemetry.
const (
	AlertOverheat       = "overheat"
	AlertLowDisk        = "low_disk"
	AlertMemoryPressure = "memory_pressure"
	AlertLowBattery     = "low_battery"
	AlertDiskFailure    = "disk_failure"
)

// Thresholds configures the engine. A zero threshold disables its check.
type Thresholds struct {
	CPUTempMaxC      float64
	DiskFreeMinPct   float64
	MemoryUsedMaxPct float64
	BatteryMinPct    int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CPUTempMaxC:      85,
		DiskFreeMinPct:   10,
		MemoryUsedMaxPct: 95,
		BatteryMinPct:    20,
	}
}

// AlertEngine turns telemetry into device alerts.
type AlertEngine struct {
	thresholds Thresholds
	repo       domainAlert.Repository
}

func NewAlertEngine(repo domainAlert.Repository, thresholds Thresholds) *AlertEngine {
	return &AlertEngine{repo: repo, thresholds: thresholds}
}

// CheckViolations returns the alerts msg raises for deviceID.
func (e *AlertEngine) CheckViolations(deviceID uint, msg *TelemetryMessage) []*domainAlert.Alert {
	t := e.thresholds
	var alerts []*domainAlert.Alert
	raise := func(alertType, severity, message string) {
		alerts = append(alerts, &domainAlert.Alert{
			DeviceID:  deviceID,
			AlertType: alertType,
			Severity:  severity,
			Message:   message,
			CreatedAt: msg.Timestamp,
		})
	}

	if msg.DiskHealthy != nil && !*msg.DiskHealthy {
		raise(AlertDiskFailure, domainAlert.SeverityCritical, "Disk health check failed - back up data and replace the drive")
	}

	if msg.CPUTempC != nil && t.CPUTempMaxC > 0 && *msg.CPUTempC > t.CPUTempMaxC {
		severity := domainAlert.SeverityHigh
		if *msg.CPUTempC >= t.CPUTempMaxC+10 {
			severity = domainAlert.SeverityCritical
		}
		raise(AlertOverheat, severity, fmt.Sprintf("CPU temperature %.1f°C exceeds %.1f°C", *msg.CPUTempC, t.CPUTempMaxC))
	}

	if msg.DiskFreePct != nil && t.DiskFreeMinPct > 0 && *msg.DiskFreePct < t.DiskFreeMinPct {
		severity := domainAlert.SeverityMedium
		if *msg.DiskFreePct < t.DiskFreeMinPct/2 {
			severity = domainAlert.SeverityHigh
		}
		raise(AlertLowDisk, severity, fmt.Sprintf("Free disk space %.1f%% is below %.1f%%", *msg.DiskFreePct, t.DiskFreeMinPct))
	}

	if msg.MemoryUsedPct != nil && t.MemoryUsedMaxPct > 0 && *msg.MemoryUsedPct > t.MemoryUsedMaxPct {
		raise(AlertMemoryPressure, domainAlert.SeverityMedium, fmt.Sprintf("Memory usage %.1f%% exceeds %.1f%%", *msg.MemoryUsedPct, t.MemoryUsedMaxPct))
	}

	if msg.BatteryLevel != nil && t.BatteryMinPct > 0 && *msg.BatteryLevel < t.BatteryMinPct {
		severity := domainAlert.SeverityLow
		if *msg.BatteryLevel < t.BatteryMinPct/2 {
			severity = domainAlert.SeverityMedium
		}
		raise(AlertLowBattery, severity, fmt.Sprintf("Low battery: %d%%", *msg.BatteryLevel))
	}

	return alerts
}

// SaveAlerts stores each alert, continuing past failures, and returns how
// many were saved along with the last error.
func (e *AlertEngine) SaveAlerts(ctx context.Context, alerts []*domainAlert.Alert) (int, error) {
	saved := 0
	var lastErr error
	for _, a := range alerts {
		if err := e.repo.Create(ctx, a); err != nil {
			logger.Error("Failed to save alert",
				zap.Uint("device_id", a.DeviceID),
				zap.String("alert_type", a.AlertType),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		saved++
		logger.Warn("Device alert raised",
			zap.Uint("device_id", a.DeviceID),
			zap.Uint("alert_id", a.ID),
			zap.String("alert_type", a.AlertType),
			zap.String("severity", a.Severity),
			zap.String("event", "alert_raised"),
		)
	}
	return saved, lastErr
}
