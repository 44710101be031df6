package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainAlert "it-asset-dashboard/internal/domain/alert"
	domainDevice "it-asset-dashboard/internal/domain/device"
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	"it-asset-dashboard/internal/testutil/memory"
	"it-asset-dashboard/pkg/utils"
)

func TestSummary(t *testing.T) {
	devices := memory.NewDeviceRepository()
	schedules := memory.NewScheduleRepository()
	alerts := memory.NewAlertRepository()

	laptop := devices.Put(domainDevice.Device{
		DeviceName: "Laptop", SerialNumber: "SN-1", Status: "Active",
		NextMaintenanceDate: utils.TimePtr(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)),
	})
	devices.Put(domainDevice.Device{
		DeviceName: "Printer", SerialNumber: "SN-2", Status: domainDevice.StatusMaintenance,
		NextMaintenanceDate: utils.TimePtr(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)),
	})
	devices.Put(domainDevice.Device{DeviceName: "Desk", SerialNumber: "SN-3", Status: domainDevice.StatusInactive})

	schedules.Put(domainMaintenance.Schedule{DeviceID: laptop, Status: domainMaintenance.StatusCompleted})
	schedules.Put(domainMaintenance.Schedule{DeviceID: laptop, Status: domainMaintenance.StatusPending})
	alerts.Put(domainAlert.Alert{DeviceID: laptop})
	alerts.Put(domainAlert.Alert{DeviceID: laptop, Resolved: true})

	resp, err := NewService(devices, schedules, alerts).Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.TotalDevices)
	assert.Equal(t, int64(1), resp.ActiveDevices)
	assert.Equal(t, int64(1), resp.MaintenanceDevices)
	assert.Equal(t, int64(1), resp.InactiveDevices)
	assert.Equal(t, int64(1), resp.OpenSchedules)
	assert.Equal(t, int64(1), resp.UnresolvedAlerts)

	require.Len(t, resp.UpcomingMaintenance, 2)
	assert.Equal(t, "Printer", resp.UpcomingMaintenance[0].DeviceName)
	assert.Equal(t, "Laptop", resp.UpcomingMaintenance[1].DeviceName)
}
