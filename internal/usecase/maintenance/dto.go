package maintenance

import (
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	"it-asset-dashboard/internal/usecase/device"
)

type CreateScheduleRequest struct {
	DeviceID        uint    `json:"DeviceID" validate:"required"`
	TechnicianID    *uint   `json:"TechnicianID"`
	MaintenanceType string  `json:"MaintenanceType" validate:"required,max=100"`
	ScheduledDate   string  `json:"ScheduledDate" validate:"required,timestamp"`
	CompletedDate   *string `json:"CompletedDate" validate:"omitempty,date"`
	Status          *string `json:"Status"`
	Description     *string `json:"Description" validate:"omitempty,max=5000"`
	Notes           *string `json:"Notes" validate:"omitempty,max=5000"`
}

// UpdateScheduleRequest follows the same partial update rules as devices.
type UpdateScheduleRequest struct {
	TechnicianID    *uint   `json:"TechnicianID"`
	MaintenanceType *string `json:"MaintenanceType" validate:"omitempty,max=100"`
	ScheduledDate   *string `json:"ScheduledDate" validate:"omitempty,timestamp"`
	CompletedDate   *string `json:"CompletedDate" validate:"omitempty,date"`
	Status          *string `json:"Status"`
	Description     *string `json:"Description" validate:"omitempty,max=5000"`
	Notes           *string `json:"Notes" validate:"omitempty,max=5000"`
}

type ScheduleFilterRequest struct {
	DeviceID *uint  `form:"device_id"`
	Status   string `form:"status" validate:"omitempty,schedule_status"`
}

// ScheduleResponse is shared with the device-scoped schedule listing.
type ScheduleResponse = device.ScheduleResponse

func toResponses(schedules []*domainMaintenance.Schedule) []ScheduleResponse {
	responses := make([]ScheduleResponse, len(schedules))
	for i, s := range schedules {
		responses[i] = *device.ToScheduleResponse(s)
	}
	return responses
}
