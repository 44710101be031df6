package device

import (
	"time"

	domainAlert "it-asset-dashboard/internal/domain/alert"
	domainDevice "it-asset-dashboard/internal/domain/device"
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	"it-asset-dashboard/pkg/utils"
)

// Wire names follow the dashboard client, which posts PascalCase columns.

type CreateDeviceRequest struct {
	DeviceName         string  `json:"DeviceName" validate:"max=255"`
	SerialNumber       string  `json:"SerialNumber" validate:"max=255"`
	Model              string  `json:"Model" validate:"max=255"`
	Manufacturer       *string `json:"Manufacturer" validate:"omitempty,max=255"`
	Status             *string `json:"Status"`
	Location           *string `json:"Location" validate:"omitempty,max=255"`
	Notes              *string `json:"Notes" validate:"omitempty,max=5000"`
	AssignedTechnician *uint   `json:"assignedTechnician"`
	PurchaseDate       *string `json:"PurchaseDate" validate:"omitempty,date"`
	WarrantyExpiry     *string `json:"WarrantyExpiry" validate:"omitempty,date"`
}

// UpdateDeviceRequest is a partial update. A nil field keeps the stored
// value; an empty optional string or date clears it; AssignedTechnician 0
// removes the assignment.
type UpdateDeviceRequest struct {
	DeviceName         *string `json:"DeviceName" validate:"omitempty,max=255"`
	SerialNumber       *string `json:"SerialNumber" validate:"omitempty,max=255"`
	Model              *string `json:"Model" validate:"omitempty,max=255"`
	Manufacturer       *string `json:"Manufacturer" validate:"omitempty,max=255"`
	Status             *string `json:"Status"`
	Location           *string `json:"Location" validate:"omitempty,max=255"`
	Notes              *string `json:"Notes" validate:"omitempty,max=5000"`
	AssignedTechnician *uint   `json:"assignedTechnician"`
	PurchaseDate       *string `json:"PurchaseDate" validate:"omitempty,date"`
	WarrantyExpiry     *string `json:"WarrantyExpiry" validate:"omitempty,date"`
}

type DeviceFilterRequest struct {
	Status       string `form:"status" validate:"omitempty,device_status"`
	TechnicianID *uint  `form:"technician_id"`
	Search       string `form:"search" validate:"omitempty,max=255"`
	Page         int    `form:"page" validate:"omitempty,min=1"`
	PageSize     int    `form:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy       string `form:"sort_by" validate:"omitempty,oneof=id device_name serial_number status next_maintenance_date created_at updated_at"`
	SortOrder    string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type DeviceResponse struct {
	DeviceID             uint                `json:"DeviceID"`
	DeviceName           string              `json:"DeviceName"`
	SerialNumber         string              `json:"SerialNumber"`
	Model                string              `json:"Model"`
	Manufacturer         *string             `json:"Manufacturer"`
	Status               domainDevice.Status `json:"Status"`
	Location             *string             `json:"Location"`
	AssignedTechnicianID *uint               `json:"AssignedTechnicianID"`
	TechnicianName       *string             `json:"TechnicianName"`
	PurchaseDate         *string             `json:"PurchaseDate"`
	WarrantyExpiry       *string             `json:"WarrantyExpiry"`
	LastMaintenanceDate  *string             `json:"LastMaintenanceDate"`
	NextMaintenanceDate  *string             `json:"NextMaintenanceDate"`
	Notes                *string             `json:"Notes"`
	CreatedAt            time.Time           `json:"CreatedAt"`
	UpdatedAt            time.Time           `json:"UpdatedAt"`
}

type DeviceListResponse struct {
	Devices    []DeviceResponse `json:"devices"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

type ScheduleResponse struct {
	ScheduleID      uint                     `json:"ScheduleID"`
	DeviceID        uint                     `json:"DeviceID"`
	TechnicianID    *uint                    `json:"TechnicianID"`
	MaintenanceType string                   `json:"MaintenanceType"`
	ScheduledDate   time.Time                `json:"ScheduledDate"`
	CompletedDate   *string                  `json:"CompletedDate"`
	Status          domainMaintenance.Status `json:"Status"`
	Description     *string                  `json:"Description"`
	Notes           *string                  `json:"Notes"`
	CreatedAt       time.Time                `json:"CreatedAt"`
	UpdatedAt       time.Time                `json:"UpdatedAt"`
}

type AlertResponse struct {
	AlertID   uint      `json:"AlertID"`
	DeviceID  uint      `json:"DeviceID"`
	AlertType string    `json:"AlertType"`
	Severity  string    `json:"Severity"`
	Message   string    `json:"Message"`
	Resolved  bool      `json:"Resolved"`
	CreatedAt time.Time `json:"CreatedAt"`
}

func ToDeviceResponse(d *domainDevice.Device) *DeviceResponse {
	if d == nil {
		return nil
	}
	return &DeviceResponse{
		DeviceID:             d.ID,
		DeviceName:           d.DeviceName,
		SerialNumber:         d.SerialNumber,
		Model:                d.Model,
		Manufacturer:         d.Manufacturer,
		Status:               domainDevice.Normalize(d.Status),
		Location:             d.Location,
		AssignedTechnicianID: d.AssignedTechnicianID,
		TechnicianName:       d.TechnicianName,
		PurchaseDate:         utils.FormatDate(d.PurchaseDate),
		WarrantyExpiry:       utils.FormatDate(d.WarrantyExpiry),
		LastMaintenanceDate:  utils.FormatDate(d.LastMaintenanceDate),
		NextMaintenanceDate:  utils.FormatDate(d.NextMaintenanceDate),
		Notes:                d.Notes,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func ToScheduleResponse(s *domainMaintenance.Schedule) *ScheduleResponse {
	if s == nil {
		return nil
	}
	return &ScheduleResponse{
		ScheduleID:      s.ID,
		DeviceID:        s.DeviceID,
		TechnicianID:    s.TechnicianID,
		MaintenanceType: s.MaintenanceType,
		ScheduledDate:   s.ScheduledDate,
		CompletedDate:   utils.FormatDate(s.CompletedDate),
		Status:          domainMaintenance.Normalize(s.Status),
		Description:     s.Description,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func ToAlertResponse(a *domainAlert.Alert) *AlertResponse {
	return &AlertResponse{
		AlertID:   a.ID,
		DeviceID:  a.DeviceID,
		AlertType: a.AlertType,
		Severity:  a.Severity,
		Message:   a.Message,
		Resolved:  a.Resolved,
		CreatedAt: a.CreatedAt,
	}
}

func ToDomainFilter(req *DeviceFilterRequest) *domainDevice.Filter {
	if req == nil {
		return &domainDevice.Filter{}
	}
	filter := &domainDevice.Filter{
		TechnicianID: req.TechnicianID,
		Search:       req.Search,
		Page:         req.Page,
		PageSize:     req.PageSize,
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
	}
	if status, err := domainDevice.ParseStatus(req.Status); err == nil {
		filter.Status = &status
	}
	return filter
}
