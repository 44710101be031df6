package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainActivity "it-asset-dashboard/internal/domain/activity"
	domainAlert "it-asset-dashboard/internal/domain/alert"
	domainDevice "it-asset-dashboard/internal/domain/device"
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	"it-asset-dashboard/internal/logger"
	appErrors "it-asset-dashboard/pkg/errors"
	"it-asset-dashboard/pkg/utils"

	"go.uber.org/zap"
)

// Service implements device use cases. Status edits made through
// UpdateDevice open and close maintenance schedules.
type Service struct {
	deviceRepo     domainDevice.Repository
	scheduleRepo   domainMaintenance.Repository
	alertRepo      domainAlert.Repository
	recorder       domainActivity.Recorder
	intervalMonths int
	now            func() time.Time
}

type Option func(*Service)

// WithMaintenanceInterval sets the months between purchase and the first
// planned maintenance.
func WithMaintenanceInterval(months int) Option {
	return func(s *Service) {
		if months > 0 {
			s.intervalMonths = months
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new device service
func NewService(
	deviceRepo domainDevice.Repository,
	scheduleRepo domainMaintenance.Repository,
	alertRepo domainAlert.Repository,
	recorder domainActivity.Recorder,
	opts ...Option,
) *Service {
	s := &Service{
		deviceRepo:     deviceRepo,
		scheduleRepo:   scheduleRepo,
		alertRepo:      alertRepo,
		recorder:       recorder,
		intervalMonths: domainDevice.DefaultMaintenanceIntervalMonths,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateDevice(ctx context.Context, actor *domainActivity.Actor, req *CreateDeviceRequest) (*DeviceResponse, error) {
	if err := ValidateRequiredFields(req.DeviceName, req.SerialNumber, req.Model); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	status := domainDevice.StatusActive
	if req.Status != nil && *req.Status != "" {
		parsed, err := ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	purchase, err := parseOptionalDate("PurchaseDate", req.PurchaseDate)
	if err != nil {
		return nil, err
	}
	expiry, err := parseOptionalDate("WarrantyExpiry", req.WarrantyExpiry)
	if err != nil {
		return nil, err
	}
	if err := ValidateWarranty(purchase, expiry); err != nil {
		return nil, err
	}

	serial := utils.SanitizeString(req.SerialNumber)
	existing, err := s.deviceRepo.GetBySerialNumber(ctx, serial)
	if err != nil && !errors.Is(err, domainDevice.ErrDeviceNotFound) {
		return nil, fmt.Errorf("failed to check serial number: %w", err)
	}
	if existing != nil {
		return nil, deviceExistsError()
	}

	device := &domainDevice.Device{
		DeviceName:           utils.SanitizeString(req.DeviceName),
		SerialNumber:         serial,
		Model:                utils.SanitizeString(req.Model),
		Manufacturer:         optionalText(req.Manufacturer),
		Status:               status,
		Location:             optionalText(req.Location),
		AssignedTechnicianID: technicianID(req.AssignedTechnician),
		PurchaseDate:         purchase,
		WarrantyExpiry:       expiry,
		Notes:                optionalText(req.Notes),
	}

	if err := s.deviceRepo.Create(ctx, device); err != nil {
		if errors.Is(err, domainDevice.ErrDeviceAlreadyExists) {
			return nil, deviceExistsError()
		}
		return nil, err
	}

	// The row already exists; a failed date write leaves it without a next
	// maintenance date rather than failing the create.
	next := domainDevice.NextMaintenanceDate(purchase, s.now(), s.intervalMonths)
	if err := s.deviceRepo.SetMaintenanceDates(ctx, device.ID, nil, &next); err != nil {
		logger.Error("Failed to set maintenance dates for new device",
			zap.Uint("device_id", device.ID),
			zap.Error(err),
			zap.String("event", "device_dates_failed"),
		)
	}

	s.recorder.Record(ctx, domainActivity.NewEntry(actor, domainActivity.ActionCreate,
		domainActivity.TableDevices, device.ID, "Created device: "+device.DeviceName))

	created, err := s.deviceRepo.GetByID(ctx, device.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Device created",
		zap.Uint("device_id", created.ID),
		zap.String("serial_number", created.SerialNumber),
		zap.String("event", "device_created"),
	)

	return ToDeviceResponse(created), nil
}

func (s *Service) GetDevice(ctx context.Context, deviceID uint) (*DeviceResponse, error) {
	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	return ToDeviceResponse(device), nil
}

func (s *Service) ListDevices(ctx context.Context, filter *DeviceFilterRequest) (*DeviceListResponse, error) {
	if filter == nil {
		filter = &DeviceFilterRequest{}
	}
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid filter", err)
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	devices, total, err := s.deviceRepo.List(ctx, ToDomainFilter(filter))
	if err != nil {
		return nil, err
	}

	deviceResponses := make([]DeviceResponse, len(devices))
	for i, device := range devices {
		deviceResponses[i] = *ToDeviceResponse(device)
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	return &DeviceListResponse{
		Devices:    deviceResponses,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateDevice applies a partial update and then reconciles maintenance
// schedules with the status change. Reconciliation and activity recording
// are best effort: their failures are logged and the update still succeeds.
func (s *Service) UpdateDevice(ctx context.Context, actor *domainActivity.Actor, deviceID uint, req *UpdateDeviceRequest) (*DeviceResponse, error) {
	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}
	prevStatus := domainDevice.Normalize(device.Status)

	if err := s.applyPatch(device, req); err != nil {
		return nil, err
	}
	nextStatus := domainDevice.Normalize(device.Status)

	if err := ValidateWarranty(device.PurchaseDate, device.WarrantyExpiry); err != nil {
		return nil, err
	}

	if err := s.deviceRepo.Update(ctx, device); err != nil {
		if errors.Is(err, domainDevice.ErrDeviceAlreadyExists) {
			return nil, deviceExistsError()
		}
		return nil, err
	}

	s.reconcileSchedules(ctx, deviceID, prevStatus, nextStatus)

	s.recorder.Record(ctx, domainActivity.NewEntry(actor, domainActivity.ActionUpdate,
		domainActivity.TableDevices, deviceID, "Updated device: "+device.DeviceName))

	updated, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	logger.Info("Device updated",
		zap.Uint("device_id", deviceID),
		zap.String("old_status", string(prevStatus)),
		zap.String("new_status", string(nextStatus)),
		zap.String("event", "device_updated"),
	)

	return ToDeviceResponse(updated), nil
}

func (s *Service) applyPatch(device *domainDevice.Device, req *UpdateDeviceRequest) error {
	if req.DeviceName != nil {
		device.DeviceName = utils.SanitizeString(*req.DeviceName)
	}
	if req.SerialNumber != nil {
		device.SerialNumber = utils.SanitizeString(*req.SerialNumber)
	}
	if req.Model != nil {
		device.Model = utils.SanitizeString(*req.Model)
	}
	if err := ValidateRequiredFields(device.DeviceName, device.SerialNumber, device.Model); err != nil {
		return err
	}

	// Status cannot be cleared; a blank value keeps the stored one.
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return err
		}
		device.Status = status
	}
	if req.Manufacturer != nil {
		device.Manufacturer = optionalText(req.Manufacturer)
	}
	if req.Location != nil {
		device.Location = optionalText(req.Location)
	}
	if req.Notes != nil {
		device.Notes = optionalText(req.Notes)
	}
	if req.AssignedTechnician != nil {
		device.AssignedTechnicianID = technicianID(req.AssignedTechnician)
	}
	if req.PurchaseDate != nil {
		purchase, err := parseOptionalDate("PurchaseDate", req.PurchaseDate)
		if err != nil {
			return err
		}
		device.PurchaseDate = purchase
	}
	if req.WarrantyExpiry != nil {
		expiry, err := parseOptionalDate("WarrantyExpiry", req.WarrantyExpiry)
		if err != nil {
			return err
		}
		device.WarrantyExpiry = expiry
	}
	return nil
}

// reconcileSchedules keeps schedules in step with a status transition.
// Only active->maintenance and maintenance->active have side effects.
func (s *Service) reconcileSchedules(ctx context.Context, deviceID uint, prev, next domainDevice.Status) {
	now := s.now()

	switch {
	case prev == domainDevice.StatusActive && next == domainDevice.StatusMaintenance:
		schedule := domainMaintenance.NewAutoSchedule(deviceID, now)
		inserted, err := s.scheduleRepo.InsertIfNoneOpen(ctx, schedule)
		if err != nil {
			logger.Error("Failed to open maintenance schedule",
				zap.Uint("device_id", deviceID),
				zap.Error(err),
				zap.String("event", "schedule_auto_open_failed"),
			)
			return
		}
		if !inserted {
			logger.Info("Open maintenance schedule already exists",
				zap.Uint("device_id", deviceID),
				zap.String("event", "schedule_auto_open_skipped"),
			)
			return
		}
		logger.Info("Maintenance schedule opened",
			zap.Uint("device_id", deviceID),
			zap.Uint("schedule_id", schedule.ID),
			zap.String("event", "schedule_auto_opened"),
		)

	case prev == domainDevice.StatusMaintenance && next == domainDevice.StatusActive:
		completed, err := s.scheduleRepo.CompleteLatestOpen(ctx, deviceID, utils.TruncateToDate(now))
		if err != nil {
			logger.Error("Failed to complete maintenance schedule",
				zap.Uint("device_id", deviceID),
				zap.Error(err),
				zap.String("event", "schedule_auto_complete_failed"),
			)
			return
		}
		if completed == nil {
			return
		}
		logger.Info("Maintenance schedule completed",
			zap.Uint("device_id", deviceID),
			zap.Uint("schedule_id", completed.ID),
			zap.String("event", "schedule_auto_completed"),
		)
	}
}

// DeleteDevice removes a device with its alerts and schedules and returns the
// record as it was before deletion. Cascaded deletes are not rolled back when
// the final delete finds no row.
func (s *Service) DeleteDevice(ctx context.Context, actor *domainActivity.Actor, deviceID uint) (*DeviceResponse, error) {
	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	snapshot := ToDeviceResponse(device)

	alerts, err := s.alertRepo.DeleteByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.scheduleRepo.DeleteByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if err := s.deviceRepo.Delete(ctx, deviceID); err != nil {
		return nil, err
	}

	entry := domainActivity.NewEntry(actor, domainActivity.ActionDelete,
		domainActivity.TableDevices, deviceID, "Deleted device: "+device.DeviceName)
	entry.Snapshot = snapshot
	s.recorder.Record(ctx, entry)

	logger.Info("Device deleted",
		zap.Uint("device_id", deviceID),
		zap.Int64("alerts_deleted", alerts),
		zap.Int64("schedules_deleted", schedules),
		zap.String("event", "device_deleted"),
	)

	return snapshot, nil
}

// ListSchedules returns an empty list for unknown or deleted devices.
func (s *Service) ListSchedules(ctx context.Context, deviceID uint) ([]ScheduleResponse, error) {
	schedules, err := s.scheduleRepo.List(ctx, &domainMaintenance.Filter{DeviceID: &deviceID})
	if err != nil {
		return nil, err
	}

	responses := make([]ScheduleResponse, len(schedules))
	for i, schedule := range schedules {
		responses[i] = *ToScheduleResponse(schedule)
	}
	return responses, nil
}

// ListAlerts returns an empty list for unknown or deleted devices.
func (s *Service) ListAlerts(ctx context.Context, deviceID uint) ([]AlertResponse, error) {
	alerts, err := s.alertRepo.ListByDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	responses := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = *ToAlertResponse(a)
	}
	return responses, nil
}

func deviceExistsError() error {
	return appErrors.NewAppError(appErrors.CodeDeviceExists, "Device with this serial number already exists", domainDevice.ErrDeviceAlreadyExists)
}
