package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainActivity "it-asset-dashboard/internal/domain/activity"
	domainDevice "it-asset-dashboard/internal/domain/device"
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	"it-asset-dashboard/internal/logger"
	"it-asset-dashboard/internal/usecase/device"
	appErrors "it-asset-dashboard/pkg/errors"
	"it-asset-dashboard/pkg/utils"

	"go.uber.org/zap"
)

// Service implements maintenance schedule use cases
type Service struct {
	scheduleRepo domainMaintenance.Repository
	deviceRepo   domainDevice.Repository
	recorder     domainActivity.Recorder
	now          func() time.Time
}

func NewService(
	scheduleRepo domainMaintenance.Repository,
	deviceRepo domainDevice.Repository,
	recorder domainActivity.Recorder,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		deviceRepo:   deviceRepo,
		recorder:     recorder,
		now:          time.Now,
	}
}

func (s *Service) ListSchedules(ctx context.Context, req *ScheduleFilterRequest) ([]ScheduleResponse, error) {
	filter := &domainMaintenance.Filter{}
	if req != nil {
		if err := utils.ValidateStruct(req); err != nil {
			return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid filter", err)
		}
		filter.DeviceID = req.DeviceID
		if req.Status != "" {
			status, err := parseStatus(req.Status)
			if err != nil {
				return nil, err
			}
			filter.Status = &status
		}
	}

	schedules, err := s.scheduleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toResponses(schedules), nil
}

func (s *Service) GetSchedule(ctx context.Context, scheduleID uint) (*ScheduleResponse, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return device.ToScheduleResponse(schedule), nil
}

func (s *Service) CreateSchedule(ctx context.Context, actor *domainActivity.Actor, req *CreateScheduleRequest) (*ScheduleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	if _, err := s.deviceRepo.GetByID(ctx, req.DeviceID); err != nil {
		return nil, err
	}

	scheduled, err := utils.ParseTimestamp(req.ScheduledDate)
	if err != nil {
		return nil, appErrors.NewInvalidInput(appErrors.CodeValidation, "ScheduledDate must be a date or timestamp")
	}

	schedule := &domainMaintenance.Schedule{
		DeviceID:        req.DeviceID,
		TechnicianID:    nonZero(req.TechnicianID),
		MaintenanceType: utils.SanitizeString(req.MaintenanceType),
		ScheduledDate:   scheduled,
		Status:          domainMaintenance.StatusPending,
		Description:     optionalText(req.Description),
		Notes:           optionalText(req.Notes),
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		schedule.Status = status
	}
	if schedule.CompletedDate, err = parseOptionalDate(req.CompletedDate); err != nil {
		return nil, err
	}
	s.stampCompletion(schedule)

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		if errors.Is(err, domainMaintenance.ErrOpenScheduleExists) {
			return nil, openScheduleError()
		}
		return nil, err
	}

	s.recorder.Record(ctx, domainActivity.NewEntry(actor, domainActivity.ActionCreate,
		domainActivity.TableSchedules, schedule.ID,
		fmt.Sprintf("Created maintenance schedule for device %d", schedule.DeviceID)))

	logger.Info("Maintenance schedule created",
		zap.Uint("schedule_id", schedule.ID),
		zap.Uint("device_id", schedule.DeviceID),
		zap.String("event", "schedule_created"),
	)

	return device.ToScheduleResponse(schedule), nil
}

func (s *Service) UpdateSchedule(ctx context.Context, actor *domainActivity.Actor, scheduleID uint, req *UpdateScheduleRequest) (*ScheduleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if req.TechnicianID != nil {
		schedule.TechnicianID = nonZero(req.TechnicianID)
	}
	if req.MaintenanceType != nil {
		maintenanceType := utils.SanitizeString(*req.MaintenanceType)
		if maintenanceType == "" {
			return nil, appErrors.NewInvalidInput(appErrors.CodeMissingFields, "MaintenanceType cannot be empty")
		}
		schedule.MaintenanceType = maintenanceType
	}
	if req.ScheduledDate != nil {
		scheduled, err := utils.ParseTimestamp(*req.ScheduledDate)
		if err != nil {
			return nil, appErrors.NewInvalidInput(appErrors.CodeValidation, "ScheduledDate must be a date or timestamp")
		}
		schedule.ScheduledDate = scheduled
	}
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		schedule.Status = status
	}
	if req.CompletedDate != nil {
		if schedule.CompletedDate, err = parseOptionalDate(req.CompletedDate); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		schedule.Description = optionalText(req.Description)
	}
	if req.Notes != nil {
		schedule.Notes = optionalText(req.Notes)
	}
	s.stampCompletion(schedule)

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		if errors.Is(err, domainMaintenance.ErrOpenScheduleExists) {
			return nil, openScheduleError()
		}
		return nil, err
	}

	s.recorder.Record(ctx, domainActivity.NewEntry(actor, domainActivity.ActionUpdate,
		domainActivity.TableSchedules, schedule.ID,
		fmt.Sprintf("Updated maintenance schedule for device %d", schedule.DeviceID)))

	updated, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return device.ToScheduleResponse(updated), nil
}

func (s *Service) DeleteSchedule(ctx context.Context, actor *domainActivity.Actor, scheduleID uint) error {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	if err := s.scheduleRepo.Delete(ctx, scheduleID); err != nil {
		return err
	}

	entry := domainActivity.NewEntry(actor, domainActivity.ActionDelete,
		domainActivity.TableSchedules, scheduleID,
		fmt.Sprintf("Deleted maintenance schedule for device %d", schedule.DeviceID))
	entry.Snapshot = device.ToScheduleResponse(schedule)
	s.recorder.Record(ctx, entry)

	logger.Info("Maintenance schedule deleted",
		zap.Uint("schedule_id", scheduleID),
		zap.String("event", "schedule_deleted"),
	)
	return nil
}

// stampCompletion dates a completed schedule that has no completion date.
func (s *Service) stampCompletion(schedule *domainMaintenance.Schedule) {
	if schedule.Status == domainMaintenance.StatusCompleted && schedule.CompletedDate == nil {
		today := utils.TruncateToDate(s.now())
		schedule.CompletedDate = &today
	}
}

func parseStatus(value string) (domainMaintenance.Status, error) {
	status, err := domainMaintenance.ParseStatus(value)
	if err != nil {
		return "", appErrors.NewInvalidInput(appErrors.CodeInvalidStatus,
			"Status must be one of pending, in-progress, completed")
	}
	return status, nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(*value)
	if err != nil {
		return nil, appErrors.NewInvalidInput(appErrors.CodeValidation, "CompletedDate must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := utils.SanitizeText(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}

func openScheduleError() error {
	return appErrors.NewAppError(appErrors.CodeScheduleOpen,
		"Device already has an open maintenance schedule", domainMaintenance.ErrOpenScheduleExists)
}
