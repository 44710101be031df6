package dashboard

import (
	"context"

	domainAlert "it-asset-dashboard/internal/domain/alert"
	domainDevice "it-asset-dashboard/internal/domain/device"
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	"it-asset-dashboard/internal/usecase/device"
)

const upcomingLimit = 10

type SummaryResponse struct {
	TotalDevices        int64                   `json:"totalDevices"`
	ActiveDevices       int64                   `json:"activeDevices"`
	MaintenanceDevices  int64                   `json:"maintenanceDevices"`
	InactiveDevices     int64                   `json:"inactiveDevices"`
	OpenSchedules       int64                   `json:"openSchedules"`
	UnresolvedAlerts    int64                   `json:"unresolvedAlerts"`
	UpcomingMaintenance []device.DeviceResponse `json:"upcomingMaintenance"`
}

type Service struct {
	deviceRepo   domainDevice.Repository
	scheduleRepo domainMaintenance.Repository
	alertRepo    domainAlert.Repository
}

func NewService(
	deviceRepo domainDevice.Repository,
	scheduleRepo domainMaintenance.Repository,
	alertRepo domainAlert.Repository,
) *Service {
	return &Service{
		deviceRepo:   deviceRepo,
		scheduleRepo: scheduleRepo,
		alertRepo:    alertRepo,
	}
}

func (s *Service) Summary(ctx context.Context) (*SummaryResponse, error) {
	counts, err := s.deviceRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	resp := &SummaryResponse{
		ActiveDevices:      counts[domainDevice.StatusActive],
		MaintenanceDevices: counts[domainDevice.StatusMaintenance],
		InactiveDevices:    counts[domainDevice.StatusInactive],
	}
	for _, n := range counts {
		resp.TotalDevices += n
	}

	if resp.OpenSchedules, err = s.scheduleRepo.CountOpen(ctx); err != nil {
		return nil, err
	}
	if resp.UnresolvedAlerts, err = s.alertRepo.CountUnresolved(ctx); err != nil {
		return nil, err
	}

	upcoming, err := s.deviceRepo.UpcomingMaintenance(ctx, upcomingLimit)
	if err != nil {
		return nil, err
	}
	resp.UpcomingMaintenance = make([]device.DeviceResponse, len(upcoming))
	for i, d := range upcoming {
		resp.UpcomingMaintenance[i] = *device.ToDeviceResponse(d)
	}

	return resp, nil
}
