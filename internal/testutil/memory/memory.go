// Package memory provides map-backed repositories for service and handler
// tests. They mirror the constraints the Postgres schema enforces.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"it-asset-dashboard/internal/domain/alert"
	"it-asset-dashboard/internal/domain/device"
	"it-asset-dashboard/internal/domain/maintenance"
)

// DeviceRepository implements device.Repository.
type DeviceRepository struct {
	mu      sync.Mutex
	nextID  uint
	devices map[uint]device.Device

	// UpdateErr, when set, is returned by Update.
	UpdateErr error
	// DeleteErr, when set, is returned by Delete.
	DeleteErr error
	// DatesErr, when set, is returned by SetMaintenanceDates.
	DatesErr error
}

func NewDeviceRepository() *DeviceRepository {
	return &DeviceRepository{devices: make(map[uint]device.Device)}
}

// Put stores d as-is, assigning an id when d.ID is zero.
func (r *DeviceRepository) Put(d device.Device) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == 0 {
		r.nextID++
		d.ID = r.nextID
	} else if d.ID > r.nextID {
		r.nextID = d.ID
	}
	r.devices[d.ID] = d
	return d.ID
}

func (r *DeviceRepository) Create(_ context.Context, d *device.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.devices {
		if existing.SerialNumber == d.SerialNumber {
			return device.ErrDeviceAlreadyExists
		}
	}
	if d.Status == "" {
		d.Status = device.StatusActive
	}
	r.nextID++
	d.ID = r.nextID
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	r.devices[d.ID] = *d
	return nil
}

func (r *DeviceRepository) GetByID(_ context.Context, id uint) (*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return nil, device.ErrDeviceNotFound
	}
	return &d, nil
}

func (r *DeviceRepository) GetBySerialNumber(_ context.Context, serial string) (*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.devices {
		if d.SerialNumber == serial {
			return &d, nil
		}
	}
	return nil, device.ErrDeviceNotFound
}

func (r *DeviceRepository) Update(_ context.Context, d *device.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if _, ok := r.devices[d.ID]; !ok {
		return device.ErrDeviceNotFound
	}
	for id, existing := range r.devices {
		if id != d.ID && existing.SerialNumber == d.SerialNumber {
			return device.ErrDeviceAlreadyExists
		}
	}
	d.UpdatedAt = time.Now()
	r.devices[d.ID] = *d
	return nil
}

func (r *DeviceRepository) SetMaintenanceDates(_ context.Context, id uint, last, next *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DatesErr != nil {
		return r.DatesErr
	}
	d, ok := r.devices[id]
	if !ok {
		return device.ErrDeviceNotFound
	}
	d.LastMaintenanceDate = last
	d.NextMaintenanceDate = next
	r.devices[id] = d
	return nil
}

func (r *DeviceRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	if _, ok := r.devices[id]; !ok {
		return device.ErrDeviceNotFound
	}
	delete(r.devices, id)
	return nil
}

func (r *DeviceRepository) List(_ context.Context, filter *device.Filter) ([]*device.Device, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*device.Device
	for _, d := range r.devices {
		if filter != nil {
			if filter.Status != nil && !d.Status.Is(*filter.Status) {
				continue
			}
			if filter.TechnicianID != nil && (d.AssignedTechnicianID == nil || *d.AssignedTechnicianID != *filter.TechnicianID) {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(d.DeviceName+" "+d.SerialNumber+" "+d.Model), strings.ToLower(filter.Search)) {
				continue
			}
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *DeviceRepository) CountByStatus(_ context.Context) (map[device.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[device.Status]int64)
	for _, d := range r.devices {
		counts[device.Normalize(d.Status)]++
	}
	return counts, nil
}

func (r *DeviceRepository) UpcomingMaintenance(_ context.Context, limit int) ([]*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*device.Device
	for _, d := range r.devices {
		if d.NextMaintenanceDate != nil {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextMaintenanceDate.Before(*out[j].NextMaintenanceDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ScheduleRepository implements maintenance.Repository and enforces one open
// schedule per device like ux_schedules_open_device.
type ScheduleRepository struct {
	mu        sync.Mutex
	nextID    uint
	schedules map[uint]maintenance.Schedule

	// InsertErr, when set, is returned by InsertIfNoneOpen.
	InsertErr error
	// CompleteErr, when set, is returned by CompleteLatestOpen.
	CompleteErr error
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{schedules: make(map[uint]maintenance.Schedule)}
}

// Put stores s as-is without checking the open-schedule constraint.
func (r *ScheduleRepository) Put(s maintenance.Schedule) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == 0 {
		r.nextID++
		s.ID = r.nextID
	} else if s.ID > r.nextID {
		r.nextID = s.ID
	}
	r.schedules[s.ID] = s
	return s.ID
}

func (r *ScheduleRepository) hasOpenLocked(deviceID, exceptID uint) bool {
	for id, s := range r.schedules {
		if id != exceptID && s.DeviceID == deviceID && s.IsOpen() {
			return true
		}
	}
	return false
}

func (r *ScheduleRepository) insertLocked(s *maintenance.Schedule) {
	if s.Status == "" {
		s.Status = maintenance.StatusPending
	}
	r.nextID++
	s.ID = r.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.schedules[s.ID] = *s
}

func (r *ScheduleRepository) Create(_ context.Context, s *maintenance.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.IsOpen() && r.hasOpenLocked(s.DeviceID, 0) {
		return maintenance.ErrOpenScheduleExists
	}
	r.insertLocked(s)
	return nil
}

func (r *ScheduleRepository) InsertIfNoneOpen(_ context.Context, s *maintenance.Schedule) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.InsertErr != nil {
		return false, r.InsertErr
	}
	if r.hasOpenLocked(s.DeviceID, 0) {
		return false, nil
	}
	r.insertLocked(s)
	return true, nil
}

func (r *ScheduleRepository) GetByID(_ context.Context, id uint) (*maintenance.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, maintenance.ErrScheduleNotFound
	}
	return &s, nil
}

func (r *ScheduleRepository) Update(_ context.Context, s *maintenance.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[s.ID]; !ok {
		return maintenance.ErrScheduleNotFound
	}
	if s.IsOpen() && r.hasOpenLocked(s.DeviceID, s.ID) {
		return maintenance.ErrOpenScheduleExists
	}
	s.UpdatedAt = time.Now()
	r.schedules[s.ID] = *s
	return nil
}

func (r *ScheduleRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[id]; !ok {
		return maintenance.ErrScheduleNotFound
	}
	delete(r.schedules, id)
	return nil
}

func (r *ScheduleRepository) List(_ context.Context, filter *maintenance.Filter) ([]*maintenance.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*maintenance.Schedule
	for _, s := range r.schedules {
		if filter != nil {
			if filter.DeviceID != nil && s.DeviceID != *filter.DeviceID {
				continue
			}
			if filter.Status != nil && maintenance.Normalize(s.Status) != maintenance.Normalize(*filter.Status) {
				continue
			}
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *ScheduleRepository) FindOpenByDevice(ctx context.Context, deviceID uint) ([]*maintenance.Schedule, error) {
	all, _ := r.List(ctx, &maintenance.Filter{DeviceID: &deviceID})
	var open []*maintenance.Schedule
	for _, s := range all {
		if s.IsOpen() {
			open = append(open, s)
		}
	}
	return open, nil
}

func (r *ScheduleRepository) CompleteLatestOpen(_ context.Context, deviceID uint, completedOn time.Time) (*maintenance.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CompleteErr != nil {
		return nil, r.CompleteErr
	}
	var latest *maintenance.Schedule
	for _, s := range r.schedules {
		if s.DeviceID == deviceID && s.IsOpen() && (latest == nil || s.ID > latest.ID) {
			s := s
			latest = &s
		}
	}
	if latest == nil {
		return nil, nil
	}
	latest.Status = maintenance.StatusCompleted
	latest.CompletedDate = &completedOn
	latest.UpdatedAt = time.Now()
	r.schedules[latest.ID] = *latest
	return latest, nil
}

func (r *ScheduleRepository) DeleteByDevice(_ context.Context, deviceID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.schedules {
		if s.DeviceID == deviceID {
			delete(r.schedules, id)
			n++
		}
	}
	return n, nil
}

func (r *ScheduleRepository) CountOpen(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.schedules {
		if s.IsOpen() {
			n++
		}
	}
	return n, nil
}

// AlertRepository implements alert.Repository.
type AlertRepository struct {
	mu     sync.Mutex
	nextID uint
	alerts map[uint]alert.Alert
}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{alerts: make(map[uint]alert.Alert)}
}

func (r *AlertRepository) Put(a alert.Alert) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	r.alerts[a.ID] = a
	return a.ID
}

func (r *AlertRepository) Create(_ context.Context, a *alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	r.alerts[a.ID] = *a
	return nil
}

// All returns every stored alert ordered by id.
func (r *AlertRepository) All() []alert.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]alert.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *AlertRepository) ListByDevice(_ context.Context, deviceID uint) ([]*alert.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*alert.Alert
	for _, a := range r.alerts {
		if a.DeviceID == deviceID {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *AlertRepository) DeleteByDevice(_ context.Context, deviceID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, a := range r.alerts {
		if a.DeviceID == deviceID {
			delete(r.alerts, id)
			n++
		}
	}
	return n, nil
}

func (r *AlertRepository) CountUnresolved(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.alerts {
		if !a.Resolved {
			n++
		}
	}
	return n, nil
}
