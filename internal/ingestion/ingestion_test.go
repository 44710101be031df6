package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainAlert "it-asset-dashboard/internal/domain/alert"
	domainDevice "it-asset-dashboard/internal/domain/device"
	"it-asset-dashboard/internal/testutil/memory"
	pkgmqtt "it-asset-dashboard/pkg/mqtt"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }

type fixture struct {
	devices   *memory.DeviceRepository
	alerts    *memory.AlertRepository
	processor *Processor
}

func newFixture(t *testing.T, cooldown time.Duration) *fixture {
	t.Helper()
	f := &fixture{
		devices: memory.NewDeviceRepository(),
		alerts:  memory.NewAlertRepository(),
	}
	f.devices.Put(domainDevice.Device{DeviceName: "Front desk PC", SerialNumber: "SN-1", Model: "OptiPlex", Status: domainDevice.StatusActive})

	engine := NewAlertEngine(f.alerts, DefaultThresholds())
	f.processor = NewProcessor(f.devices, engine, ProcessorConfig{Workers: 2, BufferSize: 8, Cooldown: cooldown})
	f.processor.now = func() time.Time { return testNow }
	return f
}

func TestParseTelemetry(t *testing.T) {
	msg, err := ParseTelemetry("assets/devices/SN-9/telemetry", []byte(`{"cpu_temp_c": 71.5}`))
	require.NoError(t, err)
	assert.Equal(t, "SN-9", msg.SerialNumber)
	assert.False(t, msg.Timestamp.IsZero())
	require.NotNil(t, msg.CPUTempC)
	assert.Equal(t, 71.5, *msg.CPUTempC)

	msg, err = ParseTelemetry("assets/devices/SN-9/telemetry", []byte(`{"serial_number":" SN-2 ","timestamp":"2024-03-15T10:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "SN-2", msg.SerialNumber)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), msg.Timestamp)

	_, err = ParseTelemetry("assets/devices/SN-9/telemetry", []byte(`not json`))
	assert.Error(t, err)
}

func TestValidateTelemetry(t *testing.T) {
	valid := &TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, CPUTempC: floatPtr(60)}
	assert.NoError(t, ValidateTelemetry(valid, testNow))

	tests := []struct {
		field string
		msg   TelemetryMessage
	}{
		{"serial_number", TelemetryMessage{Timestamp: testNow}},
		{"timestamp", TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow.Add(time.Hour)}},
		{"cpu_temp_c", TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, CPUTempC: floatPtr(400)}},
		{"disk_free_pct", TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, DiskFreePct: floatPtr(-1)}},
		{"memory_used_pct", TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, MemoryUsedPct: floatPtr(101)}},
		{"battery_level", TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, BatteryLevel: intPtr(150)}},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			err := ValidateTelemetry(&tt.msg, testNow)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCheckViolations(t *testing.T) {
	engine := NewAlertEngine(memory.NewAlertRepository(), DefaultThresholds())

	healthy := &TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, CPUTempC: floatPtr(55), DiskFreePct: floatPtr(40), BatteryLevel: intPtr(90), DiskHealthy: boolPtr(true)}
	assert.Empty(t, engine.CheckViolations(1, healthy))

	sick := &TelemetryMessage{
		SerialNumber:  "SN-1",
		Timestamp:     testNow,
		CPUTempC:      floatPtr(97),
		DiskFreePct:   floatPtr(4),
		MemoryUsedPct: floatPtr(99),
		BatteryLevel:  intPtr(15),
		DiskHealthy:   boolPtr(false),
	}
	alerts := engine.CheckViolations(7, sick)
	require.Len(t, alerts, 5)

	byType := map[string]*domainAlert.Alert{}
	for _, a := range alerts {
		assert.Equal(t, uint(7), a.DeviceID)
		assert.Equal(t, testNow, a.CreatedAt)
		byType[a.AlertType] = a
	}
	assert.Equal(t, domainAlert.SeverityCritical, byType[AlertDiskFailure].Severity)
	assert.Equal(t, domainAlert.SeverityCritical, byType[AlertOverheat].Severity)
	assert.Equal(t, domainAlert.SeverityHigh, byType[AlertLowDisk].Severity)
	assert.Equal(t, domainAlert.SeverityMedium, byType[AlertMemoryPressure].Severity)
	assert.Equal(t, domainAlert.SeverityLow, byType[AlertLowBattery].Severity)
}

func TestCheckViolationsZeroThresholdDisablesCheck(t *testing.T) {
	engine := NewAlertEngine(memory.NewAlertRepository(), Thresholds{})
	msg := &TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, CPUTempC: floatPtr(120), BatteryLevel: intPtr(1)}
	assert.Empty(t, engine.CheckViolations(1, msg))
}

func TestProcessStoresAlerts(t *testing.T) {
	f := newFixture(t, 0)

	n, err := f.processor.Process(context.Background(), &TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, CPUTempC: floatPtr(90)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored := f.alerts.All()
	require.Len(t, stored, 1)
	assert.Equal(t, AlertOverheat, stored[0].AlertType)
	assert.False(t, stored[0].Resolved)
}

func TestProcessUnknownDevice(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.processor.Process(context.Background(), &TelemetryMessage{SerialNumber: "SN-404", Timestamp: testNow, CPUTempC: floatPtr(90)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainDevice.ErrDeviceNotFound))
	assert.Equal(t, int64(1), f.processor.GetMetrics().UnknownDevices)
	assert.Empty(t, f.alerts.All())
}

func TestProcessCooldownSuppressesRepeats(t *testing.T) {
	f := newFixture(t, 15*time.Minute)
	msg := &TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, CPUTempC: floatPtr(90)}

	n, err := f.processor.Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.processor.Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(1), f.processor.GetMetrics().AlertsSuppressed)

	f.processor.now = func() time.Time { return testNow.Add(16 * time.Minute) }
	n, err = f.processor.Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.alerts.All(), 2)
}

func TestProcessorWorkersDrainOnStop(t *testing.T) {
	f := newFixture(t, 0)
	f.processor.Start()

	for i := 0; i < 3; i++ {
		require.True(t, f.processor.Enqueue(&TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow, BatteryLevel: intPtr(5)}))
	}
	f.processor.Stop()

	m := f.processor.GetMetrics()
	assert.Equal(t, int64(3), m.MessagesReceived)
	assert.Equal(t, int64(3), m.MessagesProcessed)
	assert.Equal(t, int64(3), m.AlertsGenerated)
	assert.Len(t, f.alerts.All(), 3)

	assert.False(t, f.processor.Enqueue(&TelemetryMessage{SerialNumber: "SN-1", Timestamp: testNow}))
	f.processor.Stop()
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	f := newFixture(t, 0)
	p := NewProcessor(f.devices, NewAlertEngine(f.alerts, DefaultThresholds()), ProcessorConfig{Workers: 1, BufferSize: 1})

	assert.True(t, p.Enqueue(&TelemetryMessage{SerialNumber: "SN-1"}))
	assert.False(t, p.Enqueue(&TelemetryMessage{SerialNumber: "SN-1"}))
	assert.Equal(t, int64(1), p.GetMetrics().MessagesDropped)
}

type fakeSubscriber struct {
	mu           sync.Mutex
	handlers     map[string]pkgmqtt.MessageHandler
	unsubscribed []string
	subscribeErr error
}

func (s *fakeSubscriber) Subscribe(topic string, _ byte, handler pkgmqtt.MessageHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribeErr != nil {
		return s.subscribeErr
	}
	if s.handlers == nil {
		s.handlers = map[string]pkgmqtt.MessageHandler{}
	}
	s.handlers[topic] = handler
	return nil
}

func (s *fakeSubscriber) Unsubscribe(topics ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribed = append(s.unsubscribed, topics...)
	return nil
}

func TestMQTTIngestionClient(t *testing.T) {
	f := newFixture(t, 0)
	// Payloads without a timestamp are stamped with the receive time.
	f.processor.now = time.Now
	sub := &fakeSubscriber{}
	client, err := NewMQTTIngestionClient(sub, "assets/devices/+/telemetry", 1, f.processor)
	require.NoError(t, err)

	require.NoError(t, client.Start())
	handler := sub.handlers["assets/devices/+/telemetry"]
	require.NotNil(t, handler)

	handler("assets/devices/SN-1/telemetry", []byte(`{"disk_free_pct": 2}`))
	handler("assets/devices/SN-1/telemetry", []byte(`{broken`))

	m := f.processor.GetMetrics()
	assert.Equal(t, int64(1), m.MessagesReceived)
	assert.Equal(t, int64(1), m.MessagesFailed)

	f.processor.Start()
	f.processor.Stop()
	assert.Len(t, f.alerts.All(), 1)

	client.Stop()
	assert.Equal(t, []string{"assets/devices/+/telemetry"}, sub.unsubscribed)
}

func TestMQTTIngestionClientSubscribeFailure(t *testing.T) {
	f := newFixture(t, 0)
	client, err := NewMQTTIngestionClient(&fakeSubscriber{subscribeErr: errors.New("not authorized")}, "t", 0, f.processor)
	require.NoError(t, err)
	assert.Error(t, client.Start())

	_, err = NewMQTTIngestionClient(nil, "t", 0, f.processor)
	assert.Error(t, err)
}
