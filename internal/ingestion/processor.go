package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainAlert "it-asset-dashboard/internal/domain/alert"
	domainDevice "it-asset-dashboard/internal/domain/device"
	"it-asset-dashboard/internal/logger"

	"go.uber.org/zap"
)

const processTimeout = 5 * time.Second

// DeviceLookup resolves the serial number an agent reports.
type DeviceLookup interface {
	GetBySerialNumber(ctx context.Context, serialNumber string) (*domainDevice.Device, error)
}

type ProcessorConfig struct {
	Workers    int
	BufferSize int
	// Cooldown suppresses repeats of the same alert type for a device.
	Cooldown time.Duration
}

// Processor validates queued telemetry on a pool of workers and raises
// alerts for unhealthy devices.
type Processor struct {
	devices DeviceLookup
	engine  *AlertEngine
	cfg     ProcessorConfig
	now     func() time.Time

	queue chan *TelemetryMessage
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	cooldownMu sync.Mutex
	lastRaised map[string]time.Time

	metrics *MetricsTracker
}

func NewProcessor(devices DeviceLookup, engine *AlertEngine, cfg ProcessorConfig) *Processor {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}

	return &Processor{
		devices:    devices,
		engine:     engine,
		cfg:        cfg,
		now:        time.Now,
		queue:      make(chan *TelemetryMessage, cfg.BufferSize),
		lastRaised: make(map[string]time.Time),
		metrics:    NewMetricsTracker(),
	}
}

func (p *Processor) Start() {
	logger.Info("Starting telemetry processor",
		zap.Int("workers", p.cfg.Workers),
		zap.Int("buffer_size", p.cfg.BufferSize),
	)

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop rejects new messages and waits for the queue to drain.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()

	m := p.metrics.Snapshot()
	logger.Info("Telemetry processor stopped",
		zap.Int64("received", m.MessagesReceived),
		zap.Int64("processed", m.MessagesProcessed),
		zap.Int64("failed", m.MessagesFailed),
		zap.Int64("alerts", m.AlertsGenerated),
	)
}

// Enqueue hands msg to the workers without blocking. It reports false when
// the buffer is full or the processor has stopped.
func (p *Processor) Enqueue(msg *TelemetryMessage) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}

	select {
	case p.queue <- msg:
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesReceived++
			m.BufferSize = len(p.queue)
		})
		return true
	default:
		logger.Warn("Telemetry buffer full, dropping message",
			zap.String("serial_number", msg.SerialNumber),
		)
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesDropped++
		})
		return false
	}
}

func (p *Processor) worker(id int) {
	defer p.wg.Done()

	for msg := range p.queue {
		start := time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		raised, err := p.Process(ctx, msg)
		cancel()

		if err != nil {
			logger.Warn("Failed to process telemetry",
				zap.Int("worker", id),
				zap.String("serial_number", msg.SerialNumber),
				zap.Error(err),
			)
			p.metrics.Update(func(m *IngestMetrics) {
				m.MessagesFailed++
			})
			continue
		}

		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesProcessed++
			m.AlertsGenerated += int64(raised)
			m.LastProcessedAt = time.Now()

			processingTime := time.Since(start)
			if m.AverageProcessingTime == 0 {
				m.AverageProcessingTime = processingTime
			} else {
				m.AverageProcessingTime = (m.AverageProcessingTime + processingTime) / 2
			}
		})
	}
}

// Process handles one message synchronously and returns the number of
// alerts stored.
func (p *Processor) Process(ctx context.Context, msg *TelemetryMessage) (int, error) {
	if err := ValidateTelemetry(msg, p.now()); err != nil {
		return 0, err
	}

	device, err := p.devices.GetBySerialNumber(ctx, msg.SerialNumber)
	if err != nil {
		if errors.Is(err, domainDevice.ErrDeviceNotFound) {
			p.metrics.Update(func(m *IngestMetrics) {
				m.UnknownDevices++
			})
		}
		return 0, fmt.Errorf("resolve device %q: %w", msg.SerialNumber, err)
	}

	alerts := p.filterCooldown(p.engine.CheckViolations(device.ID, msg))
	if len(alerts) == 0 {
		return 0, nil
	}

	saved, err := p.engine.SaveAlerts(ctx, alerts)
	if saved == 0 && err != nil {
		return 0, err
	}
	return saved, nil
}

// filterCooldown drops alerts whose device and type fired within the
// cooldown window and stamps the ones that pass.
func (p *Processor) filterCooldown(alerts []*domainAlert.Alert) []*domainAlert.Alert {
	if p.cfg.Cooldown <= 0 || len(alerts) == 0 {
		return alerts
	}

	now := p.now()
	p.cooldownMu.Lock()
	defer p.cooldownMu.Unlock()

	kept := alerts[:0]
	suppressed := 0
	for _, a := range alerts {
		key := fmt.Sprintf("%d/%s", a.DeviceID, a.AlertType)
		if last, ok := p.lastRaised[key]; ok && now.Sub(last) < p.cfg.Cooldown {
			suppressed++
			continue
		}
		p.lastRaised[key] = now
		kept = append(kept, a)
	}

	if suppressed > 0 {
		p.metrics.Update(func(m *IngestMetrics) {
			m.AlertsSuppressed += int64(suppressed)
		})
	}
	return kept
}

func (p *Processor) GetMetrics() IngestMetrics {
	return p.metrics.Snapshot()
}
