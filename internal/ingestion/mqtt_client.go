package ingestion

import (
	"errors"
	"fmt"
	"sync"

	"it-asset-dashboard/internal/logger"
	pkgmqtt "it-asset-dashboard/pkg/mqtt"

	"go.uber.org/zap"
)

// Subscriber is satisfied by *mqtt.Client. The connection is owned by the
// caller and shared with the activity publisher.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler pkgmqtt.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// MQTTIngestionClient feeds telemetry messages into the processor.
type MQTTIngestionClient struct {
	client    Subscriber
	topic     string
	qos       byte
	processor *Processor

	mu      sync.Mutex
	started bool
}

func NewMQTTIngestionClient(client Subscriber, topic string, qos byte, processor *Processor) (*MQTTIngestionClient, error) {
	if client == nil {
		return nil, errors.New("mqtt client is required")
	}
	if topic == "" {
		return nil, errors.New("telemetry topic is required")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	return &MQTTIngestionClient{
		client:    client,
		topic:     topic,
		qos:       qos,
		processor: processor,
	}, nil
}

func (c *MQTTIngestionClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}
	if err := c.client.Subscribe(c.topic, c.qos, c.handleTelemetry); err != nil {
		return fmt.Errorf("subscribe failed for topic %s: %w", c.topic, err)
	}

	c.started = true
	logger.Info("Listening for device telemetry", zap.String("topic", c.topic))
	return nil
}

func (c *MQTTIngestionClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}
	if err := c.client.Unsubscribe(c.topic); err != nil {
		logger.Warn("Failed to unsubscribe from telemetry topic",
			zap.String("topic", c.topic),
			zap.Error(err),
		)
	}
	c.started = false
}

func (c *MQTTIngestionClient) handleTelemetry(topic string, payload []byte) {
	msg, err := ParseTelemetry(topic, payload)
	if err != nil {
		logger.Warn("Invalid telemetry payload",
			zap.String("topic", topic),
			zap.Error(err),
		)
		c.processor.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed++
		})
		return
	}

	c.processor.Enqueue(msg)
}
