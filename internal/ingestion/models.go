package ingestion

import (
	"encoding/json"
	"strings"
	"time"
)

// TelemetryMessage is a health report published by a device agent on
// <prefix>/devices/<serial>/telemetry. Every metric is optional.
type TelemetryMessage struct {
	SerialNumber  string    `json:"serial_number"`
	Timestamp     time.Time `json:"timestamp"`
	CPUTempC      *float64  `json:"cpu_temp_c"`
	DiskFreePct   *float64  `json:"disk_free_pct"`
	MemoryUsedPct *float64  `json:"memory_used_pct"`
	BatteryLevel  *int      `json:"battery_level"`
	DiskHealthy   *bool     `json:"disk_healthy"`
}

// ParseTelemetry decodes payload. The serial number falls back to the topic
// segment after "devices" and the timestamp to the receive time.
func ParseTelemetry(topic string, payload []byte) (*TelemetryMessage, error) {
	var msg TelemetryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	msg.SerialNumber = strings.TrimSpace(msg.SerialNumber)
	if msg.SerialNumber == "" {
		msg.SerialNumber = serialFromTopic(topic)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return &msg, nil
}

func serialFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "devices" {
			return strings.TrimSpace(parts[i+1])
		}
	}
	return ""
}
