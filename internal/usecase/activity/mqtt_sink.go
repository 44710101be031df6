package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	domainActivity "it-asset-dashboard/internal/domain/activity"
)

// Publisher is satisfied by *mqtt.Client.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTSink publishes entries to <prefix>/activity/<table>/<record-id>.
type MQTTSink struct {
	publisher Publisher
	prefix    string
	qos       byte
}

func NewMQTTSink(publisher Publisher, topicPrefix string, qos byte) *MQTTSink {
	return &MQTTSink{
		publisher: publisher,
		prefix:    strings.TrimSuffix(topicPrefix, "/"),
		qos:       qos,
	}
}

type eventPayload struct {
	ID        uint      `json:"id,omitempty"`
	Action    string    `json:"action"`
	Table     string    `json:"table"`
	RecordID  uint      `json:"record_id"`
	UserID    *uint     `json:"user_id,omitempty"`
	Username  *string   `json:"username,omitempty"`
	Details   string    `json:"details"`
	Snapshot  any       `json:"snapshot,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *MQTTSink) Topic(e *domainActivity.Entry) string {
	return fmt.Sprintf("%s/activity/%s/%d", s.prefix, strings.ToLower(e.TableName), e.RecordID)
}

func (s *MQTTSink) Write(ctx context.Context, e *domainActivity.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(eventPayload{
		ID:        e.ID,
		Action:    string(e.Action),
		Table:     e.TableName,
		RecordID:  e.RecordID,
		UserID:    e.UserID,
		Username:  e.Username,
		Details:   e.Details,
		Snapshot:  e.Snapshot,
		Timestamp: e.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to encode activity event: %w", err)
	}

	if err := s.publisher.Publish(s.Topic(e), s.qos, false, payload); err != nil {
		return fmt.Errorf("failed to publish activity event: %w", err)
	}
	return nil
}
