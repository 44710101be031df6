package activity

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Table names recorded in the activity log.
const (
	TableDevices   = "Devices"
	TableSchedules = "MaintenanceSchedules"
)

// Entry is one audit record of a user action.
type Entry struct {
	ID        uint
	UserID    *uint
	Username  *string // read-only, joined from users
	Action    Action
	TableName string
	RecordID  uint
	Details   string
	Snapshot  any // optional record state, e.g. a device before deletion
	Timestamp time.Time
}

//go:generate mockgen -source=activity.go -destination=mocks/activity_mock.go -package=mocks

// Recorder receives lifecycle events. Implementations must not block the
// caller on slow sinks; callers ignore delivery failures.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Sink persists or forwards a single entry.
type Sink interface {
	Write(ctx context.Context, entry *Entry) error
}

// Repository stores and lists activity entries.
type Repository interface {
	Sink
	List(ctx context.Context, page, pageSize int) ([]*Entry, int64, error)
}

// Actor identifies the authenticated user behind a change. A nil *Actor
// records an anonymous entry.
type Actor struct {
	UserID   uint
	Username string
}

// NewEntry builds an entry attributed to actor.
func NewEntry(actor *Actor, action Action, table string, recordID uint, details string) Entry {
	e := Entry{
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		Details:   details,
		Timestamp: time.Now(),
	}
	if actor != nil {
		id, name := actor.UserID, actor.Username
		e.UserID = &id
		e.Username = &name
	}
	return e
}
