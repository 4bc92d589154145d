package auditlog

import "time"

// EventKind identifies the type of activity event.
type EventKind string

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Instance lifecycle events.
const (
	EventInstanceCreated   EventKind = "instance_created"
	EventInstanceInstalled EventKind = "instance_installed"
	EventInstanceEdited    EventKind = "instance_edited"
	EventInstanceDeleted   EventKind = "instance_deleted"
	EventInstanceLaunched  EventKind = "instance_launched"
)

// Content events.
const (
	EventFileToggled      EventKind = "file_toggled"
	EventFileRemoved      EventKind = "file_removed"
	EventProjectInstalled EventKind = "project_installed"
	EventPackInstalled    EventKind = "pack_installed"
)

// Operational events.
const (
	EventAccountAdded EventKind = "account_added"
	EventError        EventKind = "error"
)

// Event is a single activity log entry.
type Event struct {
	ID        int64
	Kind      EventKind
	Timestamp time.Time
	Instance  string // instance id
	Project   string // Modrinth project id
	File      string // file name inside the instance
	Message   string
	Detail    string // JSON-encoded extra data
	Level     string // info, warn, error
}
