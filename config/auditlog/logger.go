package auditlog

import "time"

// QueryFilter specifies criteria for querying activity events.
type QueryFilter struct {
	Instance string
	Project  string
	Kinds    []EventKind
	Limit    int
	Before   time.Time
	After    time.Time
}

// Logger records launcher activity and reads it back for the home screen.
type Logger interface {
	Emit(event Event)
	Query(filter QueryFilter) ([]Event, error)
	Prune(cutoff time.Time) (int64, error)
	Close() error
}

// EventOption is a functional option for configuring optional Event fields.
type EventOption func(*Event)

// WithInstance sets the Instance field on the event.
func WithInstance(id string) EventOption {
	return func(e *Event) { e.Instance = id }
}

// WithProject sets the Project field on the event.
func WithProject(projectID string) EventOption {
	return func(e *Event) { e.Project = projectID }
}

// WithFile sets the File field on the event.
func WithFile(name string) EventOption {
	return func(e *Event) { e.File = name }
}

// WithDetail sets the Detail field on the event (JSON-encoded extra data).
func WithDetail(detail string) EventOption {
	return func(e *Event) { e.Detail = detail }
}

// WithLevel sets the Level field on the event (info, warn, error).
func WithLevel(level string) EventOption {
	return func(e *Event) { e.Level = level }
}

// NewEvent builds an event of kind with message and applies opts.
func NewEvent(kind EventKind, message string, opts ...EventOption) Event {
	e := Event{Kind: kind, Message: message}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// nopLogger is a no-op Logger used when no database is configured.
type nopLogger struct{}

// NopLogger returns a Logger that discards all events.
func NopLogger() Logger {
	return &nopLogger{}
}

func (n *nopLogger) Emit(_ Event) {}

func (n *nopLogger) Query(_ QueryFilter) ([]Event, error) {
	return nil, nil
}

func (n *nopLogger) Prune(time.Time) (int64, error) {
	return 0, nil
}

func (n *nopLogger) Close() error {
	return nil
}
