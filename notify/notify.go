package notify

import (
	"context"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// =============================================================================
// Notification Types
// =============================================================================

// EventType represents the type of release event.
type EventType string

// Event type constants.
const (
	EventReleaseStarted   EventType = "release_started"
	EventReleasePublished EventType = "release_published"
	EventReleaseFailed    EventType = "release_failed"
	EventDepsUpgraded     EventType = "deps_upgraded"
)

// Severity constants.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes a release event for notification.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	Package   string         `json:"package,omitempty"`
	Version   string         `json:"version,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// runIDAlphabet avoids characters that need quoting in shells and URLs.
const runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewRunID returns a short random identifier shared by all events of one
// command invocation.
func NewRunID() string {
	id, err := gonanoid.Generate(runIDAlphabet, 12)
	if err != nil {
		return time.Now().UTC().Format("20060102150405")
	}
	return id
}

// =============================================================================
// Notifier Interface
// =============================================================================

// Notifier sends notifications about release events.
type Notifier interface {
	// Notify sends a notification. Callers log errors and carry on;
	// a failed notification never aborts a release.
	Notify(ctx context.Context, event Event) error
}

// Emitter stamps events with a run ID and timestamp before sending them.
type Emitter struct {
	notifier Notifier
	runID    string
	pkg      string
	now      func() time.Time
}

// NewEmitter creates an Emitter with a fresh run ID. A nil notifier
// discards events.
func NewEmitter(n Notifier, pkg string) *Emitter {
	if n == nil {
		n = NopNotifier{}
	}
	return &Emitter{notifier: n, runID: NewRunID(), pkg: pkg, now: time.Now}
}

// RunID returns the run identifier stamped on every event.
func (e *Emitter) RunID() string { return e.runID }

// SetPackage sets the package name stamped on later events.
func (e *Emitter) SetPackage(name string) { e.pkg = name }

// Emit fills RunID, Package, Severity and Timestamp when unset and sends ev.
func (e *Emitter) Emit(ctx context.Context, ev Event) error {
	ev.RunID = e.runID
	if ev.Package == "" {
		ev.Package = e.pkg
	}
	if ev.Severity == "" {
		ev.Severity = SeverityInfo
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = e.now().UTC()
	}
	return e.notifier.Notify(ctx, ev)
}
