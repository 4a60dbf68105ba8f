package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/randalmurphal/vrt/httpx"
)

// =============================================================================
// Event Tests
// =============================================================================

func TestEventTypes(t *testing.T) {
	types := []EventType{
		EventReleaseStarted,
		EventReleasePublished,
		EventReleaseFailed,
		EventDepsUpgraded,
	}

	seen := make(map[EventType]bool)
	for _, et := range types {
		if seen[et] {
			t.Errorf("duplicate event type: %s", et)
		}
		seen[et] = true
	}
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	if !regexp.MustCompile(`^[0-9a-z]{12}$`).MatchString(id) {
		t.Errorf("NewRunID() = %q, want 12 lowercase alphanumerics", id)
	}
	if other := NewRunID(); other == id {
		t.Errorf("NewRunID() returned %q twice", id)
	}
}

type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestEmitterStampsEvents(t *testing.T) {
	rec := &recordingNotifier{}
	e := NewEmitter(rec, "demo")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	if err := e.Emit(context.Background(), Event{Type: EventReleaseStarted, Message: "start"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	e.SetPackage("renamed")
	_ = e.Emit(context.Background(), Event{Type: EventReleaseFailed, Severity: SeverityError})

	if len(rec.events) != 2 {
		t.Fatalf("got %d events, want 2", len(rec.events))
	}
	first := rec.events[0]
	if first.RunID != e.RunID() || first.Package != "demo" || first.Severity != SeverityInfo || !first.Timestamp.Equal(fixed) {
		t.Errorf("first event = %+v", first)
	}
	if rec.events[1].Package != "renamed" || rec.events[1].Severity != SeverityError {
		t.Errorf("second event = %+v", rec.events[1])
	}
	if rec.events[0].RunID != rec.events[1].RunID {
		t.Error("events of one emitter must share a run ID")
	}
}

func TestEmitterNilNotifier(t *testing.T) {
	if err := NewEmitter(nil, "").Emit(context.Background(), Event{}); err != nil {
		t.Errorf("Emit() error = %v", err)
	}
}

// =============================================================================
// LogNotifier Tests
// =============================================================================

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.Notify(context.Background(), Event{
		Type:      EventReleasePublished,
		RunID:     "run123",
		Package:   "demo",
		Version:   "1.1.0",
		Message:   "released v1.1.0",
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Errorf("LogNotifier.Notify() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"released v1.1.0", "run_id=run123", "package=demo", "version=1.1.0"} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q: %s", want, output)
		}
	}
}

func TestLogNotifier_Severity(t *testing.T) {
	tests := []struct {
		severity string
		wantLog  string
	}{
		{SeverityInfo, "level=INFO"},
		{SeverityWarning, "level=WARN"},
		{SeverityError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			var buf bytes.Buffer
			n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

			if err := n.Notify(context.Background(), Event{Message: "test", Severity: tt.severity}); err != nil {
				t.Errorf("Notify() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log output = %q, want to contain %q", buf.String(), tt.wantLog)
			}
		})
	}
}

func TestLogNotifier_FixedLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	n := NewLogNotifier(logger, WithLogLevel(slog.LevelDebug))

	if err := n.Notify(context.Background(), Event{Message: "release failed", Severity: SeverityError}); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("debug event written at info handler level: %q", buf.String())
	}

	buf.Reset()
	verbose := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	n = NewLogNotifier(verbose, WithLogLevel(slog.LevelDebug))
	if err := n.Notify(context.Background(), Event{Message: "release failed", Severity: SeverityError}); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Errorf("log output = %q, want level=DEBUG", buf.String())
	}
}

// =============================================================================
// WebhookNotifier Tests
// =============================================================================

func TestWebhookNotifier(t *testing.T) {
	var receivedBody []byte
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		receivedAuth = r.Header.Get("Authorization")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, map[string]string{"Authorization": "Bearer t"})
	err := n.Notify(context.Background(), Event{
		Type:    EventReleaseStarted,
		RunID:   "run123",
		Package: "demo",
		Message: "starting release process",
	})
	if err != nil {
		t.Fatalf("WebhookNotifier.Notify() error = %v", err)
	}

	var parsed Event
	if err := json.Unmarshal(receivedBody, &parsed); err != nil {
		t.Fatalf("failed to parse received body: %v", err)
	}
	if parsed.Type != EventReleaseStarted || parsed.RunID != "run123" || parsed.Package != "demo" {
		t.Errorf("received %+v", parsed)
	}
	if receivedAuth != "Bearer t" {
		t.Errorf("Authorization = %q", receivedAuth)
	}
}

func TestWebhookNotifier_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := NewWebhookNotifier(server.URL, nil).Notify(context.Background(), Event{})
	if !errors.Is(err, httpx.ErrForbidden) {
		t.Errorf("Notify() error = %v, want ErrForbidden", err)
	}
}

// =============================================================================
// SlackNotifier Tests
// =============================================================================

func TestSlackNotifier(t *testing.T) {
	var payload slackPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL, WithSlackChannel("#releases"), WithSlackUsername("bot"))
	err := n.Notify(context.Background(), Event{
		Type:     EventReleaseFailed,
		RunID:    "run123",
		Package:  "demo",
		Version:  "2.0.0",
		Message:  "npm publish failed",
		Severity: SeverityError,
		Metadata: map[string]any{"step": "npm publish", "exit_code": 1},
	})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if payload.Channel != "#releases" || payload.Username != "bot" {
		t.Errorf("channel/username = %q/%q", payload.Channel, payload.Username)
	}
	if len(payload.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(payload.Attachments))
	}
	att := payload.Attachments[0]
	if att.Color != "danger" {
		t.Errorf("Color = %q, want danger", att.Color)
	}
	if att.Title != ":x: release_failed demo@2.0.0" {
		t.Errorf("Title = %q", att.Title)
	}
	if len(att.Fields) != 2 || att.Fields[0].Title != "exit_code" || att.Fields[1].Value != "npm publish" {
		t.Errorf("Fields = %+v", att.Fields)
	}
}

func TestSlackNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := httpx.NewClient(httpx.ClientConfig{ServiceName: "slack", MaxRetries: 1})
	err := NewSlackNotifier(server.URL, WithSlackClient(client)).Notify(context.Background(), Event{})
	if !errors.Is(err, httpx.ErrServerError) {
		t.Errorf("Notify() error = %v, want ErrServerError", err)
	}
}

// =============================================================================
// MultiNotifier Tests
// =============================================================================

func TestMultiNotifier(t *testing.T) {
	ok := &recordingNotifier{}
	failing := &recordingNotifier{err: errors.New("down")}
	after := &recordingNotifier{}

	n := NewMultiNotifier(ok, failing, after)
	n.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	err := n.Notify(context.Background(), Event{Type: EventDepsUpgraded})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Errorf("Notify() error = %v, want joined failure", err)
	}
	if len(ok.events) != 1 || len(after.events) != 1 {
		t.Error("a failing notifier must not stop the others")
	}
}

func TestNopNotifier(t *testing.T) {
	if err := (NopNotifier{}).Notify(context.Background(), Event{}); err != nil {
		t.Errorf("NopNotifier.Notify() error = %v", err)
	}
}
