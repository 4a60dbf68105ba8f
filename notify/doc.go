// Package notify announces release events to chat and webhooks.
//
// Core types:
//   - Notifier: Interface for sending notifications
//   - Event: Release event with package, version, message, and metadata
//   - Emitter: Stamps events with a per-run nanoid and timestamp
//
// Implementations:
//   - SlackNotifier: Sends notifications to Slack webhooks
//   - WebhookNotifier: Posts events as JSON to generic webhooks
//   - LogNotifier: Logs notifications through slog
//   - MultiNotifier: Combines multiple notifiers
//   - NopNotifier: No-op notifier
//
// Example usage:
//
//	emitter := notify.NewEmitter(notify.NewMultiNotifier(
//	    notify.NewLogNotifier(nil),
//	    notify.NewSlackNotifier(webhookURL, notify.WithSlackChannel("#releases")),
//	), "my-package")
//	_ = emitter.Emit(ctx, notify.Event{
//	    Type:    notify.EventReleasePublished,
//	    Version: "1.2.0",
//	    Message: "released v1.2.0",
//	})
package notify
