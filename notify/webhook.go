package notify

import (
	"context"

	"github.com/randalmurphal/vrt/httpx"
)

// =============================================================================
// WebhookNotifier
// =============================================================================

// WebhookNotifier posts each Event as JSON to a generic HTTP webhook.
type WebhookNotifier struct {
	URL    string
	Client *httpx.Client
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		URL: url,
		Client: httpx.NewClient(httpx.ClientConfig{
			ServiceName: "webhook",
			Headers:     headers,
		}),
	}
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	return n.Client.PostJSON(ctx, n.URL, event)
}
