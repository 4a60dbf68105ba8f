package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Configuration keys.
const (
	KeyBranch          = "branch"
	KeyBackend         = "backend"
	KeyVersion         = "version"
	KeyRequiredScripts = "required_scripts"
	KeyDraft           = "draft"
	KeyPrerelease      = "prerelease"
	KeyWebhookURL      = "webhook_url"
	KeySlackWebhookURL = "slack_webhook_url"
	KeySlackChannel    = "slack_channel"
	KeyNoColor         = "no_color"
)

// Keys lists every known key in display order.
var Keys = []string{
	KeyBranch,
	KeyBackend,
	KeyVersion,
	KeyRequiredScripts,
	KeyDraft,
	KeyPrerelease,
	KeyWebhookURL,
	KeySlackWebhookURL,
	KeySlackChannel,
	KeyNoColor,
}

// Defaults holds the built-in value of each key that has one.
var Defaults = map[string]string{
	KeyBranch:          "main",
	KeyBackend:         "gh",
	KeyRequiredScripts: "check,prepack",
	KeyDraft:           "false",
	KeyPrerelease:      "false",
	KeyNoColor:         "false",
}

// Settings is the typed view of a resolved configuration.
type Settings struct {
	// Branch is the only branch releases may be cut from.
	Branch string
	// Backend selects the release publisher: gh, github or gitlab.
	Backend string
	// Version answers the version prompt non-interactively when set:
	// keep, patch, minor, major or an explicit X.Y.Z.
	Version string
	// RequiredScripts must exist in package.json before a release.
	RequiredScripts []string
	Draft           bool
	Prerelease      bool
	WebhookURL      string
	SlackWebhookURL string
	SlackChannel    string
	NoColor         bool
}

// Settings converts the resolved values into Settings.
func (c *Resolved) Settings() (Settings, error) {
	s := Settings{
		Branch:          c.Get(KeyBranch),
		Backend:         c.Get(KeyBackend),
		Version:         c.Get(KeyVersion),
		RequiredScripts: splitList(c.Get(KeyRequiredScripts)),
		WebhookURL:      c.Get(KeyWebhookURL),
		SlackWebhookURL: c.Get(KeySlackWebhookURL),
		SlackChannel:    c.Get(KeySlackChannel),
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{KeyDraft, &s.Draft},
		{KeyPrerelease, &s.Prerelease},
		{KeyNoColor, &s.NoColor},
	}
	for _, b := range bools {
		v, err := parseBool(c.Get(b.key))
		if err != nil {
			return Settings{}, fmt.Errorf("%s (from %s): %w", b.key, c.Source(b.key), err)
		}
		*b.dst = v
	}

	return s, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsKnownKey reports whether key is a configuration key.
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
