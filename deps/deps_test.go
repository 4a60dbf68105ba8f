package deps

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/vrt/manifest"
	"github.com/randalmurphal/vrt/notify"
	"github.com/randalmurphal/vrt/report"
	"github.com/randalmurphal/vrt/shell"
	"github.com/randalmurphal/vrt/testutil"
)

const pkgJSON = `{
  "name": "demo",
  "version": "1.0.0",
  "dependencies": {
    "lodash": "~4.0.0",
    "left-pad": "1.1.0",
    "local-lib": "file:../local-lib",
    "express": "^4.18.0"
  },
  "devDependencies": {
    "typescript": "^5.0.0",
    "next-tag": "next"
  }
}
`

func TestParseOutdated(t *testing.T) {
	got, err := ParseOutdated(testutil.LoadFixture(t, "outdated.json"))
	require.NoError(t, err)

	assert.Len(t, got, 5)
	assert.Equal(t, "1.3.0", got["left-pad"].Latest)
	assert.Equal(t, "4.0.0", got["lodash"].Current, "top-level install preferred")
	assert.Equal(t, "5.0.4", got["typescript"].Wanted)
}

func TestParseOutdated_Empty(t *testing.T) {
	for _, in := range []string{"", "  \n", "{}"} {
		got, err := ParseOutdated([]byte(in))
		require.NoError(t, err, "%q", in)
		assert.Empty(t, got)
	}
}

func TestParseOutdated_Malformed(t *testing.T) {
	_, err := ParseOutdated([]byte(`{"left-pad": `))
	assert.Error(t, err)

	_, err = ParseOutdated([]byte(`{"left-pad": []}`))
	assert.Error(t, err)
}

func TestUpgradeSpec(t *testing.T) {
	tests := []struct {
		spec, latest string
		want         string
		changed      bool
	}{
		{"^1.2.3", "2.0.0", "^2.0.0", true},
		{"~1.2.3", "1.3.0", "~1.3.0", true},
		{"1.2.3", "1.2.4", "1.2.4", true},
		{"^2.0.0", "2.0.0", "^2.0.0", false},
		{"^3.0.0", "2.0.0", "^3.0.0", false},
		{"file:../lib", "1.0.0", "file:../lib", false},
		{"git+https://github.com/a/b.git", "1.0.0", "git+https://github.com/a/b.git", false},
		{"workspace:*", "1.0.0", "workspace:*", false},
		{"latest", "1.0.0", "latest", false},
		{">=1.0.0 <2.0.0", "2.0.0", ">=1.0.0 <2.0.0", false},
		{"^1.0.0", "2.0.0-beta.1", "^1.0.0", false},
	}
	for _, tt := range tests {
		got, changed := UpgradeSpec(tt.spec, tt.latest)
		assert.Equal(t, tt.want, got, tt.spec)
		assert.Equal(t, tt.changed, changed, tt.spec)
	}
}

type recordingNotifier struct {
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) error {
	r.events = append(r.events, e)
	return nil
}

func newUpgrader(t *testing.T, mock *shell.MockRunner, opts ...Option) (*Upgrader, string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(pkgJSON), 0o644))

	var out bytes.Buffer
	rep := report.New(&out, report.WithColor(false), report.WithLive(false), report.WithExit(func(int) {}))
	return New(shell.New(dir, shell.WithRunner(mock)), rep, opts...), dir, &out
}

func TestRun(t *testing.T) {
	mock := shell.NewMockRunner().OnCommand(cmdOutdated, string(testutil.LoadFixture(t, "outdated.json")), 1)
	notifier := &recordingNotifier{}
	u, dir, out := newUpgrader(t, mock, WithNotifier(notifier))

	changes, err := u.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Change{
		{Section: "dependencies", Name: "lodash", From: "~4.0.0", To: "~4.17.21"},
		{Section: "dependencies", Name: "left-pad", From: "1.1.0", To: "1.3.0"},
		{Section: "devDependencies", Name: "typescript", From: "^5.0.0", To: "^5.4.5"},
	}, changes)

	assert.Equal(t, []string{
		"npm outdated --all --json",
		"rm -f package-lock.json && rm -rf node_modules",
		"npm i",
	}, mock.Commands())

	assert.Equal(t, `{
  "name": "demo",
  "version": "1.0.0",
  "dependencies": {
    "lodash": "~4.17.21",
    "left-pad": "1.3.0",
    "local-lib": "file:../local-lib",
    "express": "^4.18.0"
  },
  "devDependencies": {
    "typescript": "^5.4.5",
    "next-tag": "next"
  }
}
`, testutil.ReadFile(t, dir, manifest.FileName))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "i All dependencies are up to date", lines[len(lines)-1])
	assert.Contains(t, out.String(), "✔ Upgrade all dependencies")
	assert.Contains(t, out.String(), "✔ Remove lock file and node_modules")
	assert.Contains(t, out.String(), "✔ Reinstall all dependencies")

	require.Len(t, notifier.events, 1)
	assert.Equal(t, notify.EventDepsUpgraded, notifier.events[0].Type)
	assert.Equal(t, "demo", notifier.events[0].Package)
}

func TestRun_NothingOutdatedLeavesManifest(t *testing.T) {
	mock := shell.NewMockRunner().OnCommand(cmdOutdated, "{}", 0)
	u, dir, _ := newUpgrader(t, mock)

	changes, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.Equal(t, pkgJSON, testutil.ReadFile(t, dir, manifest.FileName))
}

func TestRun_RemoveFailureIsWarning(t *testing.T) {
	mock := shell.NewMockRunner().
		OnCommand(cmdOutdated, "", 0).
		OnCommand(cmdRemove, "", 1)
	u, _, out := newUpgrader(t, mock)

	_, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✘ Remove lock file and node_modules")
	assert.Contains(t, out.String(), "! warning: could not remove lock file and node_modules")
	assert.Equal(t, "npm i", mock.Commands()[2])
}

func TestRun_MalformedOutdatedJSON(t *testing.T) {
	mock := shell.NewMockRunner().OnCommand(cmdOutdated, "npm ERR! not json", 1)
	u, dir, _ := newUpgrader(t, mock)

	_, err := u.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse npm outdated output")
	assert.Equal(t, []string{cmdOutdated}, mock.Commands())
	assert.Equal(t, pkgJSON, testutil.ReadFile(t, dir, manifest.FileName))
}

func TestRun_ReinstallFailure(t *testing.T) {
	mock := shell.NewMockRunner().
		OnCommand(cmdOutdated, "", 0).
		OnCommand(cmdReinstall, "", 1)
	u, _, out := newUpgrader(t, mock)

	_, err := u.Run(context.Background())
	var exitErr *shell.NonZeroExitError
	require.ErrorAs(t, err, &exitErr)
	assert.NotContains(t, out.String(), "All dependencies are up to date")
}
