package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/vrt/deps"
	"github.com/randalmurphal/vrt/manifest"
	"github.com/randalmurphal/vrt/shell"
	"github.com/randalmurphal/vrt/testutil"
)

const testManifest = `{"name":"demo","version":"1.0.0","scripts":{"check":"","prepack":""}}`

func gitLog() string {
	rec := func(sha, msg, deco string) string {
		return "\x1e" + strings.Repeat(sha, 40) + "\x1f" + msg + "\x1f" + deco + "\x1f\n"
	}
	return rec("b", "add feature", "HEAD -> main") + rec("a", "initial", "tag: v1.0.0")
}

type harness struct {
	app    *App
	mock   *shell.MockRunner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	exits  []int
}

func newHarness(t *testing.T, dir string) *harness {
	t.Helper()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil && !os.IsExist(err) {
		t.Fatal(err)
	}
	for _, key := range []string{"VRT_BRANCH", "VRT_BACKEND", "VRT_VERSION", "VRT_WEBHOOK_URL", "VRT_SLACK_WEBHOOK_URL"} {
		t.Setenv(key, "")
	}

	h := &harness{
		mock: shell.NewMockRunner().
			OnCommand("git rev-parse --abbrev-ref HEAD", "main", 0).
			OnCommand("git status --porcelain", "", 0).
			OnPrefix("git log ", gitLog(), 0),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.app = &App{
		Stdin:   strings.NewReader(""),
		Stdout:  h.stdout,
		Stderr:  h.stderr,
		Runner:  h.mock,
		Dir:     dir,
		HomeDir: t.TempDir(),
		Exit:    func(code int) { h.exits = append(h.exits, code) },
	}
	return h
}

func (h *harness) run(args ...string) int {
	return Execute(context.Background(), h.app, append(args, "--no-color"))
}

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(content), 0o644))
}

func TestReleaseNPM(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, testManifest)
	h := newHarness(t, dir)

	code := h.run("release-npm", "--version", "minor", "--draft")
	require.Equal(t, 0, code, h.stderr.String())
	assert.Empty(t, h.exits)

	cmds := h.mock.Commands()
	assert.Contains(t, cmds, "npm publish --access public")
	assert.Equal(t, "gh release view v1.1.0", cmds[len(cmds)-2])
	assert.True(t, strings.HasSuffix(cmds[len(cmds)-1], `gh release edit "v1.1.0" -F - --draft`), cmds[len(cmds)-1])

	assert.Contains(t, h.stderr.String(), "i Finished")
	assert.Contains(t, testutil.ReadFile(t, dir, manifest.FileName), `"version": "1.1.0"`)
}

func TestReleaseNPM_PathArgument(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "packages", "lib")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	writeManifest(t, pkgDir, testManifest)
	h := newHarness(t, root)

	code := h.run("release-npm", "packages/lib", "--version", "patch")
	require.Equal(t, 0, code, h.stderr.String())

	for _, c := range h.mock.Calls() {
		assert.Equal(t, pkgDir, c.Dir)
	}
}

func TestReleaseNPM_WrongBranchFails(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, testManifest)
	h := newHarness(t, dir)

	code := h.run("release-npm", "--branch", "release", "--version", "patch")
	assert.Equal(t, 1, code)
	assert.Equal(t, []int{1}, h.exits)
	assert.Contains(t, h.stderr.String(), `! ERROR: current branch is "main" but should be "release"`)
	assert.Contains(t, h.stderr.String(), "git checkout release")
}

func TestReleaseNPM_BranchFromLocalConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".vrt.yaml"), []byte("branch: trunk\nversion: keep\n"), 0o644))
	writeManifest(t, dir, testManifest)
	h := newHarness(t, dir)

	code := h.run("release-npm")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), `should be "trunk"`)
}

func TestReleaseNPM_CommandFailuresAreNotRewritten(t *testing.T) {
	tests := []struct {
		name    string
		command string
		stderr  string
	}{
		{"check timeout", "npm run check", `Error: Timeout of 2000ms exceeded in test "parses config"`},
		{"check assertion", "npm run check", "AssertionError: expected 401 to equal 200"},
		{"push denied", "git push --no-verify --follow-tags", "git@github.com: Permission denied (publickey)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, testManifest)
			h := newHarness(t, dir)
			h.mock.OnResponse(tt.command, shell.MockResponse{
				Result: shell.Result{ExitCode: 1, Stderr: tt.stderr + "\n"},
			})

			code := h.run("release-npm", "--version", "patch")
			assert.Equal(t, 1, code)

			out := h.stderr.String()
			assert.Contains(t, out, fmt.Sprintf("%q exited with code 1: %s", tt.command, tt.stderr))
			assert.NotContains(t, out, "timed out")
			assert.NotContains(t, out, "rejected the credentials")
			assert.NotContains(t, out, "don't have permission")
		})
	}
}

func TestReleaseNPM_NotInGitRepository(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, testManifest)
	h := newHarness(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, ".git")))

	code := h.run("release-npm", "--version", "patch")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "is not inside a git repository.")
	assert.Empty(t, h.mock.Commands())
}

func TestReleaseNPM_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, testManifest)
	h := newHarness(t, dir)

	code := h.run("release-npm", "--backend", "bitbucket")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "unknown release backend")
	assert.Empty(t, h.mock.Commands())
}

func TestReleaseNPM_MissingTokenSuggestsFix(t *testing.T) {
	dir := testutil.SetupTestPackage(t, testManifest)
	testutil.AddRemote(t, dir, "origin", "git@github.com:acme/demo.git")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GIT_TOKEN", "")
	h := newHarness(t, dir)

	code := h.run("release-npm", "--backend", "github")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "No GitHub API token found.")
	assert.Contains(t, h.stderr.String(), "GITHUB_TOKEN, GIT_TOKEN")
}

func TestDepsUpgrade(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name":"demo","version":"1.0.0","dependencies":{"left-pad":"^1.0.0"}}`)
	h := newHarness(t, dir)
	h.mock.OnCommand("npm outdated --all --json", `{"left-pad":{"current":"1.0.0","wanted":"1.0.0","latest":"1.3.0"}}`, 1)

	code := h.run("deps-upgrade")
	require.Equal(t, 0, code, h.stderr.String())
	assert.Contains(t, testutil.ReadFile(t, dir, manifest.FileName), `"left-pad": "^1.3.0"`)
	assert.Contains(t, h.stderr.String(), "i All dependencies are up to date")
}

func TestDepsGraph(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, dir)
	h.mock.OnCommand(deps.GraphCommand("lib"), "flowchart LR\nsubgraph 0[\"lib\"]\nend", 0)

	code := h.run("deps-graph", "--source", "lib")
	require.Equal(t, 0, code, h.stderr.String())

	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "```mermaid\n---\nconfig:\n  layout: elk\n---\nflowchart TB\n"), out)
	assert.Contains(t, out, "\nclass 0 subgraphs;")
	assert.True(t, strings.HasSuffix(out, "\n```\n"), out)
}

func TestDepsGraph_NoOutput(t *testing.T) {
	h := newHarness(t, t.TempDir())
	h.mock.OnCommand(deps.GraphCommand("src"), "", 0)

	assert.Equal(t, 1, h.run("deps-graph"))
	assert.Contains(t, h.stderr.String(), "! ERROR: no output")
	assert.Empty(t, h.stdout.String())
}

func TestConfigSetGetList(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, dir)

	require.Equal(t, 0, h.run("config", "set", "branch", "develop"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "Saved branch to "+filepath.Join(dir, ".vrt.yaml"))

	require.Equal(t, 0, h.run("config", "set", "--global", "backend", "gitlab"), h.stderr.String())
	assert.FileExists(t, filepath.Join(h.app.HomeDir, ".config", "vrt", "config.yaml"))

	h.stdout.Reset()
	require.Equal(t, 0, h.run("config", "get", "branch"))
	assert.Equal(t, "develop\n", h.stdout.String())

	h.stdout.Reset()
	require.Equal(t, 0, h.run("config", "list"))
	out := h.stdout.String()
	assert.Regexp(t, `branch\s+develop\s+local`, out)
	assert.Regexp(t, `backend\s+gitlab\s+global`, out)
	assert.Regexp(t, `required_scripts\s+check,prepack\s+default`, out)
	assert.Regexp(t, `webhook_url\s+unset`, out)
}

func TestConfigRejectsUnknownKey(t *testing.T) {
	h := newHarness(t, t.TempDir())

	assert.Equal(t, 1, h.run("config", "get", "colour"))
	assert.Contains(t, h.stderr.String(), "unknown config key: colour")
}
