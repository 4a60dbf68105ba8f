package hosting

import (
	"context"
	"fmt"

	"github.com/randalmurphal/vrt/notes"
	"github.com/randalmurphal/vrt/shell"
)

// GHCLI publishes releases with the gh command line tool. Notes are
// escaped and piped through echo -e so arbitrary commit text survives
// shell quoting.
type GHCLI struct {
	sh   *shell.Shell
	opts Options
}

// NewGHCLI creates a gh-backed publisher running in sh's directory.
func NewGHCLI(sh *shell.Shell, opts Options) *GHCLI {
	return &GHCLI{sh: sh, opts: opts}
}

// Exists implements Publisher. Any non-zero exit of gh release view
// counts as absent.
func (g *GHCLI) Exists(ctx context.Context, tag string) (bool, error) {
	ok, err := g.sh.OK(ctx, "gh release view "+tag)
	if err != nil {
		return false, g.fail("get release", tag, err)
	}
	return ok, nil
}

// Create implements Publisher.
func (g *GHCLI) Create(ctx context.Context, tag, body string) error {
	if _, err := g.sh.Run(ctx, g.command("create", tag, body)); err != nil {
		return g.fail("create release", tag, err)
	}
	return nil
}

// Edit implements Publisher.
func (g *GHCLI) Edit(ctx context.Context, tag, body string) error {
	if _, err := g.sh.Run(ctx, g.command("edit", tag, body)); err != nil {
		return g.fail("edit release", tag, err)
	}
	return nil
}

func (g *GHCLI) command(verb, tag, body string) string {
	cmd := fmt.Sprintf("%s | gh release %s %q -F -", notes.EchoPipe(body), verb, tag)
	if g.opts.Draft {
		cmd += " --draft"
	}
	if g.opts.Prerelease {
		cmd += " --prerelease"
	}
	return cmd
}

func (g *GHCLI) fail(op, tag string, err error) error {
	return &Error{Backend: BackendGHCLI, Op: op, Tag: tag, Err: err}
}
