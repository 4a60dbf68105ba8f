package hosting

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by New.
const (
	BackendGHCLI  = "gh"
	BackendGitHub = "github"
	BackendGitLab = "gitlab"
)

// Backends lists the supported backend names.
var Backends = []string{BackendGHCLI, BackendGitHub, BackendGitLab}

// Publisher manages the release object named after a tag.
type Publisher interface {
	// Exists reports whether a release for tag exists.
	Exists(ctx context.Context, tag string) (bool, error)

	// Create creates a release for tag with notes as its body.
	Create(ctx context.Context, tag, notes string) error

	// Edit replaces the body of the existing release for tag.
	Edit(ctx context.Context, tag, notes string) error
}

// Options configures how releases are created.
type Options struct {
	Draft      bool
	Prerelease bool
}

// ParseBackend normalizes a backend name. Empty selects the gh CLI.
func ParseBackend(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", BackendGHCLI:
		return BackendGHCLI, nil
	case BackendGitHub, BackendGitLab:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownBackend, name, strings.Join(Backends, ", "))
	}
}
