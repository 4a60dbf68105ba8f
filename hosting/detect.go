package hosting

import (
	"errors"
	"fmt"
	"os"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/randalmurphal/vrt/shell"
)

// DefaultRemote is the remote whose URL selects the API backend.
const DefaultRemote = "origin"

// New creates the publisher for backend. The gh backend runs in sh's
// directory; API backends read the origin remote of that directory and
// a token from the environment.
func New(backend string, sh *shell.Shell, opts Options) (Publisher, error) {
	backend, err := ParseBackend(backend)
	if err != nil {
		return nil, err
	}
	if backend == BackendGHCLI {
		return NewGHCLI(sh, opts), nil
	}

	remoteURL, err := RemoteURL(sh.Dir(), DefaultRemote)
	if err != nil {
		return nil, err
	}
	platform, err := DetectProvider(remoteURL)
	if err != nil {
		return nil, err
	}
	if platform != backend {
		return nil, fmt.Errorf("backend %s does not match remote %s (%s)", backend, remoteURL, platform)
	}
	return ProviderFromEnv(remoteURL, opts)
}

// RemoteURL reads the first URL of remote from the repository
// containing dir.
func RemoteURL(dir, remote string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	r, err := repo.Remote(remote)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return "", fmt.Errorf("%w: remote %q not configured", ErrNoRemote, remote)
		}
		return "", fmt.Errorf("read remote %s: %w", remote, err)
	}
	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: remote %q has no URL", ErrNoRemote, remote)
	}
	return urls[0], nil
}

// ProviderFromEnv creates an API publisher based on the remote URL.
//
// Environment variables checked:
//   - GITHUB_TOKEN for GitHub
//   - GITLAB_TOKEN for GitLab
//   - GIT_TOKEN as fallback for either
func ProviderFromEnv(remoteURL string, opts Options) (Publisher, error) {
	platform, err := DetectProvider(remoteURL)
	if err != nil {
		return nil, err
	}

	switch platform {
	case BackendGitHub:
		token := envToken("GITHUB_TOKEN")
		if token == "" {
			return nil, fmt.Errorf("%w: set GITHUB_TOKEN or GIT_TOKEN to a personal access token", ErrNoToken)
		}
		return NewGitHubAPIFromURL(token, remoteURL, opts)

	case BackendGitLab:
		token := envToken("GITLAB_TOKEN")
		if token == "" {
			return nil, fmt.Errorf("%w: set GITLAB_TOKEN or GIT_TOKEN to a personal access token", ErrNoToken)
		}
		return NewGitLabAPIFromURL(token, remoteURL)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, platform)
	}
}

func envToken(primary string) string {
	if token := os.Getenv(primary); token != "" {
		return token
	}
	return os.Getenv("GIT_TOKEN")
}

// DetectProvider returns "github" or "gitlab" for a remote URL.
func DetectProvider(remoteURL string) (string, error) {
	host := strings.ToLower(remoteHost(remoteURL))

	switch {
	case strings.Contains(host, "github"):
		return BackendGitHub, nil
	case strings.Contains(host, "gitlab"):
		return BackendGitLab, nil
	case strings.Contains(host, "bitbucket"):
		return "bitbucket", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownProvider, remoteURL)
}

// ParseRepoFromURL extracts owner and repo from a git remote URL.
// Nested GitLab groups are folded into owner.
func ParseRepoFromURL(remoteURL string) (owner, repo string, err error) {
	var path string
	if rest, ok := strings.CutPrefix(remoteURL, "git@"); ok {
		_, p, found := strings.Cut(rest, ":")
		if !found {
			return "", "", fmt.Errorf("invalid SSH URL format")
		}
		path = p
	} else {
		rest := remoteURL
		for _, prefix := range []string{"https://", "http://", "ssh://"} {
			rest = strings.TrimPrefix(rest, prefix)
		}
		_, p, found := strings.Cut(rest, "/")
		if !found {
			return "", "", fmt.Errorf("invalid URL format")
		}
		path = p
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", fmt.Errorf("invalid repository path %q", path)
	}
	return path[:i], path[i+1:], nil
}
