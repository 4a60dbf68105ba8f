package hosting

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/xanzy/go-gitlab"
)

// GitLabAPI publishes releases through the GitLab REST API.
type GitLabAPI struct {
	client    *gitlab.Client
	projectID string // numeric ID or "namespace/project"
}

// NewGitLabAPI creates a GitLab publisher.
// baseURL is the GitLab instance URL (empty for gitlab.com).
func NewGitLabAPI(token, baseURL, projectID string) (*GitLabAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("GitLab token is required")
	}
	if projectID == "" {
		return nil, fmt.Errorf("project ID is required")
	}

	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}
	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GitLab client: %w", err)
	}

	return &GitLabAPI{client: client, projectID: projectID}, nil
}

// NewGitLabAPIFromURL creates a GitLab publisher from a remote URL.
// Self-hosted instances are addressed over https on the remote's host.
func NewGitLabAPIFromURL(token, remoteURL string) (*GitLabAPI, error) {
	owner, repo, err := ParseRepoFromURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}

	var baseURL string
	if host := remoteHost(remoteURL); host != "" && host != "gitlab.com" {
		baseURL = "https://" + host
	}
	return NewGitLabAPI(token, baseURL, owner+"/"+repo)
}

// Exists implements Publisher.
func (p *GitLabAPI) Exists(ctx context.Context, tag string) (bool, error) {
	_, resp, err := p.client.Releases.GetRelease(p.projectID, tag, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, &Error{Backend: BackendGitLab, Op: "get release", Tag: tag, Err: err}
	}
	return true, nil
}

// Create implements Publisher. GitLab has no draft releases; the
// prerelease flag is not exposed by its API either.
func (p *GitLabAPI) Create(ctx context.Context, tag, notes string) error {
	_, _, err := p.client.Releases.CreateRelease(p.projectID, &gitlab.CreateReleaseOptions{
		Name:        gitlab.Ptr(tag),
		TagName:     gitlab.Ptr(tag),
		Description: gitlab.Ptr(notes),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return &Error{Backend: BackendGitLab, Op: "create release", Tag: tag, Err: err}
	}
	return nil
}

// Edit implements Publisher.
func (p *GitLabAPI) Edit(ctx context.Context, tag, notes string) error {
	_, resp, err := p.client.Releases.UpdateRelease(p.projectID, tag, &gitlab.UpdateReleaseOptions{
		Description: gitlab.Ptr(notes),
	}, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, tag)
		}
		return &Error{Backend: BackendGitLab, Op: "edit release", Tag: tag, Err: err}
	}
	return nil
}

// remoteHost returns the host of an https or scp-style remote URL.
func remoteHost(remoteURL string) string {
	if rest, ok := strings.CutPrefix(remoteURL, "git@"); ok {
		host, _, _ := strings.Cut(rest, ":")
		return host
	}
	rest := remoteURL
	for _, prefix := range []string{"https://", "http://", "ssh://"} {
		rest = strings.TrimPrefix(rest, prefix)
	}
	if i := strings.LastIndex(strings.SplitN(rest, "/", 2)[0], "@"); i >= 0 {
		rest = rest[i+1:]
	}
	host, _, _ := strings.Cut(rest, "/")
	host, _, _ = strings.Cut(host, ":")
	return host
}
