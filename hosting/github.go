package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubAPI publishes releases through the GitHub REST API.
type GitHubAPI struct {
	client *github.Client
	owner  string
	repo   string
	opts   Options
}

// NewGitHubAPI creates a GitHub publisher.
// token is a personal access token or GitHub App token.
func NewGitHubAPI(token, owner, repo string, opts Options) (*GitHubAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &GitHubAPI{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
		opts:   opts,
	}, nil
}

// NewGitHubAPIFromURL creates a GitHub publisher from a remote URL.
func NewGitHubAPIFromURL(token, remoteURL string, opts Options) (*GitHubAPI, error) {
	owner, repo, err := ParseRepoFromURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}
	return NewGitHubAPI(token, owner, repo, opts)
}

// Exists implements Publisher.
func (p *GitHubAPI) Exists(ctx context.Context, tag string) (bool, error) {
	_, err := p.get(ctx, tag)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Create implements Publisher.
func (p *GitHubAPI) Create(ctx context.Context, tag, notes string) error {
	_, _, err := p.client.Repositories.CreateRelease(ctx, p.owner, p.repo, &github.RepositoryRelease{
		TagName:    github.String(tag),
		Name:       github.String(tag),
		Body:       github.String(notes),
		Draft:      github.Bool(p.opts.Draft),
		Prerelease: github.Bool(p.opts.Prerelease),
	})
	if err != nil {
		return &Error{Backend: BackendGitHub, Op: "create release", Tag: tag, Err: err}
	}
	return nil
}

// Edit implements Publisher.
func (p *GitHubAPI) Edit(ctx context.Context, tag, notes string) error {
	rel, err := p.get(ctx, tag)
	if err != nil {
		return err
	}

	_, _, err = p.client.Repositories.EditRelease(ctx, p.owner, p.repo, rel.GetID(), &github.RepositoryRelease{
		Body: github.String(notes),
	})
	if err != nil {
		return &Error{Backend: BackendGitHub, Op: "edit release", Tag: tag, Err: err}
	}
	return nil
}

func (p *GitHubAPI) get(ctx context.Context, tag string) (*github.RepositoryRelease, error) {
	rel, resp, err := p.client.Repositories.GetReleaseByTag(ctx, p.owner, p.repo, tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, tag)
		}
		return nil, &Error{Backend: BackendGitHub, Op: "get release", Tag: tag, Err: err}
	}
	return rel, nil
}
