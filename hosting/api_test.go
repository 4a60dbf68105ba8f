package hosting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestGitHubAPI creates a GitHubAPI pointing to a test server.
func newTestGitHubAPI(t *testing.T, handler http.Handler, opts Options) *GitHubAPI {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	client.BaseURL, _ = client.BaseURL.Parse(server.URL + "/")

	return &GitHubAPI{client: client, owner: "acme", repo: "widget", opts: opts}
}

func TestGitHubAPI(t *testing.T) {
	var created, edited map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget/releases/tags/v1.0.0", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": 42, "tag_name": "v1.0.0"}`)
	})
	mux.HandleFunc("/repos/acme/widget/releases/tags/v2.0.0", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/repos/acme/widget/releases", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 43}`)
	})
	mux.HandleFunc("/repos/acme/widget/releases/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&edited))
		_, _ = io.WriteString(w, `{"id": 42}`)
	})

	p := newTestGitHubAPI(t, mux, Options{Prerelease: true})
	ctx := context.Background()

	exists, err := p.Exists(ctx, "v1.0.0")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = p.Exists(ctx, "v2.0.0")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, p.Create(ctx, "v2.0.0", "# notes"))
	assert.Equal(t, "v2.0.0", created["tag_name"])
	assert.Equal(t, "# notes", created["body"])
	assert.Equal(t, true, created["prerelease"])
	assert.Equal(t, false, created["draft"])

	require.NoError(t, p.Edit(ctx, "v1.0.0", "new body"))
	assert.Equal(t, "new body", edited["body"])

	err = p.Edit(ctx, "v2.0.0", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitHubAPIRejectionIsHostingError(t *testing.T) {
	p := newTestGitHubAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message": "Bad credentials"}`)
	}), Options{})

	err := p.Create(context.Background(), "v1.0.0", "x")
	var hostErr *Error
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, BackendGitHub, hostErr.Backend)
	assert.Equal(t, "create release", hostErr.Op)
	assert.Equal(t, "v1.0.0", hostErr.Tag)
	assert.Contains(t, err.Error(), "Bad credentials")
}

func TestNewGitHubAPIValidation(t *testing.T) {
	_, err := NewGitHubAPI("", "acme", "widget", Options{})
	assert.Error(t, err)
	_, err = NewGitHubAPI("t", "", "widget", Options{})
	assert.Error(t, err)
}

func TestGitLabAPI(t *testing.T) {
	var created, updated map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := r.URL.Path
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(path, "/releases/v1.0.0"):
			_, _ = io.WriteString(w, `{"tag_name": "v1.0.0", "name": "v1.0.0"}`)
		case r.Method == http.MethodGet && strings.HasSuffix(path, "/releases/v2.0.0"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message": "404 Not Found"}`)
		case r.Method == http.MethodPost && strings.HasSuffix(path, "/releases"):
			_ = json.NewDecoder(r.Body).Decode(&created)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"tag_name": "v2.0.0"}`)
		case r.Method == http.MethodPut && strings.HasSuffix(path, "/releases/v1.0.0"):
			_ = json.NewDecoder(r.Body).Decode(&updated)
			_, _ = io.WriteString(w, `{"tag_name": "v1.0.0"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message": "404 Not Found"}`)
		}
	}))
	t.Cleanup(server.Close)

	p, err := NewGitLabAPI("token", server.URL, "group/widget")
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := p.Exists(ctx, "v1.0.0")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = p.Exists(ctx, "v2.0.0")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, p.Create(ctx, "v2.0.0", "# notes"))
	assert.Equal(t, "v2.0.0", created["tag_name"])
	assert.Equal(t, "# notes", created["description"])

	require.NoError(t, p.Edit(ctx, "v1.0.0", "updated"))
	assert.Equal(t, "updated", updated["description"])

	assert.ErrorIs(t, p.Edit(ctx, "v9.9.9", "x"), ErrNotFound)
}
