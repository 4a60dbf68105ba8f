package git

import (
	"context"
	"regexp"
	"strings"
)

const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"

	// logFormat emits sha, subject and ref decorations per commit. Control
	// characters are used as delimiters because they never occur in subjects.
	logFormat = "%x1e%H%x1f%s%x1f%D%x1f"
)

var (
	tagDecoration = regexp.MustCompile(`tag: ([^,\s]+)`)
	releaseTag    = regexp.MustCompile(`^v(\d+\.\d+\.\d+)$`)
)

// Commit is one entry of the git log.
type Commit struct {
	SHA     string
	Message string
	Tag     string // empty when the commit carries no tag
}

// ReleaseTag is a commit tagged vMAJOR.MINOR.PATCH.
type ReleaseTag struct {
	SHA     string
	Version string // without the leading "v"
}

// ReleaseVersion returns the version encoded in the commit's tag, if the tag
// is a release tag.
func (c Commit) ReleaseVersion() (string, bool) {
	m := releaseTag.FindStringSubmatch(c.Tag)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ListAllCommits returns the full history reachable from HEAD, newest first.
func (r *Repo) ListAllCommits(ctx context.Context) ([]Commit, error) {
	out, err := r.sh.Stdout(ctx, "git log --pretty=format:'"+logFormat+"'")
	if err != nil {
		return nil, &Error{Op: "list commits", Err: err}
	}
	return ParseLog(out)
}

// ParseLog parses output produced with logFormat.
func ParseLog(out string) ([]Commit, error) {
	var commits []Commit
	for _, record := range strings.Split(out, recordSep) {
		if len(strings.TrimSpace(record)) <= 2 {
			continue
		}
		fields := strings.Split(record, fieldSep)
		if len(fields) < 3 {
			return nil, &Error{Op: "parse log", Err: ErrMalformedLog}
		}
		commits = append(commits, Commit{
			SHA:     strings.TrimSpace(fields[0]),
			Message: fields[1],
			Tag:     pickTag(fields[2]),
		})
	}
	return commits, nil
}

// pickTag prefers a release tag when a commit carries several tags.
func pickTag(decoration string) string {
	matches := tagDecoration.FindAllStringSubmatch(decoration, -1)
	if len(matches) == 0 {
		return ""
	}
	for _, m := range matches {
		if releaseTag.MatchString(m[1]) {
			return m[1]
		}
	}
	return matches[0][1]
}

// LastReleaseTag returns the newest commit tagged vMAJOR.MINOR.PATCH,
// or nil when no commit in history carries a release tag.
func (r *Repo) LastReleaseTag(ctx context.Context) (*ReleaseTag, error) {
	commits, err := r.ListAllCommits(ctx)
	if err != nil {
		return nil, err
	}
	return FindLastReleaseTag(commits), nil
}

// FindLastReleaseTag scans newest-first commits for the first release tag.
func FindLastReleaseTag(commits []Commit) *ReleaseTag {
	for _, c := range commits {
		if v, ok := c.ReleaseVersion(); ok {
			return &ReleaseTag{SHA: c.SHA, Version: v}
		}
	}
	return nil
}

// CurrentRemoteCommit returns the newest commit, the tip a release is cut from.
func (r *Repo) CurrentRemoteCommit(ctx context.Context) (Commit, error) {
	commits, err := r.ListAllCommits(ctx)
	if err != nil {
		return Commit{}, err
	}
	if len(commits) == 0 {
		return Commit{}, ErrEmptyHistory
	}
	return commits[0], nil
}

// CommitsBetween returns the commits after shaOlder up to and including
// shaNewer, newest first. See SliceBetween for the handling of unknown shas.
func (r *Repo) CommitsBetween(ctx context.Context, shaOlder, shaNewer string) ([]Commit, error) {
	commits, err := r.ListAllCommits(ctx)
	if err != nil {
		return nil, err
	}
	return SliceBetween(commits, shaOlder, shaNewer), nil
}

// SliceBetween cuts a newest-first history down to the commits strictly
// after shaOlder, keeping shaNewer and everything older than it.
//
// A sha that does not occur in commits leaves that bound open: an unknown
// shaNewer keeps the list from its start, an unknown shaOlder keeps it to its
// end. A stale or rewritten tag therefore produces a longer changelog rather
// than an empty one.
func SliceBetween(commits []Commit, shaOlder, shaNewer string) []Commit {
	if i := indexOf(commits, shaNewer); i >= 0 {
		commits = commits[i:]
	}
	if i := indexOf(commits, shaOlder); i >= 0 {
		commits = commits[:i]
	}
	out := make([]Commit, len(commits))
	copy(out, commits)
	return out
}

func indexOf(commits []Commit, sha string) int {
	if sha == "" {
		return -1
	}
	for i, c := range commits {
		if c.SHA == sha {
			return i
		}
	}
	return -1
}
