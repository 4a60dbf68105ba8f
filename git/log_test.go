package git

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/randalmurphal/vrt/shell"
	"github.com/randalmurphal/vrt/testutil"
)

const logCommand = "git log --pretty=format:'" + logFormat + "'"

func sha(c byte) string {
	return strings.Repeat(string(c), 40)
}

func logRecord(sha, subject, decoration string) string {
	return recordSep + sha + fieldSep + subject + fieldSep + decoration + fieldSep
}

func TestParseLog(t *testing.T) {
	out := logRecord(sha('c'), "fix: handle | and ' in subjects", "HEAD -> main, origin/main") + "\n" +
		logRecord(sha('b'), "release", "tag: v1.0.0-rc1, tag: v1.0.0") + "\n" +
		logRecord(sha('a'), "initial", "tag: nightly")

	commits, err := ParseLog(out)
	if err != nil {
		t.Fatalf("ParseLog() error = %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("ParseLog() returned %d commits, want 3", len(commits))
	}

	want := Commit{SHA: sha('c'), Message: "fix: handle | and ' in subjects"}
	if commits[0] != want {
		t.Errorf("commits[0] = %+v, want %+v", commits[0], want)
	}
	if commits[1].Tag != "v1.0.0" {
		t.Errorf("commits[1].Tag = %q, want release tag v1.0.0", commits[1].Tag)
	}
	if commits[2].Tag != "nightly" {
		t.Errorf("commits[2].Tag = %q, want nightly", commits[2].Tag)
	}
}

func TestParseLog_Empty(t *testing.T) {
	commits, err := ParseLog("")
	if err != nil {
		t.Fatalf("ParseLog() error = %v", err)
	}
	if len(commits) != 0 {
		t.Errorf("ParseLog(\"\") = %v, want empty", commits)
	}
}

func TestParseLog_Malformed(t *testing.T) {
	_, err := ParseLog(recordSep + sha('a') + fieldSep + "only two fields")
	if !errors.Is(err, ErrMalformedLog) {
		t.Errorf("ParseLog() error = %v, want ErrMalformedLog", err)
	}
}

func TestFindLastReleaseTag(t *testing.T) {
	commits := []Commit{
		{SHA: sha('d'), Message: "wip"},
		{SHA: sha('c'), Message: "beta", Tag: "v2.0.0-beta"},
		{SHA: sha('b'), Message: "second", Tag: "v1.2.3"},
		{SHA: sha('a'), Message: "first", Tag: "v1.0.0"},
	}

	tag := FindLastReleaseTag(commits)
	if tag == nil {
		t.Fatal("FindLastReleaseTag() = nil")
	}
	if want := (ReleaseTag{SHA: sha('b'), Version: "1.2.3"}); *tag != want {
		t.Errorf("FindLastReleaseTag() = %+v, want %+v", *tag, want)
	}

	if got := FindLastReleaseTag(commits[:2]); got != nil {
		t.Errorf("FindLastReleaseTag(no release tags) = %+v, want nil", got)
	}
	if got := FindLastReleaseTag(nil); got != nil {
		t.Errorf("FindLastReleaseTag(nil) = %+v, want nil", got)
	}
}

func TestSliceBetween(t *testing.T) {
	all := []Commit{
		{SHA: sha('e')}, {SHA: sha('d')}, {SHA: sha('c')}, {SHA: sha('b')}, {SHA: sha('a')},
	}
	shas := func(cs []Commit) string {
		var b strings.Builder
		for _, c := range cs {
			b.WriteByte(c.SHA[0])
		}
		return b.String()
	}

	tests := []struct {
		name   string
		older  string
		newer  string
		expect string
	}{
		{"both present", sha('b'), sha('d'), "dc"},
		{"newer is tip", sha('a'), sha('e'), "edcb"},
		{"adjacent", sha('c'), sha('d'), "d"},
		{"same sha", sha('c'), sha('c'), ""},
		{"unknown newer keeps start", sha('b'), sha('x'), "edc"},
		{"unknown older keeps end", sha('x'), sha('d'), "dcba"},
		{"both unknown", sha('x'), sha('y'), "edcba"},
		{"no previous release", "", sha('e'), "edcba"},
		{"older newer than newer", sha('d'), sha('b'), "ba"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shas(SliceBetween(all, tt.older, tt.newer)); got != tt.expect {
				t.Errorf("SliceBetween() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestSliceBetween_DoesNotAliasInput(t *testing.T) {
	all := []Commit{{SHA: sha('b')}, {SHA: sha('a')}}
	got := SliceBetween(all, "", sha('b'))
	got[0].Message = "changed"
	if all[0].Message != "" {
		t.Errorf("input modified: %q", all[0].Message)
	}
}

func TestRepo_QueriesWithMockRunner(t *testing.T) {
	out := logRecord(sha('c'), "third", "HEAD -> main") + "\n" +
		logRecord(sha('b'), "second", "tag: v1.0.1") + "\n" +
		logRecord(sha('a'), "first", "tag: v1.0.0")
	mock := shell.NewStrictMockRunner().OnCommand(logCommand, out, 0)
	repo := NewRepo(shell.New("/repo", shell.WithRunner(mock)))
	ctx := context.Background()

	tag, err := repo.LastReleaseTag(ctx)
	if err != nil {
		t.Fatalf("LastReleaseTag() error = %v", err)
	}
	if tag == nil || *tag != (ReleaseTag{SHA: sha('b'), Version: "1.0.1"}) {
		t.Errorf("LastReleaseTag() = %+v", tag)
	}

	tip, err := repo.CurrentRemoteCommit(ctx)
	if err != nil {
		t.Fatalf("CurrentRemoteCommit() error = %v", err)
	}
	if tip.SHA != sha('c') {
		t.Errorf("CurrentRemoteCommit().SHA = %q", tip.SHA)
	}

	between, err := repo.CommitsBetween(ctx, sha('a'), sha('c'))
	if err != nil {
		t.Fatalf("CommitsBetween() error = %v", err)
	}
	if len(between) != 2 || between[0].Message != "third" || between[1].Message != "second" {
		t.Errorf("CommitsBetween() = %+v, want third, second", between)
	}
}

func TestRepo_CurrentRemoteCommitEmptyHistory(t *testing.T) {
	mock := shell.NewStrictMockRunner().OnCommand(logCommand, "", 0)
	repo := NewRepo(shell.New("/repo", shell.WithRunner(mock)))

	_, err := repo.CurrentRemoteCommit(context.Background())
	if !errors.Is(err, ErrEmptyHistory) {
		t.Errorf("CurrentRemoteCommit() error = %v, want ErrEmptyHistory", err)
	}
}

func TestRepo_AgainstRealRepository(t *testing.T) {
	dir := testutil.SetupTestRepo(t)
	testutil.Tag(t, dir, "v0.1.0")
	first := testutil.GetHeadSHA(t, dir)
	testutil.CommitFile(t, dir, "a.txt", "a", "feat: add   a")
	testutil.CommitFile(t, dir, "b.txt", "b", "fix: quote \"b\" and `c`")
	tip := testutil.GetHeadSHA(t, dir)

	repo := NewRepo(shell.New(dir))
	ctx := context.Background()

	tag, err := repo.LastReleaseTag(ctx)
	if err != nil {
		t.Fatalf("LastReleaseTag() error = %v", err)
	}
	if tag == nil {
		t.Fatal("LastReleaseTag() = nil")
	}
	if tag.SHA != first || tag.Version != "0.1.0" {
		t.Errorf("LastReleaseTag() = %+v, want %s 0.1.0", *tag, first)
	}

	current, err := repo.CurrentRemoteCommit(ctx)
	if err != nil {
		t.Fatalf("CurrentRemoteCommit() error = %v", err)
	}
	if current.SHA != tip {
		t.Errorf("CurrentRemoteCommit().SHA = %q, want %q", current.SHA, tip)
	}
	if !regexp.MustCompile(`^[a-f0-9]{40}$`).MatchString(current.SHA) {
		t.Errorf("sha %q is not a full hex sha", current.SHA)
	}

	commits, err := repo.CommitsBetween(ctx, tag.SHA, current.SHA)
	if err != nil {
		t.Fatalf("CommitsBetween() error = %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("CommitsBetween() returned %d commits, want 2", len(commits))
	}
	if commits[0].Message != "fix: quote \"b\" and `c`" {
		t.Errorf("commits[0].Message = %q", commits[0].Message)
	}
	if commits[1].Message != "feat: add   a" {
		t.Errorf("commits[1].Message = %q", commits[1].Message)
	}

	if err := repo.RequireClean(ctx); err != nil {
		t.Errorf("RequireClean() on clean repo error = %v", err)
	}
	testutil.WriteFile(t, dir, "dirty.txt", "x")
	if err := repo.RequireClean(ctx); !errors.Is(err, ErrGitDirty) {
		t.Errorf("RequireClean() on dirty repo error = %v, want ErrGitDirty", err)
	}
}
