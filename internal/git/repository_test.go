package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/patrickmn/go-cache"
)

// testIdentity pins the author and committer for fixture commits made
// through the real git binary.
var testIdentity = []string{
	"GIT_AUTHOR_NAME=Test Author",
	"GIT_AUTHOR_EMAIL=author@test.invalid",
	"GIT_COMMITTER_NAME=Test Committer",
	"GIT_COMMITTER_EMAIL=committer@test.invalid",
}

// commitEnv extends the identity with a fixed date for both commit sides.
func commitEnv(when string) []string {
	return append([]string{
		"GIT_AUTHOR_DATE=" + when,
		"GIT_COMMITTER_DATE=" + when,
	}, testIdentity...)
}

func gitRun(t *testing.T, dir string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v: %s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func writeTestFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// initGoGitRepo builds a fixture repository without the git binary and
// leaves one commit on the default branch.
func initGoGitRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	repoDir := t.TempDir()

	repo, err := gogit.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	writeTestFile(t, repoDir, "file.txt", "initial\n")
	if _, err := wt.Add("file.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()}
	if _, err := wt.Commit("initial", &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return repoDir, repo
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected error for a directory without a repository")
	}
	if !strings.Contains(err.Error(), "open repository") {
		t.Errorf("err = %v, expected open repository context", err)
	}
}

func TestOpen_ReturnsHandle(t *testing.T) {
	repoDir, _ := initGoGitRepo(t)

	r, err := Open(repoDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Path() != repoDir {
		t.Errorf("Path() = %q, expected %q", r.Path(), repoDir)
	}
}

func TestBranches_DedupesAndSorts(t *testing.T) {
	repoDir, repo := initGoGitRepo(t)

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	refs := []*plumbing.Reference{
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("feature"), head.Hash()),
		plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", "feature"), head.Hash()),
		plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", "HEAD"), head.Hash()),
		plumbing.NewHashReference(plumbing.NewTagReferenceName("v1.0.0"), head.Hash()),
	}
	for _, ref := range refs {
		if err := repo.Storer.SetReference(ref); err != nil {
			t.Fatalf("SetReference(%s): %v", ref.Name(), err)
		}
	}

	r, err := Open(repoDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	branches, err := r.Branches()
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}

	expected := []string{"feature", head.Name().Short()}
	if len(branches) != len(expected) {
		t.Fatalf("Branches() = %q, expected %q", branches, expected)
	}
	for i := range expected {
		if branches[i] != expected[i] {
			t.Errorf("branches[%d] = %q, expected %q", i, branches[i], expected[i])
		}
	}
}

func TestCurrentBranch(t *testing.T) {
	repoDir, repo := initGoGitRepo(t)

	r, err := Open(repoDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	name, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if name != head.Name().Short() {
		t.Errorf("CurrentBranch() = %q, expected %q", name, head.Name().Short())
	}

	// Detached HEAD has no branch name.
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: head.Hash()}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	name, err = r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch after detach: %v", err)
	}
	if name != "" {
		t.Errorf("CurrentBranch() = %q, expected empty for detached HEAD", name)
	}
}

func TestCheckout_UnknownBranch(t *testing.T) {
	repoDir, _ := initGoGitRepo(t)

	r, err := Open(repoDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// Validation must reject the name before any subprocess runs.
	r.gitBin = filepath.Join(t.TempDir(), "missing-git")

	err = r.Checkout(context.Background(), "nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown branch")
	}
	if !strings.Contains(err.Error(), `unknown branch "nonexistent"`) {
		t.Errorf("err = %v", err)
	}
}

func TestStartCommand_MissingBinary(t *testing.T) {
	r := &Repository{
		path:   t.TempDir(),
		gitBin: filepath.Join(t.TempDir(), "missing-git"),
		hashes: cache.New(cache.NoExpiration, 0),
	}

	_, err := r.startCommand(context.Background(), "log")

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("err = %v, expected *CommandError", err)
	}
	if cmdErr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, expected -1 for a command that never ran", cmdErr.ExitCode)
	}
	if cmdErr.Command != "git log" {
		t.Errorf("Command = %q, expected %q", cmdErr.Command, "git log")
	}
}

func TestParseTreeEntry(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected *TreeEntry
		skipped  bool
		wantErr  bool
	}{
		{
			name:     "Blob",
			line:     "100644 blob 47c6340d6459e05787f644c078c7fab5b4e43d6b\tdir/file.go",
			expected: &TreeEntry{Mode: FileModeRegular, Hash: "47c6340d6459e05787f644c078c7fab5b4e43d6b", Path: "dir/file.go"},
		},
		{
			name:     "Executable blob",
			line:     "100755 blob 47c6340d6459e05787f644c078c7fab5b4e43d6b\tbin/run.sh",
			expected: &TreeEntry{Mode: FileModeExec, Hash: "47c6340d6459e05787f644c078c7fab5b4e43d6b", Path: "bin/run.sh"},
		},
		{
			name:     "Path with spaces",
			line:     "100644 blob 47c6340d6459e05787f644c078c7fab5b4e43d6b\tdocs/read me.md",
			expected: &TreeEntry{Mode: FileModeRegular, Hash: "47c6340d6459e05787f644c078c7fab5b4e43d6b", Path: "docs/read me.md"},
		},
		{name: "Non-blob skipped", line: "040000 tree 47c6340d6459e05787f644c078c7fab5b4e43d6b\tdir", skipped: true},
		{name: "No tab", line: "100644 blob 47c6340d", wantErr: true},
		{name: "Meta field count", line: "100644 blob\tfile.go", wantErr: true},
		{name: "Bad mode", line: "10z644 blob 47c6340d\tfile.go", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := parseTreeEntry(tt.line)
			if tt.wantErr {
				var recErr *MalformedRecordError
				if !errors.As(err, &recErr) {
					t.Fatalf("err = %v, expected *MalformedRecordError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.skipped {
				if entry != nil {
					t.Fatalf("entry = %+v, expected nil for non-blob", entry)
				}
				return
			}
			if entry == nil {
				t.Fatal("entry = nil, expected a tree entry")
			}
			if *entry != *tt.expected {
				t.Errorf("entry = %+v, expected %+v", *entry, *tt.expected)
			}
		})
	}
}

func TestHistoryOptions_RevisionArgs(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		opts     HistoryOptions
		expected []string
	}{
		{name: "Defaults", opts: HistoryOptions{}, expected: nil},
		{name: "Branch", opts: HistoryOptions{Branch: "main"}, expected: []string{"main"}},
		{name: "HEAD skipped", opts: HistoryOptions{Branch: "HEAD"}, expected: nil},
		{name: "Lowercase head skipped", opts: HistoryOptions{Branch: "head"}, expected: nil},
		{name: "Branch trimmed", opts: HistoryOptions{Branch: " main "}, expected: []string{"main"}},
		{
			name:     "Since only",
			opts:     HistoryOptions{Since: &since},
			expected: []string{fmt.Sprintf("--since=@%d", since.Unix())},
		},
		{
			name: "Full range with branch",
			opts: HistoryOptions{Branch: "develop", Since: &since, Until: &until},
			expected: []string{
				fmt.Sprintf("--since=@%d", since.Unix()),
				fmt.Sprintf("--until=@%d", until.Unix()),
				"develop",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.opts.revisionArgs()
			if len(args) != len(tt.expected) {
				t.Fatalf("revisionArgs() = %q, expected %q", args, tt.expected)
			}
			for i := range tt.expected {
				if args[i] != tt.expected[i] {
					t.Errorf("args[%d] = %q, expected %q", i, args[i], tt.expected[i])
				}
			}
		})
	}
}

func TestRepositoryHistory_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	gitRun(t, dir, testIdentity, "init", "-b", "main")

	writeTestFile(t, dir, "dir/keep.txt", "one\ntwo\nthree\nfour\nfive\n")
	writeTestFile(t, dir, "dir/old.txt", "alpha\nbeta\ngamma\n")
	gitRun(t, dir, testIdentity, "add", ".")
	gitRun(t, dir, commitEnv("2024-03-01T10:00:00+00:00"), "commit", "-m", "add files")

	writeTestFile(t, dir, "dir/keep.txt", "one\ntwo\nthree\nfour\nfive\nsix\n")
	gitRun(t, dir, testIdentity, "mv", "dir/old.txt", "dir/new.txt")
	gitRun(t, dir, testIdentity, "add", ".")
	gitRun(t, dir, commitEnv("2024-03-02T11:30:00+00:00"), "commit", "-m", "rename and touch")

	headHash := gitRun(t, dir, nil, "rev-parse", "HEAD")
	rootHash := gitRun(t, dir, nil, "rev-parse", "HEAD~1")

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	t.Run("Commits", func(t *testing.T) {
		iter, err := r.Commits(ctx, HistoryOptions{})
		if err != nil {
			t.Fatalf("Commits: %v", err)
		}
		defer iter.Close()

		var commits []*Commit
		if err := iter.ForEach(func(c *Commit) error {
			commits = append(commits, c)
			return nil
		}); err != nil {
			t.Fatalf("ForEach: %v", err)
		}
		if len(commits) != 2 {
			t.Fatalf("got %d commits, expected 2", len(commits))
		}

		newest, root := commits[0], commits[1]
		if newest.Hash != headHash || root.Hash != rootHash {
			t.Errorf("hashes = %q/%q, expected %q/%q", newest.Hash, root.Hash, headHash, rootHash)
		}
		if newest.Subject != "rename and touch" || root.Subject != "add files" {
			t.Errorf("subjects = %q/%q", newest.Subject, root.Subject)
		}
		if newest.Author.Email != "author@test.invalid" || newest.Committer.Email != "committer@test.invalid" {
			t.Errorf("signatures = %+v/%+v", newest.Author, newest.Committer)
		}
		if got := newest.Committer.When.Format(gitTimeLayout); got != "2024-03-02 11:30:00 +0000" {
			t.Errorf("committer date = %q", got)
		}
		if len(newest.Parents) != 1 || newest.Parents[0] != rootHash {
			t.Errorf("newest.Parents = %q, expected [%s]", newest.Parents, rootHash)
		}
		if len(root.Parents) != 0 {
			t.Errorf("root.Parents = %q, expected none", root.Parents)
		}
		if len(newest.Tree) != 40 {
			t.Errorf("Tree = %q, expected a canonical hash", newest.Tree)
		}
	})

	t.Run("Changes", func(t *testing.T) {
		iter, err := r.Changes(ctx, HistoryOptions{})
		if err != nil {
			t.Fatalf("Changes: %v", err)
		}
		defer iter.Close()

		byCommit := make(map[string][]*Change)
		if err := iter.ForEach(func(c *Change) error {
			byCommit[c.Commit] = append(byCommit[c.Commit], c)
			return nil
		}); err != nil {
			t.Fatalf("ForEach: %v", err)
		}

		rootChanges := byCommit[rootHash]
		if len(rootChanges) != 2 {
			t.Fatalf("root changes = %+v, expected 2 additions", rootChanges)
		}
		for _, c := range rootChanges {
			if c.Status != StatusAdded {
				t.Errorf("root change %q status = %v, expected added", c.DstPath, c.Status)
			}
			if c.SrcHash != NullHash {
				t.Errorf("root change %q SrcHash = %q, expected the null sentinel", c.DstPath, c.SrcHash)
			}
			if len(c.DstHash) != 40 || c.DstHash == NullHash {
				t.Errorf("root change %q DstHash = %q, expected a canonical hash", c.DstPath, c.DstHash)
			}
		}

		headChanges := byCommit[headHash]
		if len(headChanges) != 2 {
			t.Fatalf("head changes = %+v, expected modify plus rename", headChanges)
		}
		byStatus := make(map[ChangeStatus]*Change)
		for _, c := range headChanges {
			byStatus[c.Status] = c
		}
		mod := byStatus[StatusModified]
		if mod == nil || mod.SrcPath != "dir/keep.txt" || mod.DstPath != "dir/keep.txt" {
			t.Errorf("modified change = %+v", mod)
		}
		ren := byStatus[StatusRenamed]
		if ren == nil {
			t.Fatalf("no rename detected: %+v", headChanges)
		}
		if ren.SrcPath != "dir/old.txt" || ren.DstPath != "dir/new.txt" {
			t.Errorf("rename paths = %q -> %q", ren.SrcPath, ren.DstPath)
		}
		if ren.Score != 100 {
			t.Errorf("rename score = %d, expected 100", ren.Score)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		iter, err := r.Stats(ctx, HistoryOptions{})
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		defer iter.Close()

		byCommit := make(map[string][]*Stat)
		if err := iter.ForEach(func(s *Stat) error {
			byCommit[s.Commit] = append(byCommit[s.Commit], s)
			return nil
		}); err != nil {
			t.Fatalf("ForEach: %v", err)
		}

		rootStats := byCommit[rootHash]
		if len(rootStats) != 2 {
			t.Fatalf("root stats = %+v, expected 2 entries", rootStats)
		}
		added := make(map[string]int)
		for _, s := range rootStats {
			added[s.DstPath] = s.Added
		}
		if added["dir/keep.txt"] != 5 || added["dir/old.txt"] != 3 {
			t.Errorf("root added counts = %v", added)
		}

		headStats := byCommit[headHash]
		if len(headStats) != 2 {
			t.Fatalf("head stats = %+v, expected 2 entries", headStats)
		}
		var renameStat *Stat
		for _, s := range headStats {
			if s.SrcPath != s.DstPath {
				renameStat = s
			}
		}
		if renameStat == nil {
			t.Fatalf("no rename notation in %+v", headStats)
		}
		if renameStat.SrcPath != "dir/old.txt" || renameStat.DstPath != "dir/new.txt" {
			t.Errorf("rename stat paths = %q -> %q", renameStat.SrcPath, renameStat.DstPath)
		}
	})

	t.Run("SinceFilter", func(t *testing.T) {
		since := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
		iter, err := r.Commits(ctx, HistoryOptions{Since: &since})
		if err != nil {
			t.Fatalf("Commits: %v", err)
		}
		defer iter.Close()

		var commits []*Commit
		if err := iter.ForEach(func(c *Commit) error {
			commits = append(commits, c)
			return nil
		}); err != nil {
			t.Fatalf("ForEach: %v", err)
		}
		if len(commits) != 1 || commits[0].Hash != headHash {
			t.Errorf("filtered commits = %+v, expected only the newest", commits)
		}
	})

	t.Run("Files", func(t *testing.T) {
		entries, err := r.Files(ctx)
		if err != nil {
			t.Fatalf("Files: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("Files() = %+v, expected 2 blobs", entries)
		}
		paths := make(map[string]TreeEntry)
		for _, e := range entries {
			paths[e.Path] = e
		}
		for _, want := range []string{"dir/keep.txt", "dir/new.txt"} {
			e, ok := paths[want]
			if !ok {
				t.Errorf("missing %q in %v", want, paths)
				continue
			}
			if !e.Mode.IsFile() || len(e.Hash) != 40 {
				t.Errorf("entry %q = %+v", want, e)
			}
		}
	})

	t.Run("CommandFailure", func(t *testing.T) {
		_, err := r.runOutput(ctx, "rev-parse", "--verify", "refs/does/not/exist")

		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			t.Fatalf("err = %v, expected *CommandError", err)
		}
		if cmdErr.ExitCode <= 0 {
			t.Errorf("ExitCode = %d, expected > 0", cmdErr.ExitCode)
		}
		if cmdErr.Stderr == "" {
			t.Error("Stderr empty, expected the captured diagnostic")
		}
	})
}
