package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/patrickmn/go-cache"
)

// commitFormat frames each commit as a NUL-separated header line followed by
// the raw message body. The leading NUL marks header lines for the parser.
const commitFormat = "--pretty=format:%x00%H%x00%T%x00%P%x00%an%x00%ae%x00%ai%x00%cn%x00%ce%x00%ci%x00%s%x00%n%b"

// markerFormat frames each commit of the diff-carrying queries as a bare
// `\x00<hash>\x00` marker line.
const markerFormat = "--pretty=format:%x00%H%x00"

// historyDiffArgs is the diff tuning shared by every history query. The
// change and stat queries run as separate processes; they must use the
// identical set or their streams describe different rename decisions and
// the per-commit join breaks.
var historyDiffArgs = []string{"-B", "-M20", "-C", "-l9999", "--find-copies-harder", "--pickaxe-all", "-r"}

// Repository is a handle on one local git repository. It owns the resolver
// cache, so abbreviated hashes resolved during one extraction run are never
// queried twice.
type Repository struct {
	path   string
	gitBin string
	repo   *git.Repository
	hashes *cache.Cache
}

// Open validates that path holds a git repository and returns a handle on it.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return &Repository{
		path:   path,
		gitBin: "git",
		repo:   repo,
		hashes: cache.New(cache.NoExpiration, 0),
	}, nil
}

// Clone clones url into dir and returns a handle on the result.
func Clone(ctx context.Context, url, dir string) (*Repository, error) {
	cmd := exec.CommandContext(ctx, "git", "clone", url, dir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Command:  "git clone",
			ExitCode: exitCodeOf(err),
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return Open(dir)
}

// Path returns the repository's filesystem path.
func (r *Repository) Path() string { return r.path }

// startCommand launches a git subprocess rooted at the repository and
// returns a scanner over its stdout. args[0] must be the git subcommand.
func (r *Repository) startCommand(ctx context.Context, args ...string) (*LineScanner, error) {
	argv := append([]string{"-C", r.path}, args...)
	cmd := exec.CommandContext(ctx, r.gitBin, argv...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &CommandError{Command: "git " + args[0], ExitCode: -1, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Command: "git " + args[0], ExitCode: -1, Err: err}
	}
	ls := newLineScanner(stdout)
	ls.cmd = cmd
	ls.command = "git " + args[0]
	ls.stderr = &stderr
	return ls, nil
}

// runOutput runs a git subprocess to completion and returns its stdout with
// trailing newlines trimmed.
func (r *Repository) runOutput(ctx context.Context, args ...string) (string, error) {
	argv := append([]string{"-C", r.path}, args...)
	cmd := exec.CommandContext(ctx, r.gitBin, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &CommandError{
			Command:  "git " + args[0],
			ExitCode: exitCodeOf(err),
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// Branches lists local and remote branch names, deduplicated by the name
// after the last slash and sorted.
func (r *Repository) Branches() ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	seen := make(map[string]struct{})
	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		if !name.IsBranch() && !name.IsRemote() {
			return nil
		}
		short := name.Short()
		if i := strings.LastIndexByte(short, '/'); i != -1 {
			short = short[i+1:]
		}
		if short == "" || short == "HEAD" {
			return nil
		}
		if _, ok := seen[short]; ok {
			return nil
		}
		seen[short] = struct{}{}
		names = append(names, short)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch returns the short name of the branch HEAD points at, or ""
// when HEAD is detached.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// Checkout switches the working tree to the named branch. The name must be
// one of Branches().
func (r *Repository) Checkout(ctx context.Context, name string) error {
	branches, err := r.Branches()
	if err != nil {
		return err
	}
	known := false
	for _, b := range branches {
		if b == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown branch %q", name)
	}
	_, err = r.runOutput(ctx, "checkout", name)
	return err
}

// Files lists the blobs of the current HEAD tree.
func (r *Repository) Files(ctx context.Context) ([]TreeEntry, error) {
	ls, err := r.startCommand(ctx, "ls-tree", "-r", "HEAD")
	if err != nil {
		return nil, err
	}
	defer ls.Close()

	var entries []TreeEntry
	for ls.Scan() {
		line := ls.Text()
		if line == "" {
			continue
		}
		entry, err := parseTreeEntry(line)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		entries = append(entries, *entry)
	}
	if err := ls.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// parseTreeEntry parses one `git ls-tree -r` line:
// "<mode> <type> <hash>\t<path>". Non-blob entries return nil.
func parseTreeEntry(line string) (*TreeEntry, error) {
	meta, path, ok := strings.Cut(line, "\t")
	if !ok {
		return nil, &MalformedRecordError{Reason: "tree entry", Line: line}
	}
	fields := strings.Fields(meta)
	if len(fields) != 3 {
		return nil, &MalformedRecordError{Reason: "tree entry meta", Line: line}
	}
	if fields[1] != "blob" {
		return nil, nil
	}
	mode, err := ParseFileMode(fields[0])
	if err != nil {
		return nil, &MalformedRecordError{Reason: "tree entry mode", Line: line}
	}
	return &TreeEntry{Mode: mode, Hash: fields[2], Path: path}, nil
}

// revisionArgs translates the options into git revision selection arguments.
func (opts HistoryOptions) revisionArgs() []string {
	var args []string
	if opts.Since != nil {
		args = append(args, fmt.Sprintf("--since=@%d", opts.Since.Unix()))
	}
	if opts.Until != nil {
		args = append(args, fmt.Sprintf("--until=@%d", opts.Until.Unix()))
	}
	rev := strings.TrimSpace(opts.Branch)
	if rev != "" && !strings.EqualFold(rev, "HEAD") {
		args = append(args, rev)
	}
	return args
}

// Commits starts the commit history query and returns an iterator over its
// records.
func (r *Repository) Commits(ctx context.Context, opts HistoryOptions) (CommitIter, error) {
	args := []string{"log", commitFormat}
	args = append(args, historyDiffArgs...)
	args = append(args, opts.revisionArgs()...)
	ls, err := r.startCommand(ctx, args...)
	if err != nil {
		return nil, err
	}
	return newCommitParser(ls), nil
}

// Changes starts the file change query and returns an iterator over its
// records. Abbreviated hashes are expanded through the repository's resolver.
func (r *Repository) Changes(ctx context.Context, opts HistoryOptions) (ChangeIter, error) {
	args := []string{"log", markerFormat, "--raw"}
	args = append(args, historyDiffArgs...)
	args = append(args, opts.revisionArgs()...)
	ls, err := r.startCommand(ctx, args...)
	if err != nil {
		return nil, err
	}
	return newChangeParser(ctx, ls, r), nil
}

// Stats starts the line delta query and returns an iterator over its records.
func (r *Repository) Stats(ctx context.Context, opts HistoryOptions) (StatIter, error) {
	args := []string{"log", markerFormat, "--numstat"}
	args = append(args, historyDiffArgs...)
	args = append(args, opts.revisionArgs()...)
	ls, err := r.startCommand(ctx, args...)
	if err != nil {
		return nil, err
	}
	return newStatParser(ls), nil
}
