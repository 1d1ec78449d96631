package git

import (
	"strings"
	"time"
)

// NullHash is the all-zero object id git prints for an absent side of a
// change (the source of an addition, the destination of a deletion).
const NullHash = "0000000000000000000000000000000000000000"

// Signature identifies one side of a commit (author or committer) together
// with the recorded timestamp. When preserves the UTC offset git recorded.
// A zero When means the underlying field was empty.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit is one record of the commit history stream.
type Commit struct {
	Hash      string
	Tree      string
	Parents   []string
	Author    Signature
	Committer Signature
	Subject   string
	Body      string
}

// ContributorKey returns a normalized identifier for grouping authors.
func (c *Commit) ContributorKey() string {
	return strings.ToLower(c.Author.Email)
}

// ChangeStatus classifies one file change, mirroring git's status letters.
type ChangeStatus byte

const (
	StatusAdded      ChangeStatus = 'A'
	StatusCopied     ChangeStatus = 'C'
	StatusDeleted    ChangeStatus = 'D'
	StatusModified   ChangeStatus = 'M'
	StatusRenamed    ChangeStatus = 'R'
	StatusTypeChange ChangeStatus = 'T'
	StatusUnmerged   ChangeStatus = 'U'
	StatusUnknown    ChangeStatus = 'X'
)

// String returns a string representation of the change status.
func (s ChangeStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusCopied:
		return "copied"
	case StatusDeleted:
		return "deleted"
	case StatusModified:
		return "modified"
	case StatusRenamed:
		return "renamed"
	case StatusTypeChange:
		return "type-changed"
	case StatusUnmerged:
		return "unmerged"
	default:
		return "unknown"
	}
}

// changeStatusFromByte maps a git status letter to its ChangeStatus.
// Letters outside the known set map to StatusUnknown.
func changeStatusFromByte(b byte) ChangeStatus {
	switch ChangeStatus(b) {
	case StatusAdded, StatusCopied, StatusDeleted, StatusModified,
		StatusRenamed, StatusTypeChange, StatusUnmerged:
		return ChangeStatus(b)
	default:
		return StatusUnknown
	}
}

// Change is one file change within a commit, with hashes expanded to their
// canonical form. SrcPath is empty for additions, DstPath for deletions.
type Change struct {
	Commit  string
	SrcMode FileMode
	DstMode FileMode
	SrcHash string
	DstHash string
	Status  ChangeStatus
	Score   int // similarity percentage for renames and copies, 0 when absent
	SrcPath string
	DstPath string
}

// Stat is one file's line delta within a commit. For renames SrcPath and
// DstPath differ; otherwise both hold the same path.
type Stat struct {
	Commit  string
	SrcPath string
	DstPath string
	Added   int
	Removed int
}

// TreeEntry is one blob of a tree listing.
type TreeEntry struct {
	Mode FileMode
	Hash string
	Path string
}

// HistoryOptions selects the commit range for the history queries. The same
// options must be passed to all three queries of one extraction run so the
// streams describe an identical commit set.
type HistoryOptions struct {
	Branch string
	Since  *time.Time
	Until  *time.Time
}
