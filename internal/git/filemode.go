package git

import (
	"fmt"
	"strconv"
)

// FileMode represents a git file mode as an octal value.
// Change records carry the mode of both sides of the change.
type FileMode uint32

const (
	FileModeEmpty     FileMode = 0
	FileModeDir       FileMode = 0040000
	FileModeRegular   FileMode = 0100644
	FileModeExec      FileMode = 0100755
	FileModeSymlink   FileMode = 0120000
	FileModeSubmodule FileMode = 0160000
)

// IsFile returns true if the mode represents a regular file or symlink.
func (m FileMode) IsFile() bool {
	return m == FileModeRegular || m == FileModeExec || m == FileModeSymlink
}

// String formats the mode the way git prints it (six octal digits).
func (m FileMode) String() string {
	return fmt.Sprintf("%06o", uint32(m))
}

// ParseFileMode parses an octal file mode string (e.g. "100644", "120000", "000000").
func ParseFileMode(s string) (FileMode, error) {
	if s == "" {
		return FileModeEmpty, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return FileModeEmpty, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	return FileMode(v), nil
}
