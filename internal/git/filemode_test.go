package git

import "testing"

func TestParseFileMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FileMode
		wantErr  bool
	}{
		{name: "Regular file", input: "100644", expected: FileModeRegular},
		{name: "Executable", input: "100755", expected: FileModeExec},
		{name: "Symlink", input: "120000", expected: FileModeSymlink},
		{name: "Submodule", input: "160000", expected: FileModeSubmodule},
		{name: "Directory", input: "040000", expected: FileModeDir},
		{name: "All zeros", input: "000000", expected: FileModeEmpty},
		{name: "Empty string", input: "", expected: FileModeEmpty},
		{name: "Not octal", input: "100648", wantErr: true},
		{name: "Garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseFileMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFileMode(%q) = %v, expected error", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFileMode(%q) failed: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ParseFileMode(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFileMode_String(t *testing.T) {
	tests := []struct {
		name     string
		mode     FileMode
		expected string
	}{
		{name: "Regular file", mode: FileModeRegular, expected: "100644"},
		{name: "Executable", mode: FileModeExec, expected: "100755"},
		{name: "Empty", mode: FileModeEmpty, expected: "000000"},
		{name: "Directory", mode: FileModeDir, expected: "040000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.mode.String()
			if result != tt.expected {
				t.Errorf("String() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestFileMode_IsFile(t *testing.T) {
	tests := []struct {
		name     string
		mode     FileMode
		expected bool
	}{
		{name: "Regular file", mode: FileModeRegular, expected: true},
		{name: "Executable", mode: FileModeExec, expected: true},
		{name: "Symlink", mode: FileModeSymlink, expected: true},
		{name: "Directory", mode: FileModeDir, expected: false},
		{name: "Submodule", mode: FileModeSubmodule, expected: false},
		{name: "Empty", mode: FileModeEmpty, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.mode.IsFile(); result != tt.expected {
				t.Errorf("IsFile() = %v, expected %v", result, tt.expected)
			}
		})
	}
}
