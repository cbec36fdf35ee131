package domain

// LocalContext holds working-directory details folded into prompts.
type LocalContext struct {
	WorkingDir string
	Entries    []FileInfo
	// Truncated counts entries left out of Entries.
	Truncated int
	Git       *GitStatus
}

// FileInfo is a minimal representation of discovered files.
type FileInfo struct {
	Path string
	Type FileType
}

// FileType describes the type of file entry.
type FileType string

const (
	FileTypeUnknown FileType = "unknown"
	FileTypeFile    FileType = "file"
	FileTypeDir     FileType = "dir"
	FileTypeSymlink FileType = "symlink"
)

// DisplayName renders the entry the way `ls -F` would.
func (f FileInfo) DisplayName() string {
	switch f.Type {
	case FileTypeDir:
		return f.Path + "/"
	case FileTypeSymlink:
		return f.Path + "@"
	default:
		return f.Path
	}
}

// GitStatus captures contextual Git data.
type GitStatus struct {
	Branch string
}
