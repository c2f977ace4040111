package domain

// FileEntry describes one file or directory found in the knowledge base.
type FileEntry struct {
	Name  string
	Path  string
	Size  int64
	IsDir bool
}
