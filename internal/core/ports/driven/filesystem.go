package driven

import "github.com/custodia-labs/kbrag/internal/core/domain"

// FileSystem is read-only access to knowledge-base files.
type FileSystem interface {
	// ReadText reads a file and decodes it as UTF-8, replacing invalid
	// sequences instead of failing.
	ReadText(path string) (string, error)

	// Stat describes a single path. A missing path returns domain.ErrNotFound.
	Stat(path string) (domain.FileEntry, error)

	// ListDir returns the direct children of dir sorted by name.
	ListDir(dir string) ([]domain.FileEntry, error)

	// CountFiles returns the number of regular files below dir, recursively.
	CountFiles(dir string) (int, error)
}
