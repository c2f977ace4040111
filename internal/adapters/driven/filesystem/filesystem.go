// Package filesystem implements driven.FileSystem on the local disk.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/karrick/godirwalk"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// Ensure FileSystem implements the interface.
var _ driven.FileSystem = (*FileSystem)(nil)

// Decode converts raw bytes to text. A UTF-8 or UTF-16 byte order mark
// selects the encoding; otherwise the input is read as UTF-8 and invalid
// sequences become U+FFFD.
func Decode(b []byte) string {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), b)
	if err != nil {
		// The UTF-8 decoder only replaces; fall back to the raw bytes.
		return string(b)
	}
	return string(out)
}

// FileSystem reads knowledge-base files from disk.
// It holds no state and is safe for concurrent use.
type FileSystem struct{}

// New creates a FileSystem.
func New() *FileSystem {
	return &FileSystem{}
}

// ReadText reads and decodes a file.
func (f *FileSystem) ReadText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", wrapNotExist(path, err)
	}
	return Decode(b), nil
}

// Stat describes a single path.
func (f *FileSystem) Stat(path string) (domain.FileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileEntry{}, wrapNotExist(path, err)
	}
	return domain.FileEntry{
		Name:  info.Name(),
		Path:  path,
		Size:  info.Size(),
		IsDir: info.IsDir(),
	}, nil
}

// ListDir returns the children of dir sorted by name. Symlinks are
// resolved so they report the size and kind of their target.
func (f *FileSystem) ListDir(dir string) ([]domain.FileEntry, error) {
	dirents, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, wrapNotExist(dir, err)
	}
	sort.Sort(dirents)

	entries := make([]domain.FileEntry, 0, len(dirents))
	for _, de := range dirents {
		full := filepath.Join(dir, de.Name())
		info, err := os.Stat(full)
		if err != nil {
			// Broken symlinks and races with deletion are skipped.
			continue
		}
		entries = append(entries, domain.FileEntry{
			Name:  de.Name(),
			Path:  full,
			Size:  info.Size(),
			IsDir: info.IsDir(),
		})
	}
	return entries, nil
}

// CountFiles counts regular files below dir.
func (f *FileSystem) CountFiles(dir string) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, wrapNotExist(dir, err)
	}

	count := 0
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(_ string, de *godirwalk.Dirent) error {
			if de.IsRegular() {
				count++
			}
			return nil
		},
		ErrorCallback: func(_ string, _ error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return 0, wrapNotExist(dir, err)
	}
	return count, nil
}

func wrapNotExist(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", path, err)
}
