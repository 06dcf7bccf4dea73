// Package share implements the shared-directory surface: listing, ranged
// file downloads, on-the-fly directory archives and multipart uploads, all
// rooted under a single configured directory.
package share

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when a requested path does not exist under
	// the shared root.
	ErrNotFound = errors.New("path not found")

	// ErrIsDirectory is returned when a file operation hits a directory.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrNotDirectory is returned when a directory operation hits a file.
	ErrNotDirectory = errors.New("path is not a directory")
)

// Root is the absolute path of the shared directory. All client-supplied
// relative paths resolve strictly underneath it.
type Root string

// NewRoot validates that path exists and is a directory, and returns it as
// an absolute Root.
func NewRoot(path string) (Root, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve shared path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("shared path is not accessible: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("shared path is not a directory: %s", abs)
	}
	return Root(abs), nil
}

// Resolve maps a client-supplied relative path to an absolute path under the
// root. The relative path is rooted at "/" before joining, so ".." segments
// collapse inside the share and can never escape it.
func (r Root) Resolve(rel string) (string, error) {
	abs := filepath.Join(string(r), filepath.Join("/", rel))
	if abs != string(r) && !strings.HasPrefix(abs, string(r)+string(filepath.Separator)) {
		return "", ErrNotFound
	}
	return abs, nil
}

// ResolveExisting resolves rel and stats the result, mapping a missing
// target to ErrNotFound.
func (r Root) ResolveExisting(rel string) (string, os.FileInfo, error) {
	abs, err := r.Resolve(rel)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, err
	}
	return abs, info, nil
}
