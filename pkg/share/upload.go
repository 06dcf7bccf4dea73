package share

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ezshare/ezshare/internal/logger"
)

// moveConcurrency bounds how many uploaded files are written to the share
// at once.
const moveConcurrency = 10

const maxFileNameLength = 255

// SaveUploads writes the files of a parsed multipart form into the directory
// at rel under the root. Client filenames are sanitized to a single safe
// path component. A file whose name already exists in the target directory
// is skipped, never overwritten. Returns the number of files written.
func SaveUploads(ctx context.Context, root Root, rel string, files []*multipart.FileHeader) (int, error) {
	abs, info, err := root.ResolveExisting(rel)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, ErrNotDirectory
	}

	var saved int
	results := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(moveConcurrency)
	for i, fh := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			name := SanitizeFileName(fh.Filename)
			if name == "" {
				logger.Warn("Dropping upload with unusable filename", "filename", fh.Filename)
				return nil
			}

			written, err := saveUpload(fh, filepath.Join(abs, name))
			if err != nil {
				return fmt.Errorf("failed to save %q: %w", name, err)
			}
			if !written {
				logger.Info("Skipping upload, file exists", "filename", name)
				return nil
			}
			results[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for _, ok := range results {
		if ok {
			saved++
		}
	}
	return saved, nil
}

func saveUpload(fh *multipart.FileHeader, dst string) (bool, error) {
	src, err := fh.Open()
	if err != nil {
		return false, err
	}
	defer src.Close()

	// O_EXCL makes the exists check and the create one atomic step.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return false, err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return false, err
	}
	return true, nil
}

// SanitizeFileName reduces a client-supplied filename to a single safe path
// component: path separators and control characters are stripped, leading
// dots removed, and the result capped at 255 bytes. Returns "" if nothing
// usable remains.
func SanitizeFileName(name string) string {
	// Browsers may send a full client-side path; keep only the last element.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	name = strings.TrimLeft(b.String(), ".")
	name = strings.TrimSpace(name)

	if len(name) > maxFileNameLength {
		name = name[:maxFileNameLength]
	}
	return name
}
