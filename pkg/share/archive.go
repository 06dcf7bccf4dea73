package share

import (
	"context"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/ezshare/ezshare/internal/logger"
)

// ServeDirZip streams the directory at rel as a zip archive built on the
// fly. Nothing is buffered to disk, so the archive has no Content-Length
// and downloads of it are not resumable. Entries are rooted under the
// directory's base name so the archive unpacks into a single folder.
//
// compressionLevel is a flate level (flate.NoCompression through
// flate.BestCompression). Like ServeFile, errors after the first body byte
// abort the connection.
func ServeDirZip(w http.ResponseWriter, r *http.Request, root Root, rel string, compressionLevel int) error {
	abs, info, err := root.ResolveExisting(rel)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	base := filepath.Base(abs)
	if base == string(filepath.Separator) || base == "." {
		base = "share"
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": base + ".zip"}))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return nil
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, compressionLevel)
	})

	err = addDirToZip(r.Context(), zw, abs, base)
	if err == nil {
		err = zw.Close()
	}
	if err != nil {
		logger.Warn("Archive download aborted mid-stream", "path", rel, "error", err)
		panic(http.ErrAbortHandler)
	}
	return nil
}

func addDirToZip(ctx context.Context, zw *zip.Writer, dir, prefix string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		relInDir, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(prefix, relInDir))
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, f)
		f.Close()
		return err
	})
}
