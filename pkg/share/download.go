package share

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ezshare/ezshare/internal/logger"
)

var (
	// ErrMalformedRange is returned for a Range header that cannot be
	// parsed as a single byte range.
	ErrMalformedRange = errors.New("malformed range header")

	// ErrUnsupportedRange is returned for multi-range requests, which the
	// server does not serve.
	ErrUnsupportedRange = errors.New("multiple ranges are not supported")

	// ErrUnsupportedRangeUnit is returned for range units other than bytes.
	ErrUnsupportedRangeUnit = errors.New("unsupported range unit")
)

// ByteRange is a closed interval of file offsets, both ends inclusive.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange parses a single-range Range header value against a file of the
// given size. Supported forms are "bytes=a-b", "bytes=a-" and "bytes=-n".
// An end past the last byte is clamped. A range that does not overlap the
// file at all yields (nil, false, nil): syntactically valid but not
// satisfiable, which the caller answers with 416.
func ParseRange(header string, size int64) (*ByteRange, bool, error) {
	unit, spec, found := strings.Cut(header, "=")
	if !found {
		return nil, false, ErrMalformedRange
	}
	if strings.TrimSpace(unit) != "bytes" {
		return nil, false, ErrUnsupportedRangeUnit
	}
	if strings.Contains(spec, ",") {
		return nil, false, ErrUnsupportedRange
	}

	startStr, endStr, found := strings.Cut(strings.TrimSpace(spec), "-")
	if !found {
		return nil, false, ErrMalformedRange
	}

	if startStr == "" {
		// Suffix range: the final n bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return nil, false, ErrMalformedRange
		}
		if size == 0 {
			return nil, false, nil
		}
		if n > size {
			n = size
		}
		return &ByteRange{Start: size - n, End: size - 1}, true, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, false, ErrMalformedRange
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return nil, false, ErrMalformedRange
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start >= size {
		return nil, false, nil
	}
	return &ByteRange{Start: start, End: end}, true, nil
}

// ServeFile streams the file at rel to the response, honoring a single-byte
// Range header with a 206 partial response. With forceDownload the response
// carries a Content-Disposition attachment header so browsers save instead
// of render. Errors before the first body byte are returned for the caller
// to map; once streaming has begun a failure aborts the connection, since
// the status line is already on the wire.
func ServeFile(w http.ResponseWriter, r *http.Request, root Root, rel string, forceDownload bool) error {
	abs, info, err := root.ResolveExisting(rel)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ErrIsDirectory
	}

	size := info.Size()

	var rng *ByteRange
	if header := r.Header.Get("Range"); header != "" {
		parsed, satisfiable, err := ParseRange(header, size)
		if err != nil {
			return err
		}
		if !satisfiable {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return nil
		}
		rng = parsed
	}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	defer f.Close()

	name := filepath.Base(abs)
	w.Header().Set("Accept-Ranges", "bytes")
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if forceDownload {
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}

	var body io.Reader = f
	if rng != nil {
		if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
			return err
		}
		body = io.LimitReader(f, rng.Length())

		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, size))
		w.Header().Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
	}

	if r.Method == http.MethodHead {
		return nil
	}

	if _, err := io.Copy(w, body); err != nil {
		// The status is already written; drop the connection instead of
		// letting the client see a truncated body as success.
		logger.Warn("Download aborted mid-stream", "path", rel, "error", err)
		panic(http.ErrAbortHandler)
	}
	return nil
}
