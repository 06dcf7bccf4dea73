package handlers

import (
	"errors"
	"net/http"

	"github.com/ezshare/ezshare/internal/logger"
	"github.com/ezshare/ezshare/pkg/metrics"
	"github.com/ezshare/ezshare/pkg/share"
)

// FileHandler serves the shared-directory surface: listings, downloads and
// uploads.
type FileHandler struct {
	root          share.Root
	maxUploadSize int64
	zipLevel      int
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(root share.Root, maxUploadSize int64, zipLevel int) *FileHandler {
	return &FileHandler{
		root:          root,
		maxUploadSize: maxUploadSize,
		zipLevel:      zipLevel,
	}
}

// Browse handles GET /api/browse?p=<relative path>.
func (h *FileHandler) Browse(w http.ResponseWriter, r *http.Request) {
	listing, err := share.Browse(r.Context(), h.root, r.URL.Query().Get("p"))
	if err != nil {
		switch {
		case errors.Is(err, share.ErrNotFound):
			NotFound(w, "No such directory")
		case errors.Is(err, share.ErrNotDirectory):
			BadRequest(w, "Path is not a directory")
		default:
			logger.Error("Browse failed", "error", err)
			InternalServerError(w, "Failed to list directory")
		}
		return
	}

	WriteJSONOK(w, listing)
}

// Download handles GET /api/download?f=<relative path>. A directory target
// streams as a zip archive; a file target supports single byte-range
// requests for resumable downloads. forceDownload=true adds an attachment
// disposition.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("f")
	forceDownload := r.URL.Query().Get("forceDownload") == "true"

	_, info, err := h.root.ResolveExisting(rel)
	if err != nil {
		h.writeDownloadError(w, rel, err)
		return
	}

	cw := &countingResponseWriter{ResponseWriter: w}
	if info.IsDir() {
		err = share.ServeDirZip(cw, r, h.root, rel, h.zipLevel)
	} else {
		err = share.ServeFile(cw, r, h.root, rel, forceDownload)
	}
	metrics.DownloadBytes.Add(float64(cw.bytes))
	if err != nil {
		h.writeDownloadError(w, rel, err)
	}
}

func (h *FileHandler) writeDownloadError(w http.ResponseWriter, rel string, err error) {
	switch {
	case errors.Is(err, share.ErrNotFound):
		NotFound(w, "No such file or directory")
	case errors.Is(err, share.ErrMalformedRange),
		errors.Is(err, share.ErrUnsupportedRange),
		errors.Is(err, share.ErrUnsupportedRangeUnit):
		BadRequest(w, err.Error())
	default:
		logger.Error("Download failed", "path", rel, "error", err)
		InternalServerError(w, "Download failed")
	}
}

// UploadResponse is the response body for POST /api/upload.
type UploadResponse struct {
	Success bool `json:"success"`
	Saved   int  `json:"saved"`
}

// Upload handles POST /api/upload: a multipart form whose "files" parts are
// written into the shared root. Files that already exist are skipped.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	// Buffer at most 32 MiB in memory; larger parts spill to temp files.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.Warn("Upload rejected, malformed or oversized form", "error", err)
		BadRequest(w, "Invalid upload: "+err.Error())
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Warn("Failed to clean up upload temp files", "error", err)
		}
	}()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		BadRequest(w, "No files in upload")
		return
	}

	saved, err := share.SaveUploads(r.Context(), h.root, "/", files)
	if err != nil {
		logger.Error("Upload failed", "error", err)
		InternalServerError(w, "Upload failed")
		return
	}

	metrics.UploadFiles.Add(float64(saved))
	logger.Info("Upload complete", "received", len(files), "saved", saved)
	WriteJSONOK(w, UploadResponse{Success: true, Saved: saved})
}

// countingResponseWriter tracks bytes written for download metrics.
type countingResponseWriter struct {
	http.ResponseWriter
	bytes int64
}

func (w *countingResponseWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}
