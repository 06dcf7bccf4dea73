package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"

	"github.com/ezshare/ezshare/pkg/share"
)

func setupFileTest(t *testing.T) (share.Root, *FileHandler) {
	t.Helper()

	root, err := share.NewRoot(t.TempDir())
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	return root, NewFileHandler(root, 1<<20, flate.BestSpeed)
}

func writeShared(t *testing.T, root share.Root, rel, content string) {
	t.Helper()

	abs := filepath.Join(string(root), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestBrowseHandler(t *testing.T) {
	root, handler := setupFileTest(t)
	writeShared(t, root, "sub/a.txt", "x")

	r := httptest.NewRequest(http.MethodGet, "/api/browse?p=/sub", nil)
	w := httptest.NewRecorder()
	handler.Browse(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}

	var listing share.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if listing.CurRelPath != "/sub" {
		t.Errorf("curRelPath = %q, want /sub", listing.CurRelPath)
	}
	if len(listing.Files) != 2 || listing.Files[0].FileName != ".." {
		t.Errorf("unexpected files: %+v", listing.Files)
	}
}

func TestBrowseHandlerNotFound(t *testing.T) {
	_, handler := setupFileTest(t)

	r := httptest.NewRequest(http.MethodGet, "/api/browse?p=/missing", nil)
	w := httptest.NewRecorder()
	handler.Browse(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", w.Code, w.Body)
	}
	if ct := w.Result().Header.Get("Content-Type"); ct != ContentTypeProblemJSON {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestDownloadHandlerFile(t *testing.T) {
	root, handler := setupFileTest(t)
	writeShared(t, root, "data.txt", "hello world")

	r := httptest.NewRequest(http.MethodGet, "/api/download?f=/data.txt", nil)
	w := httptest.NewRecorder()
	handler.Download(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if w.Body.String() != "hello world" {
		t.Errorf("body = %q", w.Body.String())
	}
	if got := w.Result().Header.Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q", got)
	}
}

func TestDownloadHandlerRange(t *testing.T) {
	root, handler := setupFileTest(t)
	writeShared(t, root, "data.txt", "hello world")

	r := httptest.NewRequest(http.MethodGet, "/api/download?f=/data.txt", nil)
	r.Header.Set("Range", "bytes=6-")
	w := httptest.NewRecorder()
	handler.Download(w, r)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206: %s", w.Code, w.Body)
	}
	if w.Body.String() != "world" {
		t.Errorf("body = %q, want world", w.Body.String())
	}
}

func TestDownloadHandlerMultiRangeRejected(t *testing.T) {
	root, handler := setupFileTest(t)
	writeShared(t, root, "data.txt", "hello world")

	r := httptest.NewRequest(http.MethodGet, "/api/download?f=/data.txt", nil)
	r.Header.Set("Range", "bytes=0-1,3-4")
	w := httptest.NewRecorder()
	handler.Download(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", w.Code, w.Body)
	}
}

func TestDownloadHandlerDirectoryStreamsZip(t *testing.T) {
	root, handler := setupFileTest(t)
	writeShared(t, root, "docs/a.txt", "alpha")

	r := httptest.NewRequest(http.MethodGet, "/api/download?f=/docs", nil)
	w := httptest.NewRecorder()
	handler.Download(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if ct := w.Result().Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestDownloadHandlerNotFound(t *testing.T) {
	_, handler := setupFileTest(t)

	r := httptest.NewRequest(http.MethodGet, "/api/download?f=/missing", nil)
	w := httptest.NewRecorder()
	handler.Download(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", w.Code, w.Body)
	}
}

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	root, handler := setupFileTest(t)
	body, contentType := multipartUpload(t, map[string]string{"up.txt": "payload"})

	r := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.Upload(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}

	var resp UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !resp.Success || resp.Saved != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}

	data, err := os.ReadFile(filepath.Join(string(root), "up.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("uploaded content = %q", data)
	}
}

func TestUploadHandlerEmptyForm(t *testing.T) {
	_, handler := setupFileTest(t)
	body, contentType := multipartUpload(t, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.Upload(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", w.Code, w.Body)
	}
}

func TestUploadHandlerOversized(t *testing.T) {
	root, err := share.NewRoot(t.TempDir())
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	handler := NewFileHandler(root, 16, flate.BestSpeed)

	body, contentType := multipartUpload(t, map[string]string{"big.bin": "this body is larger than sixteen bytes"})
	r := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.Upload(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", w.Code, w.Body)
	}
}
