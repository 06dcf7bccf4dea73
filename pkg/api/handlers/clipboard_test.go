package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ezshare/ezshare/pkg/clipboard"
	"github.com/ezshare/ezshare/pkg/share"
)

func setupClipboardTest(t *testing.T) (share.Root, *clipboard.Memory, *ClipboardHandler) {
	t.Helper()

	root, err := share.NewRoot(t.TempDir())
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	clip := &clipboard.Memory{}
	return root, clip, NewClipboardHandler(clip, root)
}

func postForm(handler http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestPasteToHostClipboard(t *testing.T) {
	_, clip, handler := setupClipboardTest(t)

	w := postForm(handler.Paste, "/api/paste", url.Values{"clipboard": {"hello from client"}})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}

	text, _ := clip.Read()
	if text != "hello from client" {
		t.Errorf("clipboard = %q", text)
	}
}

func TestPasteSaveAsFile(t *testing.T) {
	root, clip, handler := setupClipboardTest(t)

	w := postForm(handler.Paste, "/api/paste", url.Values{
		"clipboard":  {"saved text"},
		"saveAsFile": {"true"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}

	// The host clipboard stays untouched in file mode.
	if text, _ := clip.Read(); text != "" {
		t.Errorf("clipboard unexpectedly written: %q", text)
	}

	matches, err := filepath.Glob(filepath.Join(string(root), "client-clipboard-*.txt"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one clipboard file, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "saved text" {
		t.Errorf("file content = %q", data)
	}
}

func TestCopyReturnsHostClipboard(t *testing.T) {
	_, clip, handler := setupClipboardTest(t)
	if err := clip.Write("host text"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/copy", nil)
	w := httptest.NewRecorder()
	handler.Copy(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "host text" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Result().Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
}
