package share

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/flate"
)

func TestServeDirZip(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "docs/a.txt", "alpha")
	writeFile(t, root, "docs/nested/b.txt", "beta")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	if err := ServeDirZip(w, r, root, "/docs", flate.BestSpeed); err != nil {
		t.Fatalf("ServeDirZip: %v", err)
	}

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/zip" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := resp.Header.Get("Content-Disposition"); got != `attachment; filename=docs.zip` {
		t.Errorf("Content-Disposition = %q", got)
	}

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	want := map[string]string{
		"docs/a.txt":        "alpha",
		"docs/nested/b.txt": "beta",
	}
	if len(zr.File) != len(want) {
		t.Fatalf("archive has %d entries, want %d", len(zr.File), len(want))
	}
	for _, f := range zr.File {
		wantContent, ok := want[f.Name]
		if !ok {
			t.Errorf("unexpected entry %q", f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %q: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %q: %v", f.Name, err)
		}
		if string(data) != wantContent {
			t.Errorf("entry %q = %q, want %q", f.Name, data, wantContent)
		}
	}
}

func TestServeDirZipErrors(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "a.txt", "x")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	if err := ServeDirZip(w, r, root, "/missing", flate.BestSpeed); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := ServeDirZip(w, r, root, "/a.txt", flate.BestSpeed); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("err = %v, want ErrNotDirectory", err)
	}
}
