package share

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
)

func makeFileHeaders(t *testing.T, files map[string]string) []*multipart.FileHeader {
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

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["files"]
}

func TestSaveUploads(t *testing.T) {
	root := newTestRoot(t)
	headers := makeFileHeaders(t, map[string]string{
		"a.txt": "alpha",
		"b.txt": "beta",
	})

	saved, err := SaveUploads(context.Background(), root, "/", headers)
	if err != nil {
		t.Fatalf("SaveUploads: %v", err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}

	data, err := os.ReadFile(filepath.Join(string(root), "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "alpha" {
		t.Errorf("a.txt = %q, want alpha", data)
	}
}

func TestSaveUploadsSkipsExisting(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "a.txt", "original")
	headers := makeFileHeaders(t, map[string]string{"a.txt": "overwrite attempt"})

	saved, err := SaveUploads(context.Background(), root, "/", headers)
	if err != nil {
		t.Fatalf("SaveUploads: %v", err)
	}
	if saved != 0 {
		t.Errorf("saved = %d, want 0", saved)
	}

	data, err := os.ReadFile(filepath.Join(string(root), "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "original" {
		t.Error("existing file was overwritten")
	}
}

func TestSaveUploadsSanitizesNames(t *testing.T) {
	root := newTestRoot(t)
	headers := makeFileHeaders(t, map[string]string{
		"../../../evil.txt": "payload",
	})

	saved, err := SaveUploads(context.Background(), root, "/", headers)
	if err != nil {
		t.Fatalf("SaveUploads: %v", err)
	}
	if saved != 1 {
		t.Errorf("saved = %d, want 1", saved)
	}

	if _, err := os.Stat(filepath.Join(string(root), "evil.txt")); err != nil {
		t.Errorf("sanitized file missing: %v", err)
	}
}

func TestSaveUploadsTargetErrors(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "a.txt", "x")
	headers := makeFileHeaders(t, map[string]string{"b.txt": "x"})

	if _, err := SaveUploads(context.Background(), root, "/missing", headers); err == nil {
		t.Error("expected error for missing target directory")
	}
	if _, err := SaveUploads(context.Background(), root, "/a.txt", headers); err == nil {
		t.Error("expected error for file target")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{`C:\Users\me\doc.txt`, "doc.txt"},
		{"../../etc/passwd", "passwd"},
		{"...hidden", "hidden"},
		{"a\x00b\x1fc.txt", "abc.txt"},
		{"   ", ""},
		{"..", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
