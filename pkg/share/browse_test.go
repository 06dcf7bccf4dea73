package share

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBrowseRoot(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "b2.txt", "x")
	writeFile(t, root, "b10.txt", "x")
	writeFile(t, root, "a.txt", "x")
	if err := os.Mkdir(filepath.Join(string(root), "dir"), 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	listing, err := Browse(context.Background(), root, "/")
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}

	if listing.CurRelPath != "/" {
		t.Errorf("CurRelPath = %q, want /", listing.CurRelPath)
	}
	if listing.SharedPath != string(root) {
		t.Errorf("SharedPath = %q, want %q", listing.SharedPath, root)
	}

	// Parent entry first, then natural sort: b2 before b10.
	wantNames := []string{"..", "a.txt", "b2.txt", "b10.txt", "dir"}
	if len(listing.Files) != len(wantNames) {
		t.Fatalf("got %d entries, want %d: %+v", len(listing.Files), len(wantNames), listing.Files)
	}
	for i, want := range wantNames {
		if listing.Files[i].FileName != want {
			t.Errorf("entry %d = %q, want %q", i, listing.Files[i].FileName, want)
		}
	}

	for _, e := range listing.Files {
		if e.FileName == "dir" && !e.IsDir {
			t.Error("dir not flagged as directory")
		}
		if e.FileName == "a.txt" && e.Path != "/a.txt" {
			t.Errorf("a.txt path = %q, want /a.txt", e.Path)
		}
	}
}

func TestBrowseRootHasParentEntry(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "a.txt", "x")

	listing, err := Browse(context.Background(), root, "/")
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}

	if len(listing.Files) == 0 || listing.Files[0].FileName != ".." {
		t.Fatalf("root listing does not start with \"..\": %+v", listing.Files)
	}
	parent := listing.Files[0]
	if !parent.IsDir {
		t.Error("parent entry not flagged as directory")
	}
	// At the root the parent collapses onto the root itself, so following
	// it cannot leave the share.
	if parent.Path != "/" {
		t.Errorf("parent path = %q, want /", parent.Path)
	}
}

func TestBrowseSubdirHasParentEntry(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "sub/a.txt", "x")

	listing, err := Browse(context.Background(), root, "/sub")
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}

	if len(listing.Files) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(listing.Files), listing.Files)
	}
	parent := listing.Files[0]
	if parent.FileName != ".." || !parent.IsDir || parent.Path != "/" {
		t.Errorf("unexpected parent entry: %+v", parent)
	}
	if listing.Files[1].Path != "/sub/a.txt" {
		t.Errorf("child path = %q, want /sub/a.txt", listing.Files[1].Path)
	}
}

func TestBrowseEmptyRelDefaultsToRoot(t *testing.T) {
	root := newTestRoot(t)

	listing, err := Browse(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if listing.CurRelPath != "/" {
		t.Errorf("CurRelPath = %q, want /", listing.CurRelPath)
	}
	if len(listing.Files) != 1 || listing.Files[0].FileName != ".." {
		t.Errorf("expected only the parent entry, got %+v", listing.Files)
	}
}

func TestBrowseNotFound(t *testing.T) {
	root := newTestRoot(t)

	if _, err := Browse(context.Background(), root, "/missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBrowseFileIsNotDirectory(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "a.txt", "x")

	if _, err := Browse(context.Background(), root, "/a.txt"); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("err = %v, want ErrNotDirectory", err)
	}
}

func TestBrowseTraversalStaysInShare(t *testing.T) {
	root := newTestRoot(t)
	writeFile(t, root, "a.txt", "x")

	listing, err := Browse(context.Background(), root, "/../../..")
	if err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if listing.CurRelPath != "/" {
		t.Errorf("CurRelPath = %q, want /", listing.CurRelPath)
	}
}
