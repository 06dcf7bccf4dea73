package share

import (
	"context"
	"os"
	"path"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ezshare/ezshare/internal/logger"
)

// Entry is one row of a directory listing. Path is share-relative and is
// what the client feeds back into download requests.
type Entry struct {
	Path     string `json:"path"`
	FileName string `json:"fileName"`
	IsDir    bool   `json:"isDir"`
}

// Listing is the browse response for one directory.
type Listing struct {
	Files      []Entry `json:"files"`
	CurRelPath string  `json:"curRelPath"`
	SharedPath string  `json:"sharedPath"`
}

// statConcurrency bounds the parallel stat calls per listing, so a browse of
// a huge directory does not exhaust file descriptors.
const statConcurrency = 10

// Browse lists the directory at rel under the root. Names sort naturally
// ("b2" before "b10"), directories and files interleaved. Every listing
// starts with a synthetic ".." entry pointing at the parent; at the root it
// points back at the root itself. Children that cannot be stat'd are logged
// and dropped rather than failing the whole listing.
func Browse(ctx context.Context, root Root, rel string) (*Listing, error) {
	if rel == "" {
		rel = "/"
	}
	rel = path.Join("/", rel)

	abs, info, err := root.ResolveExisting(rel)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotDirectory
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		// A literal ".." child would collide with the synthetic parent
		// entry below.
		if e.Name() == ".." {
			continue
		}
		names = append(names, e.Name())
	}

	c := collate.New(language.Und, collate.Numeric)
	c.SortStrings(names)

	entries := make([]Entry, len(names))
	ok := make([]bool, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := os.Stat(path.Join(abs, name))
			if err != nil {
				logger.Warn("Skipping unreadable entry", "path", path.Join(rel, name), "error", err)
				return nil
			}
			entries[i] = Entry{
				Path:     path.Join(rel, name),
				FileName: name,
				IsDir:    info.IsDir(),
			}
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The parent entry is unconditional; at the root path.Join collapses
	// it back to "/".
	files := make([]Entry, 0, len(entries)+1)
	files = append(files, Entry{
		Path:     path.Join(rel, ".."),
		FileName: "..",
		IsDir:    true,
	})
	for i, e := range entries {
		if ok[i] {
			files = append(files, e)
		}
	}

	return &Listing{
		Files:      files,
		CurRelPath: rel,
		SharedPath: string(root),
	}, nil
}
