package tree

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Entry is one child returned by a Lister
type Entry struct {
	Name    string
	IsDir   bool
	ModTime time.Time
	Size    int64
}

// AccessError describes a path that could not be listed
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot access %s: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// Lister reads directory contents
type Lister interface {
	// List returns the children of dir; entries that cannot be inspected
	// are left out.
	List(dir string) ([]Entry, error)
	// HasEntries reports whether dir contains anything at all.
	HasEntries(dir string) (bool, error)
}

// OSLister lists the local filesystem. Symlinks are followed.
type OSLister struct{}

func (OSLister) List(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, &AccessError{Path: dir, Err: err}
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		info, err := os.Stat(filepath.Join(dir, de.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return entries, nil
}

func (OSLister) HasEntries(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, &AccessError{Path: dir, Err: err}
	}
	defer f.Close()

	names, err := f.Readdirnames(1)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, &AccessError{Path: dir, Err: err}
	}
	return len(names) > 0, nil
}

// Root is a top-level entry of the tree
type Root struct {
	ID    string
	Label string
}

// RootsProvider lists the top-level entries
type RootsProvider interface {
	Roots() []Root
}

// OSRoots yields the drive letters on Windows and "/" elsewhere
type OSRoots struct{}

func (OSRoots) Roots() []Root {
	if runtime.GOOS != "windows" {
		return []Root{{ID: "/", Label: "/"}}
	}

	var roots []Root
	for c := 'A'; c <= 'Z'; c++ {
		drive := string(c) + `:\`
		if _, err := os.Stat(drive); err == nil {
			roots = append(roots, Root{ID: drive, Label: drive})
		}
	}
	return roots
}

// StaticRoots is a fixed list of roots
type StaticRoots []Root

func (s StaticRoots) Roots() []Root {
	return append([]Root(nil), s...)
}

// DirRoots makes one root per directory, labelled with its absolute path
func DirRoots(dirs ...string) (StaticRoots, error) {
	roots := make(StaticRoots, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root %s: %w", d, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, &AccessError{Path: abs, Err: err}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root %s is not a directory", abs)
		}
		roots = append(roots, Root{ID: abs, Label: abs})
	}
	return roots, nil
}
