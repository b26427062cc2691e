package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/graphgo/internal/fs"
	"github.com/hupe1980/graphgo/resource"
)

// LocalOptions configures a LocalStore.
type LocalOptions struct {
	// FileSystem abstracts the filesystem, mainly for fault injection in
	// tests. Defaults to the local filesystem.
	FileSystem fs.FileSystem

	// Controller rate-limits blob reads and writes when its IO limit is
	// configured. Nil disables rate limiting.
	Controller *resource.Controller
}

// LocalStore implements BlobStore on a local directory. Blob names use
// forward slashes and may contain subdirectories, which are created on
// demand.
type LocalStore struct {
	root       string
	fs         fs.FileSystem
	controller *resource.Controller
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(root string, optFns ...func(o *LocalOptions)) *LocalStore {
	opts := LocalOptions{
		FileSystem: fs.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &LocalStore{
		root:       root,
		fs:         opts.FileSystem,
		controller: opts.Controller,
	}
}

// tmpSeq disambiguates temp names of concurrent Puts within one process; the
// pid handles separate processes sharing a store directory.
var tmpSeq atomic.Uint64

// Put writes a blob atomically: the bytes go to a temp file next to the
// target, which is renamed into place only after a successful sync.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) error {
	target := filepath.Join(s.root, filepath.FromSlash(name))
	if err := s.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	tmpName := fmt.Sprintf("%s.tmp-%d-%d", target, os.Getpid(), tmpSeq.Add(1))
	f, err := s.fs.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	defer func() {
		if tmpName != "" {
			_ = f.Close()
			_ = s.fs.Remove(tmpName)
		}
	}()

	w := io.Writer(f)
	if s.controller != nil {
		w = s.controller.RateLimitedWriter(ctx, w)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close blob: %w", err)
	}
	if err := s.fs.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename blob into place: %w", err)
	}

	// Sync the directory so the rename survives a crash (best-effort).
	if dir, err := s.fs.OpenFile(filepath.Dir(target), os.O_RDONLY, 0); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}

	tmpName = "" // disarm cleanup
	return nil
}

// Get opens a blob for reading. The error of a missing blob satisfies
// errors.Is(err, ErrNotFound) because ErrNotFound is os.ErrNotExist.
func (s *LocalStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := s.fs.OpenFile(filepath.Join(s.root, filepath.FromSlash(name)), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	if s.controller == nil {
		return f, nil
	}
	return &readCloser{Reader: s.controller.RateLimitedReader(ctx, f), Closer: f}, nil
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove(filepath.Join(s.root, filepath.FromSlash(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// List returns all blob names under the root matching the prefix, sorted.
// In-flight Put temporaries are invisible.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string

	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		entries, err := s.fs.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			name := e.Name()
			childRel := name
			if rel != "" {
				childRel = rel + "/" + name
			}
			if e.IsDir() {
				if err := walk(filepath.Join(dir, name), childRel); err != nil {
					return err
				}
				continue
			}
			if strings.Contains(name, ".tmp-") {
				continue
			}
			if strings.HasPrefix(childRel, prefix) {
				names = append(names, childRel)
			}
		}
		return nil
	}

	if err := walk(s.root, ""); err != nil {
		// A store rooted at a directory nothing was ever put into is empty.
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

// readCloser pairs a wrapped reader with the closer of the underlying file.
type readCloser struct {
	io.Reader
	io.Closer
}
