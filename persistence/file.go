package persistence

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/graphgo/internal/mmap"
)

// WriteFile atomically writes the snapshot to filename: bytes go to a temp
// file in the same directory, are synced, then renamed over the target.
func WriteFile(filename string, snap *Snapshot, optFns ...WriteOption) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0644)

	// Use buffered writer to batch writes (critical for performance)
	buf := bufio.NewWriterSize(tmp, 256*1024) // 256KB buffer
	if err := Write(buf, snap, optFns...); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomically replace target.
	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// ReadFile loads a snapshot from filename with buffered reads.
func ReadFile(filename string) (*Snapshot, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Use buffered reader to batch reads
	buf := bufio.NewReaderSize(f, 256*1024) // 256KB buffer
	return Read(buf)
}

// MapFile memory-maps filename and decodes the snapshot in place. The
// returned closer owns the mapping; the snapshot's arrays are valid only
// until it is closed. Fails on files written with compression.
func MapFile(filename string) (*Snapshot, io.Closer, error) {
	m, err := mmap.Open(filename)
	if err != nil {
		return nil, nil, err
	}

	// Adjacency access is random by nature; tell the kernel.
	if err := m.Advise(mmap.AccessRandom); err != nil {
		_ = m.Close()
		return nil, nil, err
	}

	snap, err := ReadMapped(m.Bytes())
	if err != nil {
		_ = m.Close()
		return nil, nil, err
	}
	return snap, m, nil
}
