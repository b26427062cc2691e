// Package mmap maps snapshot files into memory for zero-copy loads.
//
// A mapped snapshot lets the graph's offset, destination and payload arrays
// alias the on-disk bytes directly, so opening a multi-gigabyte graph costs
// page-table setup instead of a full read. Mappings are read-only; the
// snapshot format is immutable once written.
//
// Unix platforms use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile with advice as a no-op. Bytes is safe for
// unbounded concurrent readers, but callers own the lifetime: no goroutine
// may touch the slice after Close returns.
package mmap

import (
	"errors"
	"os"
	"sync/atomic"
)

// ErrClosed is returned when advising a closed mapping.
var ErrClosed = errors.New("mmap: mapping is closed")

// AccessPattern hints the kernel about the expected read pattern.
type AccessPattern int

const (
	// AccessSequential expects front-to-back reads (streaming verification).
	AccessSequential AccessPattern = iota
	// AccessRandom expects scattered reads (graph queries over the arrays).
	AccessRandom
)

// Mapping is a read-only memory-mapped file. It owns the mapped slice and
// releases it on Close.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path read-only. An empty file maps to an empty,
// valid Mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return &Mapping{}, nil
	}

	data, unmap, err := osMap(f, int(fi.Size()))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Bytes returns the mapped contents. The slice is valid until Close; after
// Close it returns nil.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the mapped length in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Advise hints the kernel about the upcoming access pattern. The hint is
// advisory; failures to apply it are not load failures.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// Close unmaps the file. Idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}
