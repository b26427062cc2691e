package persistence

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"
)

// The snapshot format stores arrays as raw little-endian bytes, and the
// zero-copy paths alias typed slices straight over them. The package
// refuses to run where that aliasing would be unsound.

var (
	// ErrUnsupportedArchitecture is returned on CPU architectures the
	// zero-copy readers were not validated on.
	ErrUnsupportedArchitecture = errors.New("unsupported architecture: only amd64 and arm64 are supported")

	// ErrBigEndian is returned on big-endian systems; stored arrays are
	// little-endian and never byte-swapped.
	ErrBigEndian = errors.New("big-endian systems are not supported")

	// ErrUnalignedAccess is returned when an array does not meet its
	// element type's natural alignment.
	ErrUnalignedAccess = errors.New("unaligned memory access detected")
)

func init() {
	if err := validatePlatform(); err != nil {
		panic(fmt.Sprintf("graphgo/persistence: %v", err))
	}
}

func validatePlatform() error {
	if arch := runtime.GOARCH; arch != "amd64" && arch != "arm64" {
		return fmt.Errorf("%w: %s", ErrUnsupportedArchitecture, arch)
	}
	if !isLittleEndian() {
		return ErrBigEndian
	}
	return nil
}

func isLittleEndian() bool {
	var probe uint16 = 0x0001
	return *(*byte)(unsafe.Pointer(&probe)) == 1
}

// checkAlignment verifies p meets the natural alignment of the element
// type it is about to be viewed as.
func checkAlignment(p unsafe.Pointer, align uintptr, kind string) error {
	if uintptr(p)%align != 0 {
		return fmt.Errorf("%w: %s slice at address 0x%x", ErrUnalignedAccess, kind, uintptr(p))
	}
	return nil
}
