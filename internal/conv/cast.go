package conv

import (
	"fmt"
	"math"
)

// IntToUint32 converts an int to uint32, rejecting negatives and values
// beyond the dense 32-bit id range.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d is negative", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("value %d exceeds the 32-bit id range", v)
	}
	return uint32(v), nil
}

// Uint64ToInt converts a uint64 to int, rejecting values that do not fit the
// platform int. Lengths read from snapshots pass through here before they
// size an allocation.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("value %d exceeds the platform int range", v)
	}
	return int(v), nil
}

// Uint64ToUint32 converts a uint64 to uint32, rejecting values beyond the
// dense 32-bit id range.
func Uint64ToUint32(v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("value %d exceeds the 32-bit id range", v)
	}
	return uint32(v), nil
}
