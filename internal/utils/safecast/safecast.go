// Package safecast implements functions to safely cast numeric types without silent truncation.
package safecast

import (
	"fmt"
	"math"
	"math/big"

	"github.com/spf13/cast"
)

const (
	errUint64RangeExceeded = "value %s exceeds uint64 range"
)

// Uint64ToInt64 safely converts a uint64 to int64 using cast and checks for overflow
func Uint64ToInt64(value uint64) (int64, error) {
	if value > math.MaxInt64 {
		return 0, fmt.Errorf("value %d exceeds int64 range", value)
	}

	return cast.ToInt64E(value)
}

// BigToUint64 converts a non-negative big.Int that fits in 64 bits.
func BigToUint64(value *big.Int) (uint64, error) {
	if value == nil {
		return 0, nil
	}
	if value.Sign() < 0 {
		return 0, fmt.Errorf("value %s is negative, cannot convert to uint64", value)
	}
	if !value.IsUint64() {
		return 0, fmt.Errorf(errUint64RangeExceeded, value)
	}

	return value.Uint64(), nil
}
