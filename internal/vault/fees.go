package vault

import (
	"math"
	"math/bits"
)

const (
	// SecondsPerDay is the length of one billing day.
	SecondsPerDay = 86400

	// DefaultFeeRatePerDay is the fee charged per billed day of custody.
	DefaultFeeRatePerDay uint64 = 10_000_000
)

// DaysHeld returns the number of billed days for a hold of elapsed seconds:
// the whole days elapsed plus one. Zero or negative elapsed time bills one day.
func DaysHeld(elapsed int64) uint64 {
	if elapsed <= 0 {
		return 1
	}
	return uint64(elapsed)/SecondsPerDay + 1
}

// ComputeFee returns DaysHeld(elapsed) * ratePerDay, or ErrOverflow.
func ComputeFee(elapsed int64, ratePerDay uint64) (uint64, error) {
	hi, lo := bits.Mul64(DaysHeld(elapsed), ratePerDay)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// elapsedSince returns now - then, clamped at zero.
func elapsedSince(then, now int64) int64 {
	if now <= then {
		return 0
	}
	d := uint64(now) - uint64(then)
	if d > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(d)
}

// addDuration returns start + d, or ErrOverflow if it leaves the int64 range.
func addDuration(start, d int64) (int64, error) {
	if (d > 0 && start > math.MaxInt64-d) || (d < 0 && start < math.MinInt64-d) {
		return 0, ErrOverflow
	}
	return start + d, nil
}
