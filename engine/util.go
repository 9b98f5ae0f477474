package engine

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

// clamp restricts v to the inclusive range [low, high].
func clamp[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// sum adds up a slice.
func sum[T number](xs []T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}

func lsbIndex(bb uint64) int { return bits.TrailingZeros64(bb) }
