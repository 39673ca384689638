// Package mathutil holds the handful of generic numeric helpers used
// outside the annealing hot path (fitness deltas are hand-inlined there for
// speed; this is for reporting and configuration code).
package mathutil

import "golang.org/x/exp/constraints"

// Max returns the larger of x and y.
func Max[T constraints.Ordered](x, y T) T {
	if x < y {
		return y
	}
	return x
}

// Min returns the smaller of x and y.
func Min[T constraints.Ordered](x, y T) T {
	if y < x {
		return y
	}
	return x
}
