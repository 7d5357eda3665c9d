package reconcile

import (
	"slices"
	"time"
)

// DefaultTolerance is the largest spread between timestamps that still counts as consistent.
const DefaultTolerance = 30 * 24 * time.Hour

// Spread returns the distance between the oldest and the youngest value.
// Fewer than two values have no spread.
func Spread(values []time.Time) time.Duration {
	if len(values) < 2 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })
	return sorted[len(sorted)-1].Sub(sorted[0])
}

// WithinTolerance reports whether the spread of values is below tolerance.
func WithinTolerance(values []time.Time, tolerance time.Duration) bool {
	return Spread(values) < tolerance
}
