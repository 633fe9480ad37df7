package config

import "time"

// Bounds is the resource-bound record SPEC_FULL §5/§9 requires, passed
// by value into vm.Driver and optimize.Pipeline so both can be
// constructed and tested without going through package-level flag state.
type Bounds struct {
	MaxAddressVisits      int
	MaxCallDepth          int
	MaxMethodVisits       int
	MaxExecutionTime      int // seconds
	MaxOptimizationPasses int
}

// Deadline returns the wall-clock instant a method's graph build must
// complete by, measured from now.
func (b Bounds) Deadline() time.Time {
	return time.Now().Add(time.Duration(b.MaxExecutionTime) * time.Second)
}

// DefaultBounds mirrors flags.go's flag defaults, for callers (tests,
// library users) that construct a Driver without going through the CLI.
func DefaultBounds() Bounds {
	return Bounds{
		MaxAddressVisits:      10000,
		MaxCallDepth:          20,
		MaxMethodVisits:       1000000,
		MaxExecutionTime:      30,
		MaxOptimizationPasses: 20,
	}
}
