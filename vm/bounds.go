package vm

import (
	"time"

	"github.com/k5h4tr1y4/simplify/config"
	"github.com/k5h4tr1y4/simplify/errs"
)

// boundsChecker holds the one-call-site check for three of the four
// resource bounds named in SPEC_FULL §5 (call depth is checkCallDepth
// below), so Driver.Drive itself just
// calls one method per checkpoint rather than re-deriving the
// comparisons inline.
type boundsChecker struct {
	bounds      config.Bounds
	deadline    time.Time
	perLocation map[any]int
	totalVisits int
}

func newBoundsChecker(bounds config.Bounds) *boundsChecker {
	return &boundsChecker{
		bounds:      bounds,
		deadline:    bounds.Deadline(),
		perLocation: map[any]int{},
	}
}

// checkExecutionTime is called once per dequeue.
func (b *boundsChecker) checkExecutionTime() error {
	if time.Now().After(b.deadline) {
		return errs.NewResourceBoundExceeded(errs.BoundExecutionTime, b.bounds.MaxExecutionTime)
	}
	return nil
}

// checkAddressVisit is called once per dequeue with the node's location,
// before the handler runs.
func (b *boundsChecker) checkAddressVisit(loc any) error {
	b.perLocation[loc]++
	if b.perLocation[loc] > b.bounds.MaxAddressVisits {
		return errs.NewResourceBoundExceeded(errs.BoundAddressVisits, b.bounds.MaxAddressVisits)
	}
	return nil
}

// checkMethodVisit is called once per dequeue, counting total nodes
// built across the whole method.
func (b *boundsChecker) checkMethodVisit() error {
	b.totalVisits++
	if b.totalVisits > b.bounds.MaxMethodVisits {
		return errs.NewResourceBoundExceeded(errs.BoundMethodVisits, b.bounds.MaxMethodVisits)
	}
	return nil
}

// checkCallDepth is called once per recursive invoke, before the callee
// context is built. It takes config.Bounds directly rather than a
// *boundsChecker: unlike the other three checks, call depth carries no
// per-Driver state (no deadline, no visit counts), so allocating a full
// checker just to run this one comparison on every invoke would be pure
// overhead on the hottest path through the driver.
func checkCallDepth(bounds config.Bounds, depth int) error {
	if depth > bounds.MaxCallDepth {
		return errs.NewResourceBoundExceeded(errs.BoundCallDepth, bounds.MaxCallDepth)
	}
	return nil
}
