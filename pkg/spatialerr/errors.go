// Package spatialerr names a narrow failure taxonomy. Most BVH/Octree
// operations never return an error — empty input and out-of-range indices
// are handled by returning zero-value results, and the raycast façade
// reports a miss when given a nil bounds function. BVH and Octree
// constructors take the bounds function as a required argument and do not
// check it for nil; a nil one panics on first use. These sentinels exist for the few real error
// boundaries: arena exhaustion during a parallel build (which is itself
// recovered from, not propagated — see pkg/bvh's parallel builder).
package spatialerr

import "github.com/pkg/errors"

// ErrArenaExhausted is logged (never returned to a caller) when the build
// arena cannot satisfy an allocation during a parallel build; the builder
// falls back to a sequential build instead of failing.
var ErrArenaExhausted = errors.New("spatialcore: build arena allocation failed")

// ErrMissingBoundsFunc names the missing-bounds-callback condition. No
// function in this module returns it: bvh.NewBVH and octree.New take the
// bounds function as a required argument.
var ErrMissingBoundsFunc = errors.New("spatialcore: no bounds function configured")

// Wrap attaches a contextual message to err using github.com/pkg/errors,
// preserving the original error for errors.Is/As-style inspection.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}
