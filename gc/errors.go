// ABOUTME: Sentinel errors for the node collector
// ABOUTME: Contract violations panic with errors wrapping these values

package gc

import "errors"

var (
	// ErrHeapExhausted is the panic value when an allocation cannot be
	// satisfied within Config.MaxHeapBytes even after a collection.
	ErrHeapExhausted = errors.New("gc: heap exhausted")

	// ErrStaleRef is raised when a Ref names a slot that has been reclaimed.
	ErrStaleRef = errors.New("gc: stale reference")

	// ErrNilRef is raised when a node accessor is given Nil.
	ErrNilRef = errors.New("gc: nil reference")

	// ErrNoCheckpoint is raised by Untrail when no checkpoint is open.
	ErrNoCheckpoint = errors.New("gc: untrail without open checkpoint")

	// ErrCollecting is raised when the heap is mutated from inside a mark callback.
	ErrCollecting = errors.New("gc: heap mutated during collection")

	// ErrBadShape is raised for an allocation request that violates the node layout.
	ErrBadShape = errors.New("gc: invalid node shape")

	// ErrClosed is raised when a closed map or handle is used for writes.
	ErrClosed = errors.New("gc: use of closed registration")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("gc: invalid config")
)
