package device

import "errors"

// Sentinel errors for the device package.
var (
	// ErrWaitTimeout is returned when a configured wait timeout elapses
	// before the device frees enough command slots or becomes idle.
	ErrWaitTimeout = errors.New("device: timed out waiting for the device")

	// ErrOutOfMemory is returned when the allocator cannot satisfy a request.
	ErrOutOfMemory = errors.New("device: out of device memory")

	// ErrInvalidSize is returned for allocation requests with a
	// non-positive dimension.
	ErrInvalidSize = errors.New("device: invalid allocation size")

	// ErrProgramTooLarge is returned when a reservation exceeds the FIFO
	// capacity and can never be satisfied in one piece.
	ErrProgramTooLarge = errors.New("device: reservation exceeds FIFO capacity")
)
