package oscbank

import "errors"

// Sentinel errors reported by hosts and executors. The kernel itself never
// returns errors; invalid inputs there propagate as IEEE special values.
var (
	// ErrNoOscillators is returned when a dispatch is requested with a zero
	// oscillator count.
	ErrNoOscillators = errors.New("oscbank: oscillator count is zero")

	// ErrShortBuffer is returned when the sample buffer cannot hold one
	// sample per oscillator.
	ErrShortBuffer = errors.New("oscbank: sample buffer shorter than oscillator count")

	// ErrExecutorClosed is returned by Dispatch once an executor has been
	// closed.
	ErrExecutorClosed = errors.New("oscbank: executor is closed")

	// ErrBankClosed is returned by Bank operations after Close.
	ErrBankClosed = errors.New("oscbank: bank is closed")
)
