// Package oscbank implements a data-parallel oscillator bank kernel and the
// host plumbing needed to dispatch it.
//
// One dispatch runs the kernel once per oscillator index. Every invocation
// reads the same 12-byte uniform block (time, frequency spread, oscillator
// count), computes
//
//	phase  = time + (index * freq) / count
//	sample = sin(phase) * 0.5 + 0.5
//
// in float32, and writes the sample to its own slot of the output buffer.
// Invocations never communicate, so the grid can be evaluated serially, on a
// worker pool, or on an OpenCL device, with identical results.
//
// The kernel functions and executors perform no validation; that is the
// host's job. Bank wraps an executor together with its sample buffer and a
// simulation clock, and checks the dispatch preconditions (non-zero count,
// buffer large enough) unless explicitly configured not to.
//
// Typical use:
//
//	bank, err := oscbank.NewBank(64, oscbank.WithFreq(2))
//	bank.Advance(1.0 / 60)
//	err = bank.Dispatch()
//	samples := bank.Samples()
package oscbank
