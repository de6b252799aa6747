package oscbank

// Executor evaluates one dispatch: OscillatorCount invocations of the kernel
// over the bindings' sample buffer. Implementations may schedule invocations
// in any order and with any degree of parallelism; invocations write disjoint
// slots, so the schedule never changes the result.
//
// Executors do not validate bindings. Callers that want the preconditions
// checked run Bindings.Validate first, which Bank does by default.
type Executor interface {
	Dispatch(b Bindings) error
	Close() error
}

// SerialExecutor evaluates every invocation on the calling goroutine in
// index order. It is the reference the concurrent backends are checked
// against.
type SerialExecutor struct{}

// Dispatch runs the kernel once per index, in order.
func (SerialExecutor) Dispatch(b Bindings) error {
	samples := b.Samples
	u := b.Uniforms
	for i := uint32(0); i < u.OscillatorCount; i++ {
		samples[i] = SampleAt(i, u)
	}
	return nil
}

// Close is a no-op; a SerialExecutor holds no resources.
func (SerialExecutor) Close() error { return nil }
