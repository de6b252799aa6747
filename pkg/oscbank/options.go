package oscbank

// DefaultFreq is the frequency spread a new Bank starts with.
const DefaultFreq = 1.0

// Option configures a Bank at construction time.
type Option func(*bankOptions)

type bankOptions struct {
	executor  Executor
	freq      float32
	startTime float64
	unchecked bool
}

func defaultOptions() bankOptions {
	return bankOptions{freq: DefaultFreq}
}

// WithExecutor selects the execution backend. The bank takes ownership of
// the executor and releases it in Close. A nil executor keeps the default
// SerialExecutor.
func WithExecutor(exec Executor) Option {
	return func(o *bankOptions) {
		if exec != nil {
			o.executor = exec
		}
	}
}

// WithFreq sets the initial frequency spread uniform.
func WithFreq(freq float32) Option {
	return func(o *bankOptions) {
		o.freq = freq
	}
}

// WithTime sets the initial simulation time in seconds.
func WithTime(t float64) Option {
	return func(o *bankOptions) {
		o.startTime = t
	}
}

// WithUncheckedDispatch disables the precondition checks that normally run
// before every dispatch. Invalid uniforms then reach the kernel unfiltered:
// a zero oscillator count dispatches an empty grid, and direct kernel calls
// with a zero count propagate NaN.
func WithUncheckedDispatch() Option {
	return func(o *bankOptions) {
		o.unchecked = true
	}
}
