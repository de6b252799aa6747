package oscbank

// Bank owns one oscillator bank: the sample buffer, the uniform state, and
// the executor dispatches run on. The host loop drives it from a single
// goroutine; a Bank is not safe for concurrent use.
type Bank struct {
	exec      Executor
	samples   []float32
	uniforms  Uniforms
	clock     float64
	unchecked bool
	closed    bool
}

// NewBank allocates a bank together with a sample buffer of exactly one slot
// per oscillator. A zero oscillator count is rejected unless
// WithUncheckedDispatch is set.
func NewBank(oscillators uint32, opts ...Option) (*Bank, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if oscillators == 0 && !o.unchecked {
		return nil, ErrNoOscillators
	}
	exec := o.executor
	if exec == nil {
		exec = SerialExecutor{}
	}
	return &Bank{
		exec:    exec,
		samples: make([]float32, oscillators),
		uniforms: Uniforms{
			Time:            float32(o.startTime),
			Freq:            o.freq,
			OscillatorCount: oscillators,
		},
		clock:     o.startTime,
		unchecked: o.unchecked,
	}, nil
}

// Advance moves the simulation clock forward by dt seconds. The clock
// accumulates in float64 and is narrowed to the float32 time uniform, so
// long-running hosts do not drift from repeated float32 rounding.
func (b *Bank) Advance(dt float64) {
	b.clock += dt
	b.uniforms.Time = float32(b.clock)
}

// SetTime resets the simulation clock.
func (b *Bank) SetTime(t float64) {
	b.clock = t
	b.uniforms.Time = float32(t)
}

// SetFreq updates the frequency spread used by subsequent dispatches.
func (b *Bank) SetFreq(freq float32) {
	b.uniforms.Freq = freq
}

// Time reports the simulation clock.
func (b *Bank) Time() float64 { return b.clock }

// Count reports the number of oscillators in the bank.
func (b *Bank) Count() uint32 { return b.uniforms.OscillatorCount }

// Uniforms returns a snapshot of the uniform block the next dispatch will
// use.
func (b *Bank) Uniforms() Uniforms { return b.uniforms }

// Bindings returns the dispatch bindings: the bank's sample buffer at slot 0
// and the current uniform snapshot at slot 1.
func (b *Bank) Bindings() Bindings {
	return Bindings{Samples: b.samples, Uniforms: b.uniforms}
}

// Dispatch evaluates the kernel grid into the bank's sample buffer. The
// uniform snapshot taken at the start of the call is what every invocation
// sees; mutating the bank from invocation callbacks is not possible because
// the kernel is pure. Preconditions are validated first unless the bank was
// built with WithUncheckedDispatch.
func (b *Bank) Dispatch() error {
	if b.closed {
		return ErrBankClosed
	}
	binding := b.Bindings()
	if !b.unchecked {
		if err := binding.Validate(); err != nil {
			return err
		}
	}
	return b.exec.Dispatch(binding)
}

// Samples returns the live sample buffer. The contents are valid after a
// Dispatch returns and stay untouched until the next one.
func (b *Bank) Samples() []float32 { return b.samples }

// CopySamples copies the most recent samples into dst and reports how many
// were copied.
func (b *Bank) CopySamples(dst []float32) int {
	return copy(dst, b.samples)
}

// Close releases the bank's executor. Further dispatches return
// ErrBankClosed.
func (b *Bank) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.exec.Close()
}
