package oscbank

// Binding slots of the kernel interface. Slot 0 is the writable sample
// buffer, slot 1 the packed uniform block.
const (
	SlotSamples  = 0
	SlotUniforms = 1
)

// Bindings gathers everything one dispatch touches: the output sample buffer
// and the uniform block shared by all invocations. The uniforms are a value,
// not a pointer, so they cannot change mid-dispatch.
type Bindings struct {
	Samples  []float32
	Uniforms Uniforms
}

// Validate checks the host-side dispatch preconditions: a non-zero
// oscillator count and a sample buffer with room for one sample per
// oscillator. Executors never run this themselves; Bank calls it before
// every dispatch unless configured unchecked.
func (b Bindings) Validate() error {
	if b.Uniforms.OscillatorCount == 0 {
		return ErrNoOscillators
	}
	if uint64(len(b.Samples)) < uint64(b.Uniforms.OscillatorCount) {
		return ErrShortBuffer
	}
	return nil
}
