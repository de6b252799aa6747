package oscbank

import "math"

// SampleAt computes the oscillator sample for a single invocation index:
//
//	phase  = time + (index * freq) / count
//	sample = sin(phase) * 0.5 + 0.5
//
// All arithmetic is float32 and evaluated in exactly that order (multiply,
// then divide, then add), so every executor produces bit-identical samples
// for the same inputs. With count == 1 the index term is zero divided by one
// and the phase equals the time exactly.
//
// SampleAt never validates its inputs. A zero OscillatorCount divides by
// zero and the resulting NaN or Inf phase propagates into the sample.
func SampleAt(index uint32, u Uniforms) float32 {
	phase := u.Time + (float32(index)*u.Freq)/float32(u.OscillatorCount)
	return float32(math.Sin(float64(phase)))*0.5 + 0.5
}

// Execute runs one invocation: it computes the sample for index and stores
// it at samples[index]. Each invocation writes exactly one slot and reads
// none, so any set of invocations with distinct indices can run in any order
// or fully in parallel.
func Execute(index uint32, u Uniforms, samples []float32) {
	samples[index] = SampleAt(index, u)
}
