package oscbank

import (
	"encoding/binary"
	"fmt"
	"math"
)

// UniformsSize is the exact byte length of a packed uniform block.
const UniformsSize = 12

// Field offsets inside the packed uniform block.
const (
	uniformTimeOffset  = 0
	uniformFreqOffset  = 4
	uniformCountOffset = 8
)

// Uniforms is the parameter block shared by every invocation of a dispatch.
// Its packed form is fixed at 12 bytes with no padding: Time at offset 0,
// Freq at offset 4, OscillatorCount at offset 8, all little-endian. The same
// layout is used on the wire and mirrors the device kernel's argument order.
type Uniforms struct {
	// Time is the global phase offset, typically seconds of simulation time.
	Time float32

	// Freq controls how far apart the oscillators are spread in phase.
	Freq float32

	// OscillatorCount is the number of oscillators, which is also the
	// dispatch grid size.
	OscillatorCount uint32
}

// PutBinary packs u into dst[:UniformsSize]. dst must hold at least
// UniformsSize bytes; shorter slices panic like any out-of-range write.
func (u Uniforms) PutBinary(dst []byte) {
	binary.LittleEndian.PutUint32(dst[uniformTimeOffset:], math.Float32bits(u.Time))
	binary.LittleEndian.PutUint32(dst[uniformFreqOffset:], math.Float32bits(u.Freq))
	binary.LittleEndian.PutUint32(dst[uniformCountOffset:], u.OscillatorCount)
}

// MarshalBinary returns the packed 12-byte uniform block.
func (u Uniforms) MarshalBinary() ([]byte, error) {
	buf := make([]byte, UniformsSize)
	u.PutBinary(buf)
	return buf, nil
}

// UnmarshalBinary decodes a packed uniform block. The input must be exactly
// UniformsSize bytes; the block has a fixed layout and is never truncated or
// extended on the wire.
func (u *Uniforms) UnmarshalBinary(data []byte) error {
	if len(data) != UniformsSize {
		return fmt.Errorf("decoding uniform block: got %d bytes, want %d", len(data), UniformsSize)
	}
	u.Time = math.Float32frombits(binary.LittleEndian.Uint32(data[uniformTimeOffset:]))
	u.Freq = math.Float32frombits(binary.LittleEndian.Uint32(data[uniformFreqOffset:]))
	u.OscillatorCount = binary.LittleEndian.Uint32(data[uniformCountOffset:])
	return nil
}
