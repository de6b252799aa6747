package oscbank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformsBinaryLayout(t *testing.T) {
	u := Uniforms{Time: 1.5, Freq: 2.0, OscillatorCount: 3}
	// 1.5 is 0x3FC00000 and 2.0 is 0x40000000 as float32, little-endian on
	// the wire, with the count in the last four bytes.
	want := []byte{
		0x00, 0x00, 0xC0, 0x3F,
		0x00, 0x00, 0x00, 0x40,
		0x03, 0x00, 0x00, 0x00,
	}

	got, err := u.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, got, UniformsSize)
}

func TestUniformsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		u    Uniforms
	}{
		{"zero value", Uniforms{}},
		{"typical", Uniforms{Time: 10.25, Freq: 0.5, OscillatorCount: 128}},
		{"negative fields", Uniforms{Time: -1.75, Freq: -3, OscillatorCount: 1}},
		{"max count", Uniforms{Time: 1, Freq: 1, OscillatorCount: 1<<32 - 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.u.MarshalBinary()
			require.NoError(t, err)

			var decoded Uniforms
			require.NoError(t, decoded.UnmarshalBinary(data))
			assert.Equal(t, tt.u, decoded)
		})
	}
}

func TestUniformsUnmarshalRejectsWrongSize(t *testing.T) {
	var u Uniforms
	assert.Error(t, u.UnmarshalBinary(make([]byte, UniformsSize-1)))
	assert.Error(t, u.UnmarshalBinary(make([]byte, UniformsSize+1)))
	assert.Error(t, u.UnmarshalBinary(nil))
}

func TestUniformsPutBinaryLeavesTailAlone(t *testing.T) {
	u := Uniforms{Time: 1, Freq: 1, OscillatorCount: 1}
	dst := make([]byte, UniformsSize+4)
	for i := range dst {
		dst[i] = 0xAA
	}

	u.PutBinary(dst)

	for i := UniformsSize; i < len(dst); i++ {
		require.Equal(t, byte(0xAA), dst[i], "byte %d past the block must stay untouched", i)
	}
}
