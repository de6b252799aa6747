package stream

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/oscbank/oscbank-go/pkg/oscbank"
)

// Frame type bytes of the binary monitor protocol.
const (
	// FrameFloat32 carries the full-precision sample bank.
	FrameFloat32 byte = 0x01

	// FrameFloat16 carries the bank rounded to binary16, halving the payload.
	FrameFloat16 byte = 0x02
)

// frameHeaderSize is the type byte plus the packed uniform block.
const frameHeaderSize = 1 + oscbank.UniformsSize

// Frame is one decoded monitor message: the uniform block the dispatch ran
// with and the sample bank it produced.
type Frame struct {
	Type     byte
	Uniforms oscbank.Uniforms
	Samples  []float32
}

// EncodeFrame packs a dispatch result into a binary monitor message:
//
//	[1 byte type][12 byte uniform block][payload]
//
// The payload is one value per sample, little-endian: 4 bytes each for
// FrameFloat32, 2 bytes of binary16 for FrameFloat16.
func EncodeFrame(frameType byte, u oscbank.Uniforms, samples []float32) ([]byte, error) {
	switch frameType {
	case FrameFloat32:
		frame := make([]byte, frameHeaderSize+4*len(samples))
		frame[0] = frameType
		u.PutBinary(frame[1:frameHeaderSize])
		for i, s := range samples {
			binary.LittleEndian.PutUint32(frame[frameHeaderSize+4*i:], math.Float32bits(s))
		}
		return frame, nil
	case FrameFloat16:
		frame := make([]byte, frameHeaderSize+2*len(samples))
		frame[0] = frameType
		u.PutBinary(frame[1:frameHeaderSize])
		for i, s := range samples {
			binary.LittleEndian.PutUint16(frame[frameHeaderSize+2*i:], halfBits(s))
		}
		return frame, nil
	default:
		return nil, fmt.Errorf("encoding frame: unknown frame type 0x%02x", frameType)
	}
}

// DecodeFrame parses a binary monitor message. The payload length must match
// the oscillator count carried in the uniform block.
func DecodeFrame(data []byte) (Frame, error) {
	if len(data) < frameHeaderSize {
		return Frame{}, fmt.Errorf("decoding frame: %d bytes is shorter than the %d byte header", len(data), frameHeaderSize)
	}
	var frame Frame
	frame.Type = data[0]
	if err := frame.Uniforms.UnmarshalBinary(data[1:frameHeaderSize]); err != nil {
		return Frame{}, err
	}
	payload := data[frameHeaderSize:]
	count := int(frame.Uniforms.OscillatorCount)

	switch frame.Type {
	case FrameFloat32:
		if len(payload) != 4*count {
			return Frame{}, fmt.Errorf("decoding frame: %d payload bytes for %d float32 samples", len(payload), count)
		}
		frame.Samples = make([]float32, count)
		for i := range frame.Samples {
			frame.Samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:]))
		}
	case FrameFloat16:
		if len(payload) != 2*count {
			return Frame{}, fmt.Errorf("decoding frame: %d payload bytes for %d binary16 samples", len(payload), count)
		}
		frame.Samples = make([]float32, count)
		for i := range frame.Samples {
			frame.Samples[i] = halfFloat32(binary.LittleEndian.Uint16(payload[2*i:]))
		}
	default:
		return Frame{}, fmt.Errorf("decoding frame: unknown frame type 0x%02x", frame.Type)
	}
	return frame, nil
}
