// Package sink turns tapped oscillator samples into a playable PCM stream.
package sink

import (
	"sync"
)

const (
	// SampleRate is the playback rate expected by the audio context.
	SampleRate = 48000

	bytesPerFrame = 4
)

// Monitor holds the most recently tapped bank sample and serves it as
// signed 16-bit stereo PCM through Read. It is safe to tap from one
// goroutine while the audio player reads from another.
type Monitor struct {
	mu     sync.Mutex
	sample float32
	dc     float32
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// Tap feeds the monitor one kernel sample in [0, 1]. The value is
// recentered around zero and AC-coupled before playback.
func (m *Monitor) Tap(v float32) {
	v = v*2 - 1
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	m.mu.Lock()
	// Simple AC coupling: remove a slowly varying DC component.
	const alpha = 0.001
	m.dc += alpha * (v - m.dc)
	m.sample = v - m.dc
	m.mu.Unlock()
}

func (m *Monitor) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	// Ensure we generate whole stereo frames (4 bytes per frame).
	frameBytes := len(p) - len(p)%bytesPerFrame
	if frameBytes == 0 {
		return 0, nil
	}
	m.mu.Lock()
	sample := m.sample
	m.mu.Unlock()

	for i := 0; i < frameBytes; i += bytesPerFrame {
		v := int16(sample * 32767)
		p[i] = byte(v)
		p[i+1] = byte(v >> 8)
		p[i+2] = p[i]
		p[i+3] = p[i+1]
	}
	return frameBytes, nil
}

func (m *Monitor) Close() error {
	return nil
}
