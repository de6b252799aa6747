package main

import "time"

// Tuning defaults for the demo host. The sizing knobs can be overridden
// from the command line.
const (
	defaultOscillators  = 256
	defaultFreq         = 1.0
	defaultTicksPerSec  = 60
	defaultAddr         = ":8780"
	pgoRecordDuration   = 15 * time.Second
	audioBufferDuration = 80 * time.Millisecond
)
