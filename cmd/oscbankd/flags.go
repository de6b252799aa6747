package main

import "flag"

// Command-line flags that control the oscillator bank, the monitor server,
// and optional runtime behavior.
var (
	// oscillatorsFlag sets the number of oscillators in the bank.
	oscillatorsFlag = flag.Uint("oscillators", defaultOscillators, "number of oscillators in the bank")

	// freqFlag sets the initial frequency spread across the bank.
	freqFlag = flag.Float64("freq", defaultFreq, "initial frequency spread across the bank")

	// tpsFlag sets how many kernel dispatches run per second.
	tpsFlag = flag.Int("tps", defaultTicksPerSec, "kernel dispatches per second")

	// addrFlag sets the monitor WebSocket listen address.
	addrFlag = flag.String("addr", defaultAddr, "monitor WebSocket listen address")

	// nameFlag overrides the server name announced to monitor clients.
	nameFlag = flag.String("name", "", "server name announced to monitor clients (default: hostname-oscbankd)")

	// workersFlag sets the CPU dispatch worker count.
	workersFlag = flag.Int("workers", 0, "CPU worker goroutines for dispatch (0 = all cores)")

	// openCLFlag moves dispatch onto an OpenCL device.
	openCLFlag = flag.Bool("opencl", false, "dispatch on an OpenCL device (requires the opencl build tag)")

	verifyOpenCLSyncFlag = flag.Bool("verify-opencl-sync", false, "compare device samples against the host kernel after every dispatch")

	// enableAudioFlag toggles audio playback of one tapped oscillator.
	enableAudioFlag = flag.Bool("enable-audio", false, "enable audio output from the tapped oscillator")

	// tapFlag selects which oscillator slot feeds the audio monitor.
	tapFlag = flag.Uint("tap", 0, "oscillator slot fed to the audio monitor")

	// recordDefaultPGO captures a CPU profile into default.pgo after startup.
	recordDefaultPGO = flag.Bool("record-default-pgo", false, "run for 15s while capturing default.pgo")

	// logFileFlag mirrors log output into a file when set.
	logFileFlag = flag.String("log-file", "", "mirror logs into this file")
)
