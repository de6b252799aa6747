package main

import (
	"log"
	"os"
	"runtime/pprof"
	"sync"
	"time"
)

// startDefaultPGORecording begins writing CPU profiles to the provided path.
func startDefaultPGORecording(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}
	var once sync.Once
	stop := func() {
		once.Do(func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		})
	}
	return stop, nil
}

// recordDefaultPGOProfile captures pgoRecordDuration of CPU profile into
// default.pgo. The returned cleanup finishes the profile early on shutdown.
func recordDefaultPGOProfile() func() {
	stop, err := startDefaultPGORecording("default.pgo")
	if err != nil {
		log.Printf("PGO recording failed: %v", err)
		return func() {}
	}
	log.Printf("Recording default.pgo for %v", pgoRecordDuration)
	timer := time.AfterFunc(pgoRecordDuration, func() {
		stop()
		log.Printf("default.pgo recording complete")
	})
	return func() {
		timer.Stop()
		stop()
	}
}
