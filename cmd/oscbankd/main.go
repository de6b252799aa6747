package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/oscbank/oscbank-go/internal/sink"
	"github.com/oscbank/oscbank-go/internal/stream"
	"github.com/oscbank/oscbank-go/pkg/oscbank"
)

func main() {
	flag.Parse()

	if *logFileFlag != "" {
		f, err := os.OpenFile(*logFileFlag, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	if *oscillatorsFlag == 0 {
		log.Fatalf("-oscillators must be at least 1")
	}
	if uint64(*oscillatorsFlag) > math.MaxUint32 {
		log.Fatalf("-oscillators %d exceeds the uniform block's 32-bit range", *oscillatorsFlag)
	}
	oscillators := uint32(*oscillatorsFlag)
	if *tapFlag >= *oscillatorsFlag {
		log.Fatalf("-tap %d out of range for %d oscillators", *tapFlag, oscillators)
	}
	if *tpsFlag <= 0 {
		log.Fatalf("-tps must be positive, got %d", *tpsFlag)
	}

	serverName := *nameFlag
	if serverName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serverName = fmt.Sprintf("%s-oscbankd", hostname)
	}

	bank, err := oscbank.NewBank(oscillators,
		oscbank.WithExecutor(newExecutor(oscillators)),
		oscbank.WithFreq(float32(*freqFlag)),
	)
	if err != nil {
		log.Fatalf("creating bank: %v", err)
	}
	defer bank.Close()

	if *recordDefaultPGO {
		stop := recordDefaultPGOProfile()
		defer stop()
	}

	srv := stream.New(stream.Config{
		Addr:        *addrFlag,
		Name:        serverName,
		Oscillators: oscillators,
	})

	var mon *sink.Monitor
	if *enableAudioFlag {
		ctx := audio.NewContext(sink.SampleRate)
		m := sink.NewMonitor()
		if player, err := ctx.NewPlayer(m); err != nil {
			log.Printf("Audio player creation failed: %v", err)
		} else {
			player.SetBufferSize(audioBufferDuration)
			player.Play()
			mon = m
			log.Printf("Audio monitor playing oscillator %d", *tapFlag)
		}
	}

	stopLoop := make(chan struct{})
	loopDone := make(chan struct{})
	go runDispatchLoop(bank, srv, mon, stopLoop, loopDone)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		srv.Stop()
	}()

	log.Printf("Starting %s: %d oscillators, %d dispatches/sec on %s",
		serverName, oscillators, *tpsFlag, *addrFlag)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	close(stopLoop)
	<-loopDone
	log.Printf("Server stopped")
}

// newExecutor picks the dispatch backend from the CLI flags.
func newExecutor(capacity uint32) oscbank.Executor {
	if *openCLFlag {
		dev, err := oscbank.NewDeviceExecutor(capacity, *verifyOpenCLSyncFlag)
		if err != nil {
			log.Printf("OpenCL initialization failed: %v (falling back to CPU workers)", err)
		} else {
			log.Printf("OpenCL executor enabled (device: %s)", dev.DeviceName())
			return dev
		}
	}
	pool := oscbank.NewParallelExecutor(*workersFlag)
	log.Printf("CPU executor enabled (%d workers)", pool.Workers())
	return pool
}

// runDispatchLoop drives the bank at the configured tick rate and fans each
// result out to monitor clients and the audio tap.
func runDispatchLoop(bank *oscbank.Bank, srv *stream.Server, mon *sink.Monitor, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	dt := 1.0 / float64(*tpsFlag)
	ticker := time.NewTicker(time.Second / time.Duration(*tpsFlag))
	defer ticker.Stop()

	paused := false
	for {
		select {
		case <-stop:
			return
		case ctrl := <-srv.Controls():
			switch ctrl.Action {
			case stream.ActionFreq:
				if args, ok := ctrl.Args.(stream.FreqArgs); ok {
					bank.SetFreq(args.Value)
					log.Printf("Frequency set to %g", args.Value)
				}
			case stream.ActionPause:
				paused = true
				log.Printf("Dispatch paused")
			case stream.ActionResume:
				paused = false
				log.Printf("Dispatch resumed")
			}
		case <-ticker.C:
			if paused {
				continue
			}
			bank.Advance(dt)
			if err := bank.Dispatch(); err != nil {
				log.Printf("Dispatch failed: %v", err)
				continue
			}
			srv.Broadcast(bank.Uniforms(), bank.Samples())
			if mon != nil {
				mon.Tap(bank.Samples()[*tapFlag])
			}
		}
	}
}
