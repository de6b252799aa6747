package oscbank

import (
	"runtime"
	"sync"
)

// indexSpan is a half-open invocation index range assigned to one worker.
type indexSpan struct{ start, end int }

// ParallelExecutor evaluates dispatches on a pool of long-lived worker
// goroutines. Each dispatch splits the index range into one contiguous span
// per worker; spans never overlap, so workers write disjoint slices of the
// sample buffer and need no per-slot synchronization.
//
// Dispatch blocks until every worker has finished its span. A
// ParallelExecutor serializes its own dispatches internally, but results are
// only meaningful if the sample buffer is not mutated concurrently.
type ParallelExecutor struct {
	// dispatchMu admits one dispatch step at a time; a step's binding,
	// spans, and pending countdown stay untouched until it completes.
	dispatchMu sync.Mutex

	mu      sync.Mutex
	cond    *sync.Cond
	step    int
	pending int
	spans   []indexSpan
	binding Bindings
	workers int
	closed  bool
}

// NewParallelExecutor starts an executor backed by the given number of
// worker goroutines. A count below 1 falls back to runtime.NumCPU.
func NewParallelExecutor(workers int) *ParallelExecutor {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	e := &ParallelExecutor{
		workers: workers,
		spans:   make([]indexSpan, workers),
	}
	e.cond = sync.NewCond(&e.mu)
	for i := 0; i < workers; i++ {
		go e.workerLoop(i)
	}
	return e
}

// Workers reports the size of the pool.
func (e *ParallelExecutor) Workers() int { return e.workers }

// Dispatch splits the invocation grid across the pool and blocks until all
// spans are done. Concurrent callers serialize: a dispatch only starts once
// the previous one has fully populated its buffer.
func (e *ParallelExecutor) Dispatch(b Bindings) error {
	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrExecutorClosed
	}
	e.binding = b
	assignSpans(e.spans, int(b.Uniforms.OscillatorCount))
	e.pending = e.workers
	e.step++
	e.cond.Broadcast()
	for e.pending > 0 && !e.closed {
		e.cond.Wait()
	}
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrExecutorClosed
	}
	return nil
}

// Close releases the worker goroutines. Dispatches in flight return
// ErrExecutorClosed; calling Close again is a no-op.
func (e *ParallelExecutor) Close() error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		e.pending = 0
		e.cond.Broadcast()
	}
	e.mu.Unlock()
	return nil
}

// workerLoop waits for a dispatch step, evaluates the worker's span, and
// reports completion. The loop exits once the executor is closed.
func (e *ParallelExecutor) workerLoop(index int) {
	lastStep := 0
	e.mu.Lock()
	for {
		for e.step == lastStep && !e.closed {
			e.cond.Wait()
		}
		if e.closed {
			e.mu.Unlock()
			return
		}
		lastStep = e.step
		span := e.spans[index]
		binding := e.binding
		e.mu.Unlock()

		if span.end > span.start {
			processSpan(binding, span)
		}

		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return
		}
		e.pending--
		if e.pending == 0 {
			e.cond.Broadcast()
		}
	}
}

// processSpan evaluates the kernel over one contiguous index span.
func processSpan(b Bindings, sp indexSpan) {
	samples := b.Samples
	u := b.Uniforms

	i := sp.start
	for ; i+3 < sp.end; i += 4 {
		samples[i] = SampleAt(uint32(i), u)

		i1 := i + 1
		samples[i1] = SampleAt(uint32(i1), u)

		i2 := i + 2
		samples[i2] = SampleAt(uint32(i2), u)

		i3 := i + 3
		samples[i3] = SampleAt(uint32(i3), u)
	}
	for ; i < sp.end; i++ {
		samples[i] = SampleAt(uint32(i), u)
	}
}

// assignSpans splits the invocation range [0, count) into one contiguous
// span per worker. The remainder spreads over the leading workers, so no two
// spans differ in size by more than one.
func assignSpans(spans []indexSpan, count int) {
	workers := len(spans)
	if workers < 1 {
		return
	}
	per := count / workers
	extra := count % workers
	start := 0
	for i := range spans {
		n := per
		if i < extra {
			n++
		}
		spans[i] = indexSpan{start: start, end: start + n}
		start += n
	}
}
