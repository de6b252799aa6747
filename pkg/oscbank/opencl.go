//go:build opencl

package oscbank

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// deviceVerifyTolerance bounds the accepted host/device difference in verify
// mode. The device evaluates sin in float32 hardware while the host rounds a
// float64 sin, so the last few bits differ legitimately.
const deviceVerifyTolerance = 1e-4

const oscKernelSource = `__kernel void osc_bank(
    __global float* samples,
    const float time,
    const float freq,
    const int count)
{
    int idx = get_global_id(0);
    if (idx >= count) {
        return;
    }
    float phase = time + ((float)idx * freq) / (float)count;
    samples[idx] = sin(phase) * 0.5f + 0.5f;
}`

// DeviceExecutor evaluates dispatches on an OpenCL device. The device-side
// sample buffer is allocated once at the executor's capacity; dispatches may
// use any oscillator count up to that capacity.
type DeviceExecutor struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	sampleBuf  *cl.MemObject
	capacity   int
	deviceName string
	verify     bool
	scratch    []float32
}

// NewDeviceExecutor picks an OpenCL device (GPU first, CPU fallback), builds
// the oscillator kernel, and allocates a device buffer for up to capacity
// samples. With verify set, every dispatch is recomputed on the host and
// compared against the device results.
func NewDeviceExecutor(capacity uint32, verify bool) (*DeviceExecutor, error) {
	if capacity == 0 {
		return nil, errors.New("oscbank: device buffer capacity is zero")
	}
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	var device *cl.Device
	for _, p := range platforms {
		devices, derr := p.GetDevices(cl.DeviceTypeGPU)
		if derr != nil && derr != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			device = devices[0]
			break
		}
	}
	if device == nil {
		for _, p := range platforms {
			devices, derr := p.GetDevices(cl.DeviceTypeCPU)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				device = devices[0]
				break
			}
		}
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		context.Release()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	program, err := context.CreateProgramWithSource([]string{oscKernelSource})
	if err != nil {
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		program.Release()
		queue.Release()
		context.Release()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	kernel, err := program.CreateKernel("osc_bank")
	if err != nil {
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	byteSize := int(capacity) * int(unsafe.Sizeof(float32(0)))
	sampleBuf, err := context.CreateEmptyBuffer(cl.MemWriteOnly, byteSize)
	if err != nil {
		kernel.Release()
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("allocating sample buffer: %w", err)
	}

	return &DeviceExecutor{
		context:    context,
		queue:      queue,
		program:    program,
		kernel:     kernel,
		sampleBuf:  sampleBuf,
		capacity:   int(capacity),
		deviceName: device.Name(),
		verify:     verify,
	}, nil
}

// Dispatch runs the kernel grid on the device and reads the samples back
// into the binding's buffer. The read is blocking, so the buffer is complete
// when Dispatch returns.
func (e *DeviceExecutor) Dispatch(b Bindings) error {
	if e.kernel == nil {
		return ErrExecutorClosed
	}
	count := int(b.Uniforms.OscillatorCount)
	if count == 0 {
		return nil
	}
	if count > e.capacity {
		return fmt.Errorf("oscillator count %d exceeds device buffer capacity %d", count, e.capacity)
	}
	if err := e.kernel.SetArgs(
		e.sampleBuf,
		b.Uniforms.Time,
		b.Uniforms.Freq,
		int32(b.Uniforms.OscillatorCount),
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	global := []int{count}
	if _, err := e.queue.EnqueueNDRangeKernel(e.kernel, nil, global, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := e.queue.EnqueueReadBufferFloat32(e.sampleBuf, true, 0, b.Samples[:count], nil); err != nil {
		return fmt.Errorf("reading sample buffer: %w", err)
	}
	if e.verify {
		if err := e.verifySamples(b, count); err != nil {
			return err
		}
	}
	return nil
}

// verifySamples recomputes the dispatch on the host and compares it against
// the device results within deviceVerifyTolerance.
func (e *DeviceExecutor) verifySamples(b Bindings, count int) error {
	scratch := e.ensureScratch(count)
	for i := 0; i < count; i++ {
		scratch[i] = SampleAt(uint32(i), b.Uniforms)
	}
	for i, hv := range scratch {
		if diff := math.Abs(float64(b.Samples[i] - hv)); diff > deviceVerifyTolerance {
			return fmt.Errorf("sample mismatch at index %d: device=%f host=%f diff=%f", i, b.Samples[i], hv, diff)
		}
	}
	return nil
}

func (e *DeviceExecutor) ensureScratch(size int) []float32 {
	if cap(e.scratch) < size {
		e.scratch = make([]float32, size)
	}
	e.scratch = e.scratch[:size]
	return e.scratch
}

// Close releases every OpenCL object the executor holds.
func (e *DeviceExecutor) Close() error {
	if e.sampleBuf != nil {
		e.sampleBuf.Release()
		e.sampleBuf = nil
	}
	if e.kernel != nil {
		e.kernel.Release()
		e.kernel = nil
	}
	if e.program != nil {
		e.program.Release()
		e.program = nil
	}
	if e.queue != nil {
		e.queue.Release()
		e.queue = nil
	}
	if e.context != nil {
		e.context.Release()
		e.context = nil
	}
	return nil
}

// DeviceName reports the OpenCL device the executor was built on.
func (e *DeviceExecutor) DeviceName() string {
	return e.deviceName
}
