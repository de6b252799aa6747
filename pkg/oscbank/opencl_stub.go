//go:build !opencl

package oscbank

import "errors"

// ErrOpenCLUnavailable reports a binary built without the opencl tag.
var ErrOpenCLUnavailable = errors.New("oscbank: OpenCL support is not enabled; rebuild with -tags opencl")

// DeviceExecutor is unavailable without the opencl build tag.
type DeviceExecutor struct{}

func NewDeviceExecutor(capacity uint32, verify bool) (*DeviceExecutor, error) {
	return nil, ErrOpenCLUnavailable
}

func (e *DeviceExecutor) Dispatch(b Bindings) error { return ErrOpenCLUnavailable }

func (e *DeviceExecutor) Close() error { return nil }

func (e *DeviceExecutor) DeviceName() string { return "" }
