//go:build !opencl

package oscbank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceExecutorUnavailableWithoutTag(t *testing.T) {
	exec, err := NewDeviceExecutor(16, false)
	assert.Nil(t, exec)
	assert.ErrorIs(t, err, ErrOpenCLUnavailable)
}
