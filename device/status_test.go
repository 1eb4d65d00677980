package device

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "device not found", StatusDeviceNotFound.String())
	assert.Equal(t, "build program failure", StatusBuildProgramFailure.String())
	assert.Equal(t, "invalid work group size", StatusInvalidWorkGroupSize.String())
	assert.Equal(t, "invalid/unknown error code", Status(-424242).String())
	assert.Equal(t, "invalid/unknown error code", StatusUnknown.String())
}

func TestStatusOf(t *testing.T) {
	apiErr := &APIError{Op: "clFinish", Status: StatusOutOfResources}
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusOutOfResources, StatusOf(apiErr))
	assert.Equal(t, StatusOutOfResources, StatusOf(fmt.Errorf("waiting: %w", apiErr)))
	assert.Equal(t, StatusBuildProgramFailure, StatusOf(&BuildError{Kernel: "k"}))
	assert.Equal(t, StatusInvalidBuildOptions, StatusOf(fmt.Errorf("building: %w", &BuildError{Code: StatusInvalidBuildOptions})))
	assert.Equal(t, StatusDeviceNotFound, StatusOf(fmt.Errorf("resolving: %w", ErrDeviceNotFound)))
	assert.Equal(t, StatusUnknown, StatusOf(errors.New("disk on fire")))
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Op: "clCreateBuffer", Status: StatusInvalidBufferSize}
	assert.Equal(t, "clCreateBuffer failed with code -61: invalid buffer size", err.Error())

	wrapped := &APIError{Op: "clCreateContext", Status: StatusUnknown, Err: errors.New("driver")}
	assert.Contains(t, wrapped.Error(), "(driver)")
	assert.ErrorIs(t, wrapped, wrapped.Err)
}
