package device

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceNotFound is returned when no device matches the selector.
	ErrDeviceNotFound = errors.New("clfft/device: specified device not found")

	// ErrNoBackend is returned when a backend name is not compiled in.
	ErrNoBackend = errors.New("clfft/device: backend unavailable")

	// ErrReleased is returned when a handle is used after it was released.
	ErrReleased = errors.New("clfft/device: handle already released")
)

// APIError reports a failed device API call together with its decoded status.
type APIError struct {
	Op     string
	Status Status
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed with code %d: %s (%v)", e.Op, int32(e.Status), e.Status, e.Err)
	}
	return fmt.Sprintf("%s failed with code %d: %s", e.Op, int32(e.Status), e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// BuildError carries the compiler log of a failed program build. Code is the
// status the build returned.
type BuildError struct {
	Kernel string
	Device string
	Code   Status
	Log    string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build of '%s' on '%s' failed:\n%s\n*** (end of error)", e.Kernel, e.Device, e.Log)
}

// Status reports the build status, StatusBuildProgramFailure when unset.
func (e *BuildError) Status() Status {
	if e.Code == StatusSuccess {
		return StatusBuildProgramFailure
	}
	return e.Code
}

func newAPIError(op string, status Status, err error) error {
	return &APIError{Op: op, Status: status, Err: err}
}

// StatusOf extracts the device status carried by err, StatusSuccess for nil
// and StatusUnknown when the chain holds no status.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return buildErr.Status()
	}
	if errors.Is(err, ErrDeviceNotFound) {
		return StatusDeviceNotFound
	}
	return StatusUnknown
}
