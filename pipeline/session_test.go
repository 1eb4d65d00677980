package pipeline

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clfft/device"
)

func TestCloseReleasesInOrder(t *testing.T) {
	b := device.NewMockBackend(device.DefaultMockConfig())
	s, err := Open(b, Config{}, nil)
	require.NoError(t, err)
	_, err = s.RunFFT(ones(64))
	require.NoError(t, err)

	before := len(b.Calls())
	require.NoError(t, s.Close())
	assert.Equal(t, []string{
		"clReleaseKernel",
		"clReleaseMemObject",
		"clReleaseMemObject",
		"clReleaseCommandQueue",
		"clReleaseContext",
	}, b.Calls()[before:])
	assert.Zero(t, b.Live())

	require.NoError(t, s.Close(), "close is idempotent")
	_, err = s.RunFFT(ones(8))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCloseWithoutRun(t *testing.T) {
	b := device.NewMockBackend(device.DefaultMockConfig())
	s, err := Open(b, Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Zero(t, b.Live())
}

func TestCloseAttemptsEveryRelease(t *testing.T) {
	b := device.NewMockBackend(device.DefaultMockConfig())
	s, err := Open(b, Config{}, nil)
	require.NoError(t, err)
	_, err = s.RunFFT(ones(8))
	require.NoError(t, err)

	b.FailOn("clReleaseKernel", device.StatusInvalidKernel)
	err = s.Close()
	var apiErr *device.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "clReleaseKernel", apiErr.Op)
	assert.Equal(t, 1, b.Live(), "only the kernel is left behind")
}

func TestOpenReleasesOnFailure(t *testing.T) {
	for _, op := range []string{"clCreateCommandQueue", "clCreateProgramWithSource", "clBuildProgram", "clCreateKernel"} {
		t.Run(op, func(t *testing.T) {
			b := device.NewMockBackend(device.DefaultMockConfig())
			b.FailOn(op, device.StatusOutOfResources)
			_, err := Open(b, Config{}, nil)
			require.Error(t, err)
			assert.Equal(t, device.StatusOutOfResources, device.StatusOf(err))
			assert.Zero(t, b.Live())
		})
	}
}

func TestOpenDeviceNotFound(t *testing.T) {
	b := device.NewMockBackend(device.DefaultMockConfig())
	_, err := Open(b, Config{Selector: device.Selector{Platform: "AMD"}}, nil)
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)
}

func TestOpenMissingKernelSource(t *testing.T) {
	b := device.NewMockBackend(device.DefaultMockConfig())
	_, err := Open(b, Config{KernelDir: t.TempDir()}, nil)
	require.Error(t, err)
	assert.Zero(t, b.Live())
}

func TestSessionIdentity(t *testing.T) {
	_, s := openMock(t, Config{})
	assert.Len(t, s.RunID(), 36)
	assert.Equal(t, "Mock GPU", s.Device().Name())
}

func TestRunFFTReportsFailingPass(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	b, s := openMock(t, Config{Metrics: m})
	b.FailOn("clEnqueueNDRangeKernel", device.StatusOutOfResources)

	_, err := s.RunFFT(ones(64))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueueing pass 1")
	assert.Equal(t, device.StatusOutOfResources, device.StatusOf(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("clEnqueueNDRangeKernel")))
	assert.Zero(t, testutil.ToFloat64(m.Runs))
}

func TestRunFFTRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	_, s := openMock(t, Config{Metrics: m})

	_, err := s.RunFFT(ones(64))
	require.NoError(t, err)
	_, err = s.RunFFT(ones(512))
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Runs))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Passes))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.Size))
	assert.Equal(t, 5, testutil.CollectAndCount(reg), "failures has no children yet")
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.observe(&Result{})
	m.fail(errors.New("boom"))
}
