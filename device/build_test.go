package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clfft/kernels"
)

func resolveDefault(t *testing.T) (*MockBackend, *Target) {
	t.Helper()
	b := NewMockBackend(DefaultMockConfig())
	target, err := Resolve(b, Selector{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = target.Release() })
	return b, target
}

func TestBuildReturnsKernelAndReleasesProgram(t *testing.T) {
	b, target := resolveDefault(t)
	source, err := kernels.Load("", kernels.Radix8)
	require.NoError(t, err)

	kernel, err := Build(target.Context, source, kernels.Radix8, "-cl-fast-relaxed-math", nil)
	require.NoError(t, err)
	assert.Equal(t, kernels.Radix8, kernel.Name())
	assert.Contains(t, b.Calls(), "clReleaseProgram")
	assert.Equal(t, 3, b.Live(), "context, queue and kernel stay live")

	require.NoError(t, kernel.Release())
	assert.Equal(t, 2, b.Live())
}

func TestBuildFailureCarriesLogKernelAndDevice(t *testing.T) {
	b, target := resolveDefault(t)
	broken := "__kernel void fft_radix8(__global float2* in {\n    int i = get_global_id(0);\n"

	_, err := Build(target.Context, broken, kernels.Radix8, "", nil)
	require.Error(t, err)

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, kernels.Radix8, buildErr.Kernel)
	assert.Equal(t, "Mock GPU", buildErr.Device)
	assert.Contains(t, buildErr.Log, "unmatched '('")
	assert.Equal(t, StatusBuildProgramFailure, buildErr.Code)
	assert.Contains(t, err.Error(), "build of 'fft_radix8' on 'Mock GPU' failed")
	assert.Equal(t, StatusBuildProgramFailure, StatusOf(err))
	assert.Contains(t, b.Calls(), "clGetProgramBuildInfo")
	assert.Equal(t, 2, b.Live(), "program must be released after a failed build")
}

func TestBuildFailureWithoutKernelDeclaration(t *testing.T) {
	_, target := resolveDefault(t)
	_, err := Build(target.Context, "float2 helper(float2 a) { return a; }", "helper", "", nil)
	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Contains(t, buildErr.Log, "no __kernel function defined")
}

func TestBuildMissingEntryPoint(t *testing.T) {
	b, target := resolveDefault(t)
	source, err := kernels.Load("", kernels.Radix8)
	require.NoError(t, err)

	_, err = Build(target.Context, source, "fft_radix4", "", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "clCreateKernel", apiErr.Op)
	assert.Equal(t, StatusInvalidKernelName, apiErr.Status)
	assert.Equal(t, 2, b.Live())
}

func TestBuildInvalidOptionsCarriesLog(t *testing.T) {
	b, target := resolveDefault(t)
	source, err := kernels.Load("", kernels.Radix8)
	require.NoError(t, err)

	_, err = Build(target.Context, source, kernels.Radix8, "fast-math", nil)
	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, kernels.Radix8, buildErr.Kernel)
	assert.Equal(t, "Mock GPU", buildErr.Device)
	assert.Equal(t, StatusInvalidBuildOptions, buildErr.Code)
	assert.Contains(t, buildErr.Log, "unrecognized build option 'fast-math'")
	assert.Equal(t, StatusInvalidBuildOptions, StatusOf(err))
	assert.Contains(t, b.Calls(), "clGetProgramBuildInfo")
	assert.Equal(t, 2, b.Live())
}

func TestBuildAnyFailingStatusFetchesLog(t *testing.T) {
	for _, status := range []Status{StatusInvalidBuildOptions, StatusOutOfResources, StatusCompilerNotAvailable} {
		t.Run(status.String(), func(t *testing.T) {
			b, target := resolveDefault(t)
			b.FailOn("clBuildProgram", status)
			source, err := kernels.Load("", kernels.Radix8)
			require.NoError(t, err)

			_, err = Build(target.Context, source, kernels.Radix8, "", nil)
			var buildErr *BuildError
			require.True(t, errors.As(err, &buildErr))
			assert.Equal(t, status, buildErr.Code)
			assert.Equal(t, status, StatusOf(err))
			assert.Equal(t, "Mock GPU", buildErr.Device)
			assert.Contains(t, err.Error(), "build of 'fft_radix8' on 'Mock GPU' failed")
			assert.Contains(t, b.Calls(), "clGetProgramBuildInfo")
			assert.Equal(t, 2, b.Live())
		})
	}
}

func TestBuildProgramCreationFailure(t *testing.T) {
	b, target := resolveDefault(t)
	b.FailOn("clCreateProgramWithSource", StatusOutOfHostMemory)
	_, err := Build(target.Context, "__kernel void k() {}", "k", "", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "clCreateProgramWithSource", apiErr.Op)
}
