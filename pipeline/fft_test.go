package pipeline

import (
	"math"
	"math/cmplx"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clfft/device"
)

func openMock(t *testing.T, cfg Config) (*device.MockBackend, *Session) {
	t.Helper()
	b := device.NewMockBackend(device.DefaultMockConfig())
	s, err := Open(b, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return b, s
}

func ones(n int) []complex64 {
	x := make([]complex64, n)
	for i := range x {
		x[i] = complex(1, 1)
	}
	return x
}

func TestLog2(t *testing.T) {
	for n, want := range map[int]int{1: 0, 2: 1, 8: 3, 1024: 10, 1 << 21: 21} {
		got, err := Log2(n)
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
	for _, n := range []int{0, -8, 3, 12, 1000} {
		_, err := Log2(n)
		assert.ErrorIs(t, err, ErrInvalidLength, "n=%d", n)
	}
}

func TestLog2RejectsThreadCountOverflow(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("needs 64-bit int")
	}
	shift := 34
	_, err := Log2(1 << shift)
	assert.ErrorIs(t, err, ErrInvalidLength)
	_, err = PlanPasses(1 << shift)
	assert.ErrorIs(t, err, ErrInvalidLength)

	got, err := Log2(1 << (shift - 1))
	require.NoError(t, err)
	assert.Equal(t, 33, got, "n/8 == 2^30 still fits int32")
}

func TestPlanPasses(t *testing.T) {
	tests := []struct {
		n      int
		blocks []int
	}{
		{1, nil},
		{4, nil},
		{8, []int{1}},
		{16, []int{1}},
		{64, []int{1, 8}},
		{4096, []int{1, 8, 64, 512}},
	}
	for _, tt := range tests {
		passes, err := PlanPasses(tt.n)
		require.NoError(t, err)
		require.Len(t, passes, len(tt.blocks), "n=%d", tt.n)
		for i, p := range passes {
			assert.Equal(t, i+1, p.Pass)
			assert.Equal(t, tt.blocks[i], p.BlockSize)
			assert.Equal(t, tt.n/8, p.ThreadCount)
		}
	}
}

func TestGFLOPS(t *testing.T) {
	assert.Zero(t, GFLOPS(1024, 10, 0))
	assert.InDelta(t, 5*1024*10/1e-3/1e9, GFLOPS(1024, 10, time.Millisecond), 1e-9)
}

func TestRunFFTConstantInput(t *testing.T) {
	for _, n := range []int{8, 64, 512, 4096} {
		_, s := openMock(t, Config{})
		res, err := s.RunFFT(ones(n))
		require.NoError(t, err)
		require.Len(t, res.Output, n)

		dc := res.Output[0]
		assert.InDelta(t, float64(n), real(dc), 1e-3*float64(n), "n=%d", n)
		assert.InDelta(t, float64(n), imag(dc), 1e-3*float64(n), "n=%d", n)
		assert.InDelta(t, float64(n)*math.Sqrt2, cmplx.Abs(complex128(dc)), 1e-3*float64(n))
		for k := 1; k < n; k++ {
			require.Less(t, cmplx.Abs(complex128(res.Output[k])), 1e-3*float64(n), "n=%d bin %d", n, k)
		}
		assert.GreaterOrEqual(t, res.GFLOPS, 0.0)
	}
}

func TestRunFFTSingleRadix8Block(t *testing.T) {
	_, s := openMock(t, Config{})
	res, err := s.RunFFT(ones(8))
	require.NoError(t, err)
	assert.InDelta(t, 8, real(res.Output[0]), 1e-5)
	assert.InDelta(t, 8, imag(res.Output[0]), 1e-5)
	assert.Equal(t, 1, res.ResultSlot)
}

func TestRunFFTMatchesDFT(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := 512
	x := make([]complex64, n)
	for i := range x {
		x[i] = complex(rng.Float32()*2-1, rng.Float32()*2-1)
	}
	_, s := openMock(t, Config{})
	res, err := s.RunFFT(x)
	require.NoError(t, err)
	for k := 0; k < n; k++ {
		var want complex128
		for j, v := range x {
			want += complex128(v) * cmplx.Exp(complex(0, -2*math.Pi*float64(j*k)/float64(n)))
		}
		require.Less(t, cmplx.Abs(want-complex128(res.Output[k])), 1e-2, "bin %d", k)
	}
}

func TestRunFFTShortInputIsReturnedUnchanged(t *testing.T) {
	_, s := openMock(t, Config{})
	for _, n := range []int{1, 2, 4} {
		x := make([]complex64, n)
		for i := range x {
			x[i] = complex(float32(i), -float32(i))
		}
		res, err := s.RunFFT(x)
		require.NoError(t, err)
		assert.Empty(t, res.Passes)
		assert.Equal(t, 0, res.ResultSlot)
		assert.Equal(t, x, res.Output)
	}
}

// The buffer read back holds the output role exactly when an odd number of
// passes ran.
func TestResultSlotFollowsPassParity(t *testing.T) {
	_, s := openMock(t, Config{})
	for _, n := range []int{1, 8, 64, 512, 4096, 32768} {
		res, err := s.RunFFT(ones(n))
		require.NoError(t, err)
		assert.Equal(t, len(res.Passes)%2, res.ResultSlot, "n=%d", n)
	}
}

func TestRunFFTStrictRejectsResidualBits(t *testing.T) {
	_, strict := openMock(t, Config{Strict: true})
	_, err := strict.RunFFT(ones(16))
	assert.ErrorIs(t, err, ErrUnsupportedLength)

	_, lenient := openMock(t, Config{})
	res, err := lenient.RunFFT(ones(16))
	require.NoError(t, err)
	assert.Len(t, res.Passes, 1)
}

func TestRunFFTInvalidLength(t *testing.T) {
	_, s := openMock(t, Config{})
	_, err := s.RunFFT(make([]complex64, 24))
	assert.ErrorIs(t, err, ErrInvalidLength)
	_, err = s.RunFFT(nil)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestRunFFTClampsLocalSize(t *testing.T) {
	cfg := device.DefaultMockConfig()
	cfg.Platforms[0].Devices[0].MaxWorkGroupSize = 64
	b := device.NewMockBackend(cfg)

	s, err := Open(b, Config{LocalWorkSize: 128}, nil)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.RunFFT(ones(4096))
	assert.Equal(t, device.StatusInvalidWorkGroupSize, device.StatusOf(err))

	s2, err := Open(b, Config{LocalWorkSize: 64}, nil)
	require.NoError(t, err)
	defer s2.Close()
	_, err = s2.RunFFT(ones(4096))
	assert.NoError(t, err)
}

func TestRunFFTReusesBuffers(t *testing.T) {
	b, s := openMock(t, Config{})
	count := func() int {
		n := 0
		for _, c := range b.Calls() {
			if c == "clCreateBuffer" {
				n++
			}
		}
		return n
	}
	_, err := s.RunFFT(ones(64))
	require.NoError(t, err)
	_, err = s.RunFFT(ones(64))
	require.NoError(t, err)
	assert.Equal(t, 2, count())

	_, err = s.RunFFT(ones(512))
	require.NoError(t, err)
	assert.Equal(t, 4, count())
	assert.Equal(t, 5, b.Live(), "context, queue, kernel and the two current buffers")
}

func TestRunFFTBarrierProtocol(t *testing.T) {
	pass := []string{"clSetKernelArg", "clSetKernelArg", "clSetKernelArg", "clSetKernelArg", "clEnqueueNDRangeKernel"}
	for _, tt := range []struct {
		n      int
		passes int
	}{{64, 2}, {4, 0}} {
		b, s := openMock(t, Config{})
		// The first run allocates the buffers; the second reuses them.
		_, err := s.RunFFT(ones(tt.n))
		require.NoError(t, err)
		before := len(b.Calls())
		_, err = s.RunFFT(ones(tt.n))
		require.NoError(t, err)

		want := []string{"clEnqueueWriteBuffer", "clFinish"}
		for i := 0; i < tt.passes; i++ {
			want = append(want, pass...)
		}
		want = append(want, "clFinish", "clEnqueueReadBuffer", "clFinish")
		assert.Equal(t, want, b.Calls()[before:], "n=%d", tt.n)
	}
}
