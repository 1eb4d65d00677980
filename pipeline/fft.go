package pipeline

import (
	"fmt"
	"math"
	"math/bits"
	"time"

	"go.uber.org/zap"

	"clfft/device"
)

// PassState is the per-pass dispatch geometry.
type PassState struct {
	Pass        int
	BlockSize   int
	ThreadCount int
}

// Result is the output of one transform and its accounting.
type Result struct {
	Output []complex64
	Passes []PassState
	// ResultSlot is 0 when the output was read from the buffer that received
	// the input and 1 when it was read from the other buffer.
	ResultSlot int
	Elapsed    time.Duration
	GFLOPS     float64
}

// Log2 returns log2(n) for a positive power of two whose per-pass thread
// count n/8 fits the int32 kernel argument.
func Log2(n int) (int, error) {
	if n <= 0 || n&(n-1) != 0 || n/radix > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	return bits.TrailingZeros(uint(n)), nil
}

// PlanPasses returns the floor(log2(n)/3) radix-8 passes for n samples. The
// block size starts at 1 and grows by 8 each pass; every pass runs n/8
// work-items.
func PlanPasses(n int) ([]PassState, error) {
	logN, err := Log2(n)
	if err != nil {
		return nil, err
	}
	count := logN / radixBits
	passes := make([]PassState, 0, count)
	blockSize := 1
	for t := 1; t <= count; t++ {
		passes = append(passes, PassState{Pass: t, BlockSize: blockSize, ThreadCount: n / radix})
		blockSize *= radix
	}
	return passes, nil
}

// GFLOPS estimates throughput as 5 N log2 N floating point operations over
// elapsed. It is zero when no time elapsed.
func GFLOPS(n, logN int, elapsed time.Duration) float64 {
	sec := elapsed.Seconds()
	if sec <= 0 {
		return 0
	}
	return 5 * float64(n) * float64(logN) / sec / 1e9
}

func (s *Session) localSize(threads int) int {
	if threads < s.cfg.LocalWorkSize {
		return threads
	}
	return s.cfg.LocalWorkSize
}

// RunFFT transforms input on the device. The input is written to the src
// buffer behind a full barrier, each pass reads the current-input buffer and
// writes the other one before the roles swap, and the result is read from the
// buffer the last pass wrote.
func (s *Session) RunFFT(input []complex64) (*Result, error) {
	res, err := s.runFFT(input)
	if err != nil {
		s.cfg.Metrics.fail(err)
		return nil, err
	}
	s.cfg.Metrics.observe(res)
	return res, nil
}

func (s *Session) runFFT(input []complex64) (*Result, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	n := len(input)
	logN, err := Log2(n)
	if err != nil {
		return nil, err
	}
	if logN%radixBits != 0 {
		if s.cfg.Strict {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedLength, n)
		}
		s.log.Warn("size is not a power of eight; residual bits are not decomposed",
			zap.Int("n", n), zap.Int("log2n", logN), zap.Int("residual_bits", logN%radixBits))
	}
	passes, err := PlanPasses(n)
	if err != nil {
		return nil, err
	}
	queue := s.target.Queue

	if err := s.ensureBuffers(n); err != nil {
		return nil, err
	}
	if err := queue.WriteComplex64(s.bufs.in(), true, input); err != nil {
		return nil, fmt.Errorf("writing src buffer: %w", err)
	}
	if err := queue.Finish(); err != nil {
		return nil, fmt.Errorf("waiting for input transfer: %w", err)
	}

	start := time.Now()
	for _, pass := range passes {
		if err := s.dispatch(pass); err != nil {
			return nil, fmt.Errorf("enqueueing pass %d: %w", pass.Pass, err)
		}
		s.bufs.swap()
	}
	if err := queue.Finish(); err != nil {
		return nil, fmt.Errorf("waiting for passes: %w", err)
	}
	elapsed := time.Since(start)

	res := &Result{
		Output:     make([]complex64, n),
		Passes:     passes,
		ResultSlot: s.bufs.resultSlot(),
		Elapsed:    elapsed,
		GFLOPS:     GFLOPS(n, logN, elapsed),
	}
	if err := queue.ReadComplex64(s.bufs.slots[res.ResultSlot], true, res.Output); err != nil {
		return nil, fmt.Errorf("reading %s buffer: %w", slotName(res.ResultSlot), err)
	}
	if err := queue.Finish(); err != nil {
		return nil, fmt.Errorf("waiting for output transfer: %w", err)
	}
	s.log.Info("fft complete",
		zap.Int("n", n),
		zap.Int("passes", len(passes)),
		zap.Duration("elapsed", elapsed),
		zap.Float64("gflops", res.GFLOPS),
		zap.String("result_buffer", slotName(res.ResultSlot)))
	return res, nil
}

func (s *Session) dispatch(pass PassState) error {
	err := device.SetArgs(s.kernel, s.bufs.in(), s.bufs.out(), int32(pass.BlockSize), int32(pass.ThreadCount))
	if err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	local := s.localSize(pass.ThreadCount)
	s.log.Debug("dispatching pass",
		zap.Int("pass", pass.Pass),
		zap.Int("block_size", pass.BlockSize),
		zap.Int("global", pass.ThreadCount),
		zap.Int("local", local),
		zap.String("in", slotName(s.bufs.inSlot())),
		zap.String("out", slotName(s.bufs.outSlot())))
	return s.target.Queue.EnqueueKernel(s.kernel, pass.ThreadCount, local)
}
