// Package pipeline drives a multi-pass radix-8 Stockham FFT on a device
// resolved and compiled by package device.
//
// A Session owns every device object of a run: the context, the queue, the
// kernel and the two ping-pong buffers. It is not safe for concurrent use.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clfft/device"
	"clfft/kernels"
)

const (
	// DefaultLocalWorkSize is the work-group size of every pass.
	DefaultLocalWorkSize = 512

	radix     = 8
	radixBits = 3
	// sampleBytes is the size of one interleaved float32 real/imaginary pair.
	sampleBytes = 8
)

var (
	// ErrInvalidLength is returned for sizes that are not a positive power of two.
	ErrInvalidLength = errors.New("clfft/pipeline: length must be a positive power of two")

	// ErrUnsupportedLength is returned in strict mode for sizes that are not a
	// power of eight.
	ErrUnsupportedLength = errors.New("clfft/pipeline: length must be a power of eight")

	// ErrSessionClosed is returned when a closed Session is used.
	ErrSessionClosed = errors.New("clfft/pipeline: session closed")
)

// Config describes the device, the kernel and the dispatch geometry of a
// Session.
type Config struct {
	Selector device.Selector

	// KernelDir holds <Entry>.cl; empty uses the embedded source.
	KernelDir    string
	Entry        string
	BuildOptions string

	// LocalWorkSize caps the work-group size; zero means DefaultLocalWorkSize.
	LocalWorkSize int

	// Strict rejects sizes whose log2 is not a multiple of three instead of
	// leaving the residual bits undecomposed.
	Strict bool

	Metrics *Metrics
}

// Session is the set of device objects bound for one run.
type Session struct {
	cfg    Config
	log    *zap.Logger
	runID  string
	target *device.Target
	kernel device.Kernel
	bufs   pingPong
	n      int
	closed bool
}

// Open resolves the device, loads the kernel source and builds the kernel.
// Whatever was created before a failure is released again.
func Open(b device.Backend, cfg Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Entry == "" {
		cfg.Entry = kernels.Radix8
	}
	if cfg.LocalWorkSize <= 0 {
		cfg.LocalWorkSize = DefaultLocalWorkSize
	}
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	target, err := device.Resolve(b, cfg.Selector, log)
	if err != nil {
		cfg.Metrics.fail(err)
		return nil, fmt.Errorf("resolving device: %w", err)
	}
	source, err := kernels.Load(cfg.KernelDir, cfg.Entry)
	if err != nil {
		_ = target.Release()
		return nil, err
	}
	kernel, err := device.Build(target.Context, source, cfg.Entry, cfg.BuildOptions, log)
	if err != nil {
		_ = target.Release()
		cfg.Metrics.fail(err)
		return nil, fmt.Errorf("building kernel: %w", err)
	}
	log.Info("session opened",
		zap.String("platform", target.Platform.Name()),
		zap.String("device", target.Device.Name()),
		zap.String("kernel", cfg.Entry))
	return &Session{
		cfg:    cfg,
		log:    log,
		runID:  runID,
		target: target,
		kernel: kernel,
	}, nil
}

// RunID identifies the session in logs.
func (s *Session) RunID() string { return s.runID }

// Device returns the device the session is bound to.
func (s *Session) Device() device.Device { return s.target.Device }

// ensureBuffers allocates the two ping-pong buffers for n samples, replacing
// buffers sized for a different n.
func (s *Session) ensureBuffers(n int) error {
	if s.n == n && s.bufs.slots[0] != nil {
		s.bufs.reset()
		return nil
	}
	if err := s.bufs.release(); err != nil {
		return err
	}
	s.n = 0
	for i := range s.bufs.slots {
		buf, err := s.target.Context.NewBuffer(n * sampleBytes)
		if err != nil {
			_ = s.bufs.release()
			return fmt.Errorf("allocating %s buffer: %w", slotName(i), err)
		}
		s.bufs.slots[i] = buf
	}
	s.bufs.reset()
	s.n = n
	return nil
}

// Close releases the kernel, both buffers, the queue and the context in that
// order. Every release is attempted; the first failure is returned.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.kernel != nil {
		keep(s.kernel.Release())
		s.kernel = nil
	}
	keep(s.bufs.release())
	keep(s.target.Release())
	if firstErr != nil {
		s.cfg.Metrics.fail(firstErr)
		s.log.Error("teardown failed", zap.Error(firstErr))
		return fmt.Errorf("releasing session: %w", firstErr)
	}
	s.log.Debug("session closed")
	return nil
}
