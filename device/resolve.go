package device

import (
	"strings"

	"go.uber.org/zap"
)

// Selector picks a device by optional platform and device name fragments and
// a zero-based ordinal among the matches.
type Selector struct {
	// Platform is matched as a substring of the platform vendor; empty matches all.
	Platform string
	// Device is matched as a substring of the device name; empty matches all.
	Device string
	// Ordinal skips that many matches in platform-major, device-minor order.
	Ordinal   int
	Profiling bool
}

// Target is the context and queue bound to the resolved device.
type Target struct {
	Platform Platform
	Device   Device
	Context  Context
	Queue    Queue
}

// Release releases the queue and then the context.
func (t *Target) Release() error {
	var firstErr error
	if t.Queue != nil {
		if err := t.Queue.Release(); err != nil {
			firstErr = err
		}
		t.Queue = nil
	}
	if t.Context != nil {
		if err := t.Context.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
		t.Context = nil
	}
	return firstErr
}

func matches(name, filter string) bool {
	return filter == "" || strings.Contains(name, filter)
}

// Resolve selects the device described by sel and creates a context and a
// command queue on it. It returns ErrDeviceNotFound when the enumeration is
// exhausted without reaching the requested ordinal.
func Resolve(b Backend, sel Selector, log *zap.Logger) (*Target, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if sel.Ordinal < 0 {
		return nil, &APIError{Op: "Resolve", Status: StatusInvalidValue}
	}
	platforms, err := b.Platforms()
	if err != nil {
		return nil, wrapStatus("clGetPlatformIDs", err)
	}
	idx := sel.Ordinal
	for _, p := range platforms {
		if !matches(p.Vendor(), sel.Platform) {
			continue
		}
		devices, err := p.Devices()
		if err != nil {
			return nil, wrapStatus("clGetDeviceIDs", err)
		}
		for _, dev := range devices {
			if !matches(dev.Name(), sel.Device) {
				continue
			}
			if idx > 0 {
				idx--
				continue
			}
			return bind(b, p, dev, sel.Profiling, log)
		}
	}
	return nil, ErrDeviceNotFound
}

func bind(b Backend, p Platform, dev Device, profiling bool, log *zap.Logger) (*Target, error) {
	ctx, err := b.NewContext(p, dev)
	if err != nil {
		return nil, wrapStatus("clCreateContext", err)
	}
	queue, err := ctx.NewQueue(profiling)
	if err != nil {
		_ = ctx.Release()
		return nil, wrapStatus("clCreateCommandQueue", err)
	}
	log.Debug("device resolved",
		zap.String("platform", p.Name()),
		zap.String("device", dev.Name()),
		zap.Bool("profiling", profiling))
	return &Target{Platform: p, Device: dev, Context: ctx, Queue: queue}, nil
}

// wrapStatus names op in err unless err already is an APIError.
func wrapStatus(op string, err error) error {
	if _, ok := err.(*APIError); ok {
		return err
	}
	return newAPIError(op, StatusUnknown, err)
}
