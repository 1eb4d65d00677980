// Package device resolves compute devices, binds execution contexts and
// command queues to them, and compiles kernel source into named kernels.
//
// Backends are pluggable: the OpenCL backend is compiled in with the
// "opencl" build tag and the mock backend is always available for tests and
// dry runs. Every failure is returned as an error; nothing in this package
// terminates the process.
package device

// Backend enumerates platforms and creates contexts on their devices.
type Backend interface {
	Name() string
	// Platforms enumerates the platforms fresh on every call.
	Platforms() ([]Platform, error)
	// NewContext creates an execution context owning exactly dev.
	NewContext(p Platform, dev Device) (Context, error)
}

// Platform is a vendor/runtime grouping of devices.
type Platform interface {
	Name() string
	Vendor() string
	Version() string
	Devices() ([]Device, error)
}

// Device is an individually addressable compute unit.
type Device interface {
	Name() string
	Vendor() string
	Type() string
	ComputeUnits() int
	GlobalMemBytes() int64
	MaxWorkGroupSize() int
}

// Context scopes buffers, programs and queues to one device.
type Context interface {
	Device() Device
	NewQueue(profiling bool) (Queue, error)
	// NewBuffer allocates a read/write device buffer of size bytes.
	NewBuffer(size int) (Buffer, error)
	NewProgram(source string) (Program, error)
	Release() error
}

// Queue is an in-order dispatch channel. Enqueue calls return before the
// device finishes; Finish blocks until all previously enqueued work is done.
type Queue interface {
	WriteComplex64(buf Buffer, blocking bool, src []complex64) error
	ReadComplex64(buf Buffer, blocking bool, dst []complex64) error
	EnqueueKernel(k Kernel, global, local int) error
	Finish() error
	Profiling() bool
	Release() error
}

// Buffer is a fixed-size region of device memory.
type Buffer interface {
	Size() int
	Release() error
}

// Program is a compilation unit that may hold several kernels.
type Program interface {
	Build(options string) error
	// BuildDevice returns the device the last build targeted.
	BuildDevice() Device
	BuildLog(dev Device) (string, error)
	NewKernel(name string) (Kernel, error)
	Release() error
}

// Kernel is a named entry point with a fixed argument signature. Arguments
// are Buffer values or int32 scalars.
type Kernel interface {
	Name() string
	SetArg(index int, arg any) error
	Release() error
}

// SetArgs binds args to k in order.
func SetArgs(k Kernel, args ...any) error {
	for i, arg := range args {
		if err := k.SetArg(i, arg); err != nil {
			return err
		}
	}
	return nil
}
