//go:build opencl

package device

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

func init() {
	Register("opencl", func() (Backend, error) { return openCLBackend{}, nil })
}

// complex64 samples are two float32 values, the layout of an OpenCL float2.
const complex64Bytes = int(unsafe.Sizeof(complex64(0)))

var clStatusByErr = map[error]Status{
	cl.ErrDeviceNotFound:             StatusDeviceNotFound,
	cl.ErrDeviceNotAvailable:         StatusDeviceNotAvailable,
	cl.ErrCompilerNotAvailable:       StatusCompilerNotAvailable,
	cl.ErrMemObjectAllocationFailure: StatusMemObjectAllocationFailure,
	cl.ErrOutOfResources:             StatusOutOfResources,
	cl.ErrOutOfHostMemory:            StatusOutOfHostMemory,
	cl.ErrBuildProgramFailure:        StatusBuildProgramFailure,
	cl.ErrInvalidValue:               StatusInvalidValue,
	cl.ErrInvalidContext:             StatusInvalidContext,
	cl.ErrInvalidCommandQueue:        StatusInvalidCommandQueue,
	cl.ErrInvalidMemObject:           StatusInvalidMemObject,
	cl.ErrInvalidProgram:             StatusInvalidProgram,
	cl.ErrInvalidKernelName:          StatusInvalidKernelName,
	cl.ErrInvalidKernel:              StatusInvalidKernel,
	cl.ErrInvalidArgIndex:            StatusInvalidArgIndex,
	cl.ErrInvalidArgValue:            StatusInvalidArgValue,
	cl.ErrInvalidWorkGroupSize:       StatusInvalidWorkGroupSize,
}

func clError(op string, err error) error {
	status, ok := clStatusByErr[err]
	if !ok {
		status = StatusUnknown
	}
	return &APIError{Op: op, Status: status, Err: err}
}

type openCLBackend struct{}

func (openCLBackend) Name() string { return "opencl" }

func (openCLBackend) Platforms() ([]Platform, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		if strings.Contains(err.Error(), "-1001") {
			err = fmt.Errorf("no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`: %w", err)
		}
		return nil, clError("clGetPlatformIDs", err)
	}
	out := make([]Platform, len(platforms))
	for i, p := range platforms {
		out[i] = clPlatform{p: p}
	}
	return out, nil
}

func (openCLBackend) NewContext(_ Platform, dev Device) (Context, error) {
	d, ok := dev.(clDevice)
	if !ok {
		return nil, &APIError{Op: "clCreateContext", Status: StatusInvalidDevice}
	}
	context, err := cl.CreateContext([]*cl.Device{d.d})
	if err != nil {
		return nil, clError("clCreateContext", err)
	}
	return &clContext{context: context, device: d}, nil
}

type clPlatform struct{ p *cl.Platform }

func (p clPlatform) Name() string    { return p.p.Name() }
func (p clPlatform) Vendor() string  { return p.p.Vendor() }
func (p clPlatform) Version() string { return p.p.Version() }

func (p clPlatform) Devices() ([]Device, error) {
	devices, err := p.p.GetDevices(cl.DeviceTypeAll)
	if err == cl.ErrDeviceNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, clError("clGetDeviceIDs", err)
	}
	out := make([]Device, len(devices))
	for i, d := range devices {
		out[i] = clDevice{d: d}
	}
	return out, nil
}

type clDevice struct{ d *cl.Device }

func (d clDevice) Name() string          { return d.d.Name() }
func (d clDevice) Vendor() string        { return d.d.Vendor() }
func (d clDevice) Type() string          { return d.d.Type().String() }
func (d clDevice) ComputeUnits() int     { return d.d.MaxComputeUnits() }
func (d clDevice) GlobalMemBytes() int64 { return d.d.GlobalMemSize() }
func (d clDevice) MaxWorkGroupSize() int { return d.d.MaxWorkGroupSize() }

type clContext struct {
	context *cl.Context
	device  clDevice
}

func (c *clContext) Device() Device { return c.device }

func (c *clContext) NewQueue(profiling bool) (Queue, error) {
	if c.context == nil {
		return nil, clError("clCreateCommandQueue", ErrReleased)
	}
	var props cl.CommandQueueProperty
	if profiling {
		props |= cl.CommandQueueProfilingEnable
	}
	queue, err := c.context.CreateCommandQueue(c.device.d, props)
	if err != nil {
		return nil, clError("clCreateCommandQueue", err)
	}
	return &clQueue{queue: queue, profiling: profiling}, nil
}

func (c *clContext) NewBuffer(size int) (Buffer, error) {
	if c.context == nil {
		return nil, clError("clCreateBuffer", ErrReleased)
	}
	mem, err := c.context.CreateEmptyBuffer(cl.MemReadWrite, size)
	if err != nil {
		return nil, clError("clCreateBuffer", err)
	}
	return &clBuffer{mem: mem, size: size}, nil
}

func (c *clContext) NewProgram(source string) (Program, error) {
	if c.context == nil {
		return nil, clError("clCreateProgramWithSource", ErrReleased)
	}
	program, err := c.context.CreateProgramWithSource([]string{source})
	if err != nil {
		return nil, clError("clCreateProgramWithSource", err)
	}
	return &clProgram{program: program, device: c.device}, nil
}

func (c *clContext) Release() error {
	if c.context == nil {
		return clError("clReleaseContext", ErrReleased)
	}
	c.context.Release()
	c.context = nil
	return nil
}

type clBuffer struct {
	mem  *cl.MemObject
	size int
}

func (b *clBuffer) Size() int { return b.size }

func (b *clBuffer) Release() error {
	if b.mem == nil {
		return clError("clReleaseMemObject", ErrReleased)
	}
	b.mem.Release()
	b.mem = nil
	return nil
}

type clProgram struct {
	program  *cl.Program
	device   clDevice
	buildLog string
}

func (p *clProgram) Build(options string) error {
	if err := p.program.BuildProgram([]*cl.Device{p.device.d}, options); err != nil {
		if buildErr, ok := err.(cl.BuildError); ok {
			p.buildLog = string(buildErr)
			return &APIError{Op: "clBuildProgram", Status: StatusBuildProgramFailure, Err: err}
		}
		return clError("clBuildProgram", err)
	}
	return nil
}

// BuildDevice reports the context device, the only device of the build.
func (p *clProgram) BuildDevice() Device { return p.device }

func (p *clProgram) BuildLog(_ Device) (string, error) { return p.buildLog, nil }

func (p *clProgram) NewKernel(name string) (Kernel, error) {
	kernel, err := p.program.CreateKernel(name)
	if err != nil {
		return nil, clError("clCreateKernel", err)
	}
	return &clKernel{kernel: kernel, name: name}, nil
}

func (p *clProgram) Release() error {
	if p.program == nil {
		return clError("clReleaseProgram", ErrReleased)
	}
	p.program.Release()
	p.program = nil
	return nil
}

type clKernel struct {
	kernel *cl.Kernel
	name   string
}

func (k *clKernel) Name() string { return k.name }

func (k *clKernel) SetArg(index int, arg any) error {
	var err error
	switch v := arg.(type) {
	case *clBuffer:
		err = k.kernel.SetArgBuffer(index, v.mem)
	case int32:
		err = k.kernel.SetArgInt32(index, v)
	default:
		return &APIError{Op: "clSetKernelArg", Status: StatusInvalidArgValue, Err: fmt.Errorf("unsupported argument type %T", arg)}
	}
	if err != nil {
		return clError("clSetKernelArg", err)
	}
	return nil
}

func (k *clKernel) Release() error {
	if k.kernel == nil {
		return clError("clReleaseKernel", ErrReleased)
	}
	k.kernel.Release()
	k.kernel = nil
	return nil
}

type clQueue struct {
	queue     *cl.CommandQueue
	profiling bool
}

func (q *clQueue) Profiling() bool { return q.profiling }

func (q *clQueue) WriteComplex64(buf Buffer, blocking bool, src []complex64) error {
	b, ok := buf.(*clBuffer)
	if !ok || len(src) == 0 {
		return &APIError{Op: "clEnqueueWriteBuffer", Status: StatusInvalidValue}
	}
	ev, err := q.queue.EnqueueWriteBuffer(b.mem, blocking, 0, len(src)*complex64Bytes, unsafe.Pointer(&src[0]), nil)
	if err != nil {
		return clError("clEnqueueWriteBuffer", err)
	}
	ev.Release()
	return nil
}

func (q *clQueue) ReadComplex64(buf Buffer, blocking bool, dst []complex64) error {
	b, ok := buf.(*clBuffer)
	if !ok || len(dst) == 0 {
		return &APIError{Op: "clEnqueueReadBuffer", Status: StatusInvalidValue}
	}
	ev, err := q.queue.EnqueueReadBuffer(b.mem, blocking, 0, len(dst)*complex64Bytes, unsafe.Pointer(&dst[0]), nil)
	if err != nil {
		return clError("clEnqueueReadBuffer", err)
	}
	ev.Release()
	return nil
}

func (q *clQueue) EnqueueKernel(k Kernel, global, local int) error {
	kernel, ok := k.(*clKernel)
	if !ok {
		return &APIError{Op: "clEnqueueNDRangeKernel", Status: StatusInvalidKernel}
	}
	ev, err := q.queue.EnqueueNDRangeKernel(kernel.kernel, nil, []int{global}, []int{local}, nil)
	if err != nil {
		return clError("clEnqueueNDRangeKernel", err)
	}
	ev.Release()
	return nil
}

func (q *clQueue) Finish() error {
	if err := q.queue.Finish(); err != nil {
		return clError("clFinish", err)
	}
	return nil
}

func (q *clQueue) Release() error {
	if q.queue == nil {
		return clError("clReleaseCommandQueue", ErrReleased)
	}
	q.queue.Release()
	q.queue = nil
	return nil
}
