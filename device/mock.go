package device

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"clfft/kernels"
)

// ArgKind is the type of one kernel parameter.
type ArgKind int

const (
	ArgBuffer ArgKind = iota
	ArgInt32
)

// MockKernel is a host implementation of a device kernel. Run executes one
// work-item; buffer arguments arrive as []complex64 and scalars as int32.
type MockKernel struct {
	Args []ArgKind
	Run  func(args []any, globalID int)
}

var (
	mockKernelMu sync.RWMutex
	mockKernels  = map[string]MockKernel{}
)

// RegisterMockKernel makes a host implementation of entry available to the
// mock backend's kernel extraction.
func RegisterMockKernel(entry string, k MockKernel) {
	mockKernelMu.Lock()
	mockKernels[entry] = k
	mockKernelMu.Unlock()
}

func lookupMockKernel(entry string) (MockKernel, bool) {
	mockKernelMu.RLock()
	defer mockKernelMu.RUnlock()
	k, ok := mockKernels[entry]
	return k, ok
}

func init() {
	RegisterMockKernel(kernels.Radix8, MockKernel{
		Args: []ArgKind{ArgBuffer, ArgBuffer, ArgInt32, ArgInt32},
		Run: func(args []any, id int) {
			kernels.Radix8Pass(args[0].([]complex64), args[1].([]complex64),
				int(args[2].(int32)), int(args[3].(int32)), id)
		},
	})
	Register("mock", func() (Backend, error) { return NewMockBackend(DefaultMockConfig()), nil })
}

// MockDeviceSpec describes one fake device.
type MockDeviceSpec struct {
	Name             string
	Vendor           string
	Type             string
	ComputeUnits     int
	GlobalMemBytes   int64
	MaxWorkGroupSize int
}

// MockPlatformSpec describes one fake platform and its devices.
type MockPlatformSpec struct {
	Name    string
	Vendor  string
	Version string
	Devices []MockDeviceSpec
}

// MockConfig configures a MockBackend.
type MockConfig struct {
	Platforms []MockPlatformSpec
	// Workers is the number of goroutines executing work-groups; zero uses
	// runtime.NumCPU.
	Workers int
}

// DefaultMockConfig returns a single platform exposing one GPU.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		Platforms: []MockPlatformSpec{{
			Name:    "clfft Mock Platform",
			Vendor:  "clfft",
			Version: "OpenCL 1.2 mock",
			Devices: []MockDeviceSpec{{
				Name:             "Mock GPU",
				Vendor:           "clfft",
				Type:             "GPU",
				ComputeUnits:     8,
				GlobalMemBytes:   1 << 30,
				MaxWorkGroupSize: 1024,
			}},
		}},
	}
}

// MockBackend is an in-memory backend that executes registered host kernels.
// It keeps the contracts of a real device: enumeration is fresh on every
// call, the queue defers enqueued work until Finish or a blocking transfer,
// work-group sizes must divide the global size, and handles may be released
// once. Faults can be injected per API operation.
type MockBackend struct {
	cfg MockConfig

	mu           sync.Mutex
	faults       map[string]Status
	calls        []string
	live         int
	enumerations int
}

// NewMockBackend returns a backend exposing the platforms of cfg.
func NewMockBackend(cfg MockConfig) *MockBackend {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &MockBackend{cfg: cfg, faults: map[string]Status{}}
}

// FailOn makes every later call of op fail with status.
func (b *MockBackend) FailOn(op string, status Status) {
	b.mu.Lock()
	b.faults[op] = status
	b.mu.Unlock()
}

// Calls returns the API operations issued so far, in order.
func (b *MockBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Live reports the number of created handles not yet released.
func (b *MockBackend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

// Enumerations reports how many times the platform list was enumerated.
func (b *MockBackend) Enumerations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enumerations
}

func (b *MockBackend) call(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, op)
	if status, ok := b.faults[op]; ok {
		return &APIError{Op: op, Status: status}
	}
	return nil
}

func (b *MockBackend) track(delta int) {
	b.mu.Lock()
	b.live += delta
	b.mu.Unlock()
}

func (b *MockBackend) Name() string { return "mock" }

func (b *MockBackend) Platforms() ([]Platform, error) {
	if err := b.call("clGetPlatformIDs"); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.enumerations++
	b.mu.Unlock()
	out := make([]Platform, len(b.cfg.Platforms))
	for i, spec := range b.cfg.Platforms {
		out[i] = &mockPlatform{backend: b, spec: spec}
	}
	return out, nil
}

func (b *MockBackend) NewContext(_ Platform, dev Device) (Context, error) {
	d, ok := dev.(*mockDevice)
	if !ok || d.backend != b {
		return nil, &APIError{Op: "clCreateContext", Status: StatusInvalidDevice}
	}
	if err := b.call("clCreateContext"); err != nil {
		return nil, err
	}
	b.track(1)
	return &mockContext{backend: b, device: d}, nil
}

type mockPlatform struct {
	backend *MockBackend
	spec    MockPlatformSpec
}

func (p *mockPlatform) Name() string    { return p.spec.Name }
func (p *mockPlatform) Vendor() string  { return p.spec.Vendor }
func (p *mockPlatform) Version() string { return p.spec.Version }

func (p *mockPlatform) Devices() ([]Device, error) {
	if err := p.backend.call("clGetDeviceIDs"); err != nil {
		return nil, err
	}
	out := make([]Device, len(p.spec.Devices))
	for i, spec := range p.spec.Devices {
		out[i] = &mockDevice{backend: p.backend, spec: spec}
	}
	return out, nil
}

type mockDevice struct {
	backend *MockBackend
	spec    MockDeviceSpec
}

func (d *mockDevice) Name() string          { return d.spec.Name }
func (d *mockDevice) Vendor() string        { return d.spec.Vendor }
func (d *mockDevice) Type() string          { return d.spec.Type }
func (d *mockDevice) ComputeUnits() int     { return d.spec.ComputeUnits }
func (d *mockDevice) GlobalMemBytes() int64 { return d.spec.GlobalMemBytes }
func (d *mockDevice) MaxWorkGroupSize() int { return d.spec.MaxWorkGroupSize }

type mockContext struct {
	backend   *MockBackend
	device    *mockDevice
	allocated int64
	released  bool
}

func (c *mockContext) Device() Device { return c.device }

func (c *mockContext) check(op string) error {
	if c.released {
		return &APIError{Op: op, Status: StatusInvalidContext}
	}
	return c.backend.call(op)
}

func (c *mockContext) NewQueue(profiling bool) (Queue, error) {
	if err := c.check("clCreateCommandQueue"); err != nil {
		return nil, err
	}
	c.backend.track(1)
	return &mockQueue{ctx: c, profiling: profiling}, nil
}

func (c *mockContext) NewBuffer(size int) (Buffer, error) {
	if err := c.check("clCreateBuffer"); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, &APIError{Op: "clCreateBuffer", Status: StatusInvalidBufferSize}
	}
	if limit := c.device.spec.GlobalMemBytes; limit > 0 && c.allocated+int64(size) > limit {
		return nil, &APIError{Op: "clCreateBuffer", Status: StatusMemObjectAllocationFailure}
	}
	c.allocated += int64(size)
	c.backend.track(1)
	return &mockBuffer{ctx: c, size: size, data: make([]complex64, size/8)}, nil
}

func (c *mockContext) NewProgram(source string) (Program, error) {
	if err := c.check("clCreateProgramWithSource"); err != nil {
		return nil, err
	}
	if source == "" {
		return nil, &APIError{Op: "clCreateProgramWithSource", Status: StatusInvalidValue}
	}
	c.backend.track(1)
	return &mockProgram{ctx: c, source: source}, nil
}

func (c *mockContext) Release() error {
	if err := c.check("clReleaseContext"); err != nil {
		return err
	}
	c.released = true
	c.backend.track(-1)
	return nil
}

type mockBuffer struct {
	ctx      *mockContext
	size     int
	data     []complex64
	released bool
}

func (b *mockBuffer) Size() int { return b.size }

func (b *mockBuffer) Release() error {
	if b.released {
		return &APIError{Op: "clReleaseMemObject", Status: StatusInvalidMemObject}
	}
	if err := b.ctx.backend.call("clReleaseMemObject"); err != nil {
		return err
	}
	b.released = true
	b.ctx.allocated -= int64(b.size)
	b.data = nil
	b.ctx.backend.track(-1)
	return nil
}

var kernelDecl = regexp.MustCompile(`__kernel\s+void\s+(\w+)\s*\(`)

type mockProgram struct {
	ctx      *mockContext
	source   string
	built    bool
	buildLog string
	released bool
}

func (p *mockProgram) Build(options string) error {
	if err := p.ctx.backend.call("clBuildProgram"); err != nil {
		return err
	}
	for _, opt := range strings.Fields(options) {
		if !strings.HasPrefix(opt, "-") {
			p.buildLog = fmt.Sprintf("<options>: error: unrecognized build option '%s'", opt)
			return &APIError{Op: "clBuildProgram", Status: StatusInvalidBuildOptions}
		}
	}
	if log := compileLog(p.source); log != "" {
		p.buildLog = log
		return &APIError{Op: "clBuildProgram", Status: StatusBuildProgramFailure}
	}
	p.built = true
	return nil
}

// compileLog returns the diagnostics of a structural check of source, empty
// when the source is accepted.
func compileLog(source string) string {
	var diags []string
	var stack []rune
	var lines []int
	pairs := map[rune]rune{')': '(', '}': '{', ']': '['}
	for n, line := range strings.Split(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		for _, r := range line {
			switch r {
			case '(', '{', '[':
				stack = append(stack, r)
				lines = append(lines, n+1)
			case ')', '}', ']':
				if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
					diags = append(diags, fmt.Sprintf("<source>:%d: error: unexpected '%c'", n+1, r))
					continue
				}
				stack = stack[:len(stack)-1]
				lines = lines[:len(lines)-1]
			}
		}
	}
	for i := range stack {
		diags = append(diags, fmt.Sprintf("<source>:%d: error: unmatched '%c'", lines[i], stack[i]))
	}
	if !kernelDecl.MatchString(source) {
		diags = append(diags, "<source>: error: no __kernel function defined")
	}
	return strings.Join(diags, "\n")
}

func (p *mockProgram) BuildDevice() Device { return p.ctx.device }

func (p *mockProgram) BuildLog(dev Device) (string, error) {
	if err := p.ctx.backend.call("clGetProgramBuildInfo"); err != nil {
		return "", err
	}
	if dev != Device(p.ctx.device) {
		return "", &APIError{Op: "clGetProgramBuildInfo", Status: StatusInvalidDevice}
	}
	return p.buildLog, nil
}

func (p *mockProgram) NewKernel(name string) (Kernel, error) {
	if err := p.ctx.backend.call("clCreateKernel"); err != nil {
		return nil, err
	}
	if !p.built {
		return nil, &APIError{Op: "clCreateKernel", Status: StatusInvalidProgramExecutable}
	}
	declared := false
	for _, m := range kernelDecl.FindAllStringSubmatch(p.source, -1) {
		if m[1] == name {
			declared = true
			break
		}
	}
	impl, ok := lookupMockKernel(name)
	if !declared || !ok {
		return nil, &APIError{Op: "clCreateKernel", Status: StatusInvalidKernelName,
			Err: fmt.Errorf("kernel %q not found", name)}
	}
	p.ctx.backend.track(1)
	return &mockKernel{ctx: p.ctx, name: name, impl: impl, args: make([]any, len(impl.Args))}, nil
}

func (p *mockProgram) Release() error {
	if p.released {
		return &APIError{Op: "clReleaseProgram", Status: StatusInvalidProgram}
	}
	if err := p.ctx.backend.call("clReleaseProgram"); err != nil {
		return err
	}
	p.released = true
	p.ctx.backend.track(-1)
	return nil
}

type mockKernel struct {
	ctx      *mockContext
	name     string
	impl     MockKernel
	args     []any
	released bool
}

func (k *mockKernel) Name() string { return k.name }

func (k *mockKernel) SetArg(index int, arg any) error {
	if err := k.ctx.backend.call("clSetKernelArg"); err != nil {
		return err
	}
	if index < 0 || index >= len(k.impl.Args) {
		return &APIError{Op: "clSetKernelArg", Status: StatusInvalidArgIndex}
	}
	switch k.impl.Args[index] {
	case ArgBuffer:
		b, ok := arg.(*mockBuffer)
		if !ok || b.ctx != k.ctx || b.released {
			return &APIError{Op: "clSetKernelArg", Status: StatusInvalidMemObject}
		}
	case ArgInt32:
		if _, ok := arg.(int32); !ok {
			return &APIError{Op: "clSetKernelArg", Status: StatusInvalidArgSize}
		}
	}
	k.args[index] = arg
	return nil
}

func (k *mockKernel) Release() error {
	if k.released {
		return &APIError{Op: "clReleaseKernel", Status: StatusInvalidKernel}
	}
	if err := k.ctx.backend.call("clReleaseKernel"); err != nil {
		return err
	}
	k.released = true
	k.ctx.backend.track(-1)
	return nil
}

// mockQueue records enqueued commands and runs them in submission order when
// the host blocks on the queue.
type mockQueue struct {
	ctx       *mockContext
	profiling bool
	pending   []func() error
	released  bool
}

func (q *mockQueue) Profiling() bool { return q.profiling }

// Pending reports the number of enqueued commands not yet executed.
func (q *mockQueue) Pending() int { return len(q.pending) }

func (q *mockQueue) check(op string) error {
	if q.released {
		return &APIError{Op: op, Status: StatusInvalidCommandQueue}
	}
	return q.ctx.backend.call(op)
}

func (q *mockQueue) submit(blocking bool, cmd func() error) error {
	q.pending = append(q.pending, cmd)
	if blocking {
		return q.drain()
	}
	return nil
}

func (q *mockQueue) drain() error {
	cmds := q.pending
	q.pending = nil
	for _, cmd := range cmds {
		if err := cmd(); err != nil {
			return err
		}
	}
	return nil
}

func (q *mockQueue) transferTarget(op string, buf Buffer, n int) (*mockBuffer, error) {
	b, ok := buf.(*mockBuffer)
	if !ok || b.ctx != q.ctx || b.released {
		return nil, &APIError{Op: op, Status: StatusInvalidMemObject}
	}
	if n == 0 || n > len(b.data) {
		return nil, &APIError{Op: op, Status: StatusInvalidValue}
	}
	return b, nil
}

func (q *mockQueue) WriteComplex64(buf Buffer, blocking bool, src []complex64) error {
	const op = "clEnqueueWriteBuffer"
	if err := q.check(op); err != nil {
		return err
	}
	b, err := q.transferTarget(op, buf, len(src))
	if err != nil {
		return err
	}
	return q.submit(blocking, func() error {
		if b.released {
			return &APIError{Op: op, Status: StatusInvalidMemObject}
		}
		copy(b.data, src)
		return nil
	})
}

func (q *mockQueue) ReadComplex64(buf Buffer, blocking bool, dst []complex64) error {
	const op = "clEnqueueReadBuffer"
	if err := q.check(op); err != nil {
		return err
	}
	b, err := q.transferTarget(op, buf, len(dst))
	if err != nil {
		return err
	}
	return q.submit(blocking, func() error {
		if b.released {
			return &APIError{Op: op, Status: StatusInvalidMemObject}
		}
		copy(dst, b.data)
		return nil
	})
}

func (q *mockQueue) EnqueueKernel(k Kernel, global, local int) error {
	const op = "clEnqueueNDRangeKernel"
	if err := q.check(op); err != nil {
		return err
	}
	kernel, ok := k.(*mockKernel)
	if !ok || kernel.ctx != q.ctx || kernel.released {
		return &APIError{Op: op, Status: StatusInvalidKernel}
	}
	if global <= 0 {
		return &APIError{Op: op, Status: StatusInvalidGlobalWorkSize}
	}
	if local <= 0 || global%local != 0 || local > q.ctx.device.spec.MaxWorkGroupSize {
		return &APIError{Op: op, Status: StatusInvalidWorkGroupSize,
			Err: fmt.Errorf("global %d, local %d", global, local)}
	}
	args := make([]any, len(kernel.args))
	for i, arg := range kernel.args {
		if arg == nil {
			return &APIError{Op: op, Status: StatusInvalidKernelArgs}
		}
		args[i] = arg
	}
	workers := q.ctx.backend.cfg.Workers
	return q.submit(false, func() error {
		resolved := make([]any, len(args))
		for i, arg := range args {
			if b, ok := arg.(*mockBuffer); ok {
				if b.released {
					return &APIError{Op: op, Status: StatusInvalidMemObject}
				}
				resolved[i] = b.data
				continue
			}
			resolved[i] = arg
		}
		runWorkGroups(kernel.impl, resolved, global, local, workers)
		return nil
	})
}

func (q *mockQueue) Finish() error {
	if err := q.check("clFinish"); err != nil {
		return err
	}
	return q.drain()
}

func (q *mockQueue) Release() error {
	if err := q.check("clReleaseCommandQueue"); err != nil {
		return err
	}
	q.released = true
	q.pending = nil
	q.ctx.backend.track(-1)
	return nil
}
