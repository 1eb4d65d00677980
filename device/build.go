package device

import (
	"go.uber.org/zap"
)

// Build compiles source against ctx and returns the kernel named entry. The
// intermediate program is released before returning, so the caller owns only
// the kernel. A failed build yields a *BuildError carrying the returned
// status, the compiler log and the name of the device the build ran on.
func Build(ctx Context, source, entry, options string, log *zap.Logger) (Kernel, error) {
	if log == nil {
		log = zap.NewNop()
	}
	program, err := ctx.NewProgram(source)
	if err != nil {
		return nil, wrapStatus("clCreateProgramWithSource", err)
	}
	if err := program.Build(options); err != nil {
		defer program.Release()
		return nil, buildFailure(program, entry, StatusOf(err), log)
	}
	kernel, err := program.NewKernel(entry)
	if err != nil {
		_ = program.Release()
		return nil, wrapStatus("clCreateKernel", err)
	}
	if err := program.Release(); err != nil {
		_ = kernel.Release()
		return nil, wrapStatus("clReleaseProgram", err)
	}
	log.Debug("kernel built", zap.String("kernel", entry), zap.String("options", options))
	return kernel, nil
}

// buildFailure collects the build log of the program's device.
func buildFailure(program Program, entry string, status Status, log *zap.Logger) error {
	dev := program.BuildDevice()
	if dev == nil {
		return &APIError{Op: "clGetProgramInfo", Status: StatusInvalidDevice}
	}
	text, err := program.BuildLog(dev)
	if err != nil {
		return wrapStatus("clGetProgramBuildInfo", err)
	}
	log.Error("kernel build failed",
		zap.String("kernel", entry),
		zap.String("device", dev.Name()),
		zap.Stringer("status", status),
		zap.Int("log_bytes", len(text)))
	return &BuildError{Kernel: entry, Device: dev.Name(), Code: status, Log: text}
}
