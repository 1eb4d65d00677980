package main

import (
	"flag"
	"strings"

	"clfft/device"
	"clfft/kernels"
	"clfft/pipeline"
)

// Command-line flags. The two positional arguments, the transform size N and
// the platform filter, are read in main.
var (
	// deviceFlag narrows the search to devices whose name contains it.
	deviceFlag = flag.String("device", "", "select only devices whose name contains this string")

	// ordinalFlag picks the n-th matching device across all matching platforms.
	ordinalFlag = flag.Int("ordinal", 0, "zero-based index among the matching devices")

	profilingFlag = flag.Bool("profiling", false, "create the command queue with profiling enabled")

	// kernelDirFlag loads <kernel>.cl from a directory instead of the embedded source.
	kernelDirFlag = flag.String("kernel-dir", "", "directory holding <kernel>.cl (empty uses the built-in source)")

	kernelFlag = flag.String("kernel", kernels.Radix8, "kernel entry point")

	buildOptionsFlag = flag.String("build-options", "", "options passed to the OpenCL compiler")

	// localSizeFlag caps the work-group size of every pass.
	localSizeFlag = flag.Int("local-size", pipeline.DefaultLocalWorkSize, "maximum work-group size")

	// strictFlag rejects sizes that are not a power of eight.
	strictFlag = flag.Bool("strict", false, "reject sizes whose log2 is not a multiple of three")

	backendFlag = flag.String("backend", defaultBackend, "compute backend ("+strings.Join(device.Backends(), ", ")+")")

	// inputFlag replaces the constant (1,1) input with the samples of a WAV file.
	inputFlag = flag.String("input", "", "WAV file whose mono-mixed samples become the real parts of the input")

	verifyFlag = flag.Bool("verify", false, "compare the device result with a host DFT and report the max abs error")

	metricsFileFlag = flag.String("metrics-file", "", "write prometheus metrics in text format to this file")

	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")

	// listDevicesFlag prints the device table and exits without running a transform.
	listDevicesFlag = flag.Bool("list-devices", false, "print every platform and device and exit")

	logLevelFlag = flag.String("log-level", "warn", "log level (debug, info, warn, error)")

	// quietFlag suppresses the result lines.
	quietFlag = flag.Bool("quiet", false, "do not print the transformed samples")

	viewFlag = flag.Bool("view", false, "open a window showing the magnitude spectrum")
)
