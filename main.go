package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"clfft/device"
	"clfft/pipeline"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] N platform_filter\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if !*listDevicesFlag && flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}
	if err := run(os.Stdout, os.Stderr, flag.Args()); err != nil {
		fatal(err)
	}
}

// fatal prints the decoded diagnostic of err and exits.
func fatal(err error) {
	color.New(color.FgHiRed, color.Bold).Fprint(os.Stderr, "clfft: ")
	fmt.Fprintln(os.Stderr, err)
	if status := device.StatusOf(err); status != device.StatusUnknown {
		color.New(color.FgHiBlack).Fprintf(os.Stderr, "status %d: %s\n", int32(status), status)
	}
	os.Exit(1)
}

func run(stdout, stderr io.Writer, args []string) (err error) {
	logger, err := newLogger(*logLevelFlag)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if *cpuProfileFlag != "" {
		stop, err := startCPUProfile(*cpuProfileFlag)
		if err != nil {
			return err
		}
		defer stop()
	}

	backend, err := device.Open(*backendFlag)
	if err != nil {
		return err
	}
	platforms, err := device.Inventory(backend)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	if *listDevicesFlag {
		return renderDeviceTable(stdout, platforms)
	}
	printInventory(stdout, platforms)

	if len(args) != 2 {
		return fmt.Errorf("expected N and platform_filter, got %d arguments", len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("parsing N %q: %w", args[0], err)
	}
	if _, err := pipeline.Log2(n); err != nil {
		return err
	}
	input, err := loadInput(*inputFlag, n)
	if err != nil {
		return fmt.Errorf("loading input: %w", err)
	}

	reg := prometheus.NewRegistry()
	cfg := pipeline.Config{
		Selector: device.Selector{
			Platform:  args[1],
			Device:    *deviceFlag,
			Ordinal:   *ordinalFlag,
			Profiling: *profilingFlag,
		},
		KernelDir:     *kernelDirFlag,
		Entry:         *kernelFlag,
		BuildOptions:  *buildOptionsFlag,
		LocalWorkSize: *localSizeFlag,
		Strict:        *strictFlag,
		Metrics:       pipeline.NewMetrics(reg),
	}
	defer func() {
		if werr := writeMetrics(*metricsFileFlag, reg); werr != nil && err == nil {
			err = werr
		}
	}()

	session, err := pipeline.Open(backend, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	res, err := session.RunFFT(input)
	if err != nil {
		return err
	}
	if !*quietFlag {
		printThroughput(stderr, res)
		if err := printResult(stdout, res.Output); err != nil {
			return err
		}
	}
	if *verifyFlag {
		maxErr, err := verifyResult(input, res.Output)
		if err != nil {
			return err
		}
		logger.Info("result verified", zap.Int("n", n), zap.Float64("max_abs_error", maxErr))
		fmt.Fprintf(stderr, "verify: max abs error %g over %d bins\n", maxErr, n)
	}
	if *viewFlag {
		return showSpectrum(res, session.Device().Name())
	}
	return nil
}

func printThroughput(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "Elapsed time: %fs\n", res.Elapsed.Seconds())
	fmt.Fprintf(w, "Performance: %.2f Gflops\n", res.GFLOPS)
}

// printResult writes one "index real imaginary" line per sample.
func printResult(w io.Writer, out []complex64) error {
	bw := bufio.NewWriter(w)
	for i, v := range out {
		fmt.Fprintf(bw, "%d %9f %9f\n", i, real(v), imag(v))
	}
	return bw.Flush()
}
