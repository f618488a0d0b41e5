//go:build !js

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/asm"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/rom"
	"gochip8/pkg/runner"
	"gochip8/pkg/utils"
)

type options struct {
	cycles uint64
	strict bool
	trace  bool
	screen string
}

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output ROM file path (default: input with .ch8 extension)")
	runProgram := flag.Bool("run", false, "run the assembled ROM headless")
	runBinPath := flag.String("run-bin", "", "run an existing ROM file headless")
	cycles := flag.Uint64("cycles", 1000, "number of instructions to execute when running")
	strict := flag.Bool("strict", false, "stop on unknown opcodes")
	debug := flag.Bool("debug", false, "enable debug logging")
	trace := flag.Bool("trace", false, "log every executed instruction (implies -debug)")
	quiet := flag.Bool("quiet", false, "only log errors")
	screenshot := flag.String("screenshot", "", "write the final display to this PNG file")
	flag.Parse()

	ctx := app.Context()
	logger := config.CreateLogger(*debug || *trace, *quiet)

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}

	assembledOutput := ""
	if *inPath != "" {
		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}

		n, err := assembleFile(*inPath, output)
		if err != nil {
			logger.Fatal("assembly failed", log.String("input", *inPath), log.Err(err))
		}

		fmt.Printf("assembled %d bytes -> %s\n", n, output)
		assembledOutput = output
	}

	if *inPath == "" && *runBinPath == "" && !*runProgram {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -run to run assembled output, or -run-bin <file> to run an existing ROM")
		flag.Usage()
		os.Exit(2)
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	opts := options{
		cycles: *cycles,
		strict: *strict,
		trace:  *trace,
		screen: *screenshot,
	}
	if err := runHeadless(ctx, runTarget, opts, logger, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Fatal("run failed", log.String("rom", runTarget), log.Err(err))
	}
}

func defaultOutputPath(inPath string) string {
	return utils.ReplaceExt(inPath, ".ch8")
}

func assembleFile(inPath, outPath string) (int, error) {
	source, err := os.ReadFile(inPath)
	if err != nil {
		return 0, err
	}
	code, _, err := asm.Assemble(string(source))
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(outPath, code, 0o644); err != nil {
		return 0, err
	}
	return len(code), nil
}

// runHeadless executes a ROM without a display and prints the final state.
// A program that ends in a jump to itself stops early without error.
func runHeadless(ctx context.Context, path string, opts options, logger *log.Logger, out io.Writer) error {
	vm := cpu.NewCPU(cpu.WithLogger(logger), cpu.WithTrace(opts.trace))
	if _, err := rom.Load(vm, path, logger); err != nil {
		return err
	}

	r := runner.New(vm, runner.Config{
		Strict:      opts.strict,
		StallFrames: 1,
	}, logger)

	err := r.RunCycles(ctx, opts.cycles)
	if err != nil && !errors.Is(err, runner.ErrStalled) {
		return err
	}

	fmt.Fprint(out, vm.String())
	fmt.Fprintf(out,
		"run complete (%s): cycles=%d PC=0x%03X I=0x%03X SP=%d DT=%d ST=%d V=% X\n",
		path,
		r.Cycles(),
		vm.PC,
		vm.I,
		vm.SP,
		vm.DT,
		vm.ST,
		vm.V[:],
	)

	if opts.screen != "" {
		if err := vm.SaveScreenshot(opts.screen, config.DefaultScale); err != nil {
			return fmt.Errorf("writing screenshot: %w", err)
		}
	}
	return nil
}
