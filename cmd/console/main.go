package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/retroenv/retrogolib/app"
	rlog "github.com/retroenv/retrogolib/log"

	"gochip8/pkg/config"
	"gochip8/pkg/console"
	"gochip8/pkg/cpu"
	"gochip8/pkg/rom"
	"gochip8/pkg/runner"
	"gochip8/pkg/utils"
)

type options struct {
	romPath string
	cycles  int
	hold    int
	strict  bool
	debug   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.romPath, "rom", "", "ROM or assembly source to run")
	flag.IntVar(&opts.cycles, "cycles", config.DefaultCyclesPerFrame, "instructions per frame")
	flag.IntVar(&opts.hold, "hold", console.DefaultHoldFrames, "frames a key stays down after it is typed")
	flag.BoolVar(&opts.strict, "strict", false, "stop on unknown opcodes")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging on stderr")
	flag.Parse()

	if opts.romPath == "" && flag.NArg() > 0 {
		opts.romPath = flag.Arg(0)
	}
	if opts.romPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx := app.Context()
	// Log output would tear the raw mode display, so only errors are shown
	// unless debugging.
	logger := config.CreateLogger(opts.debug, !opts.debug)

	if err := run(ctx, opts, logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options, logger *rlog.Logger) error {
	fullPath, _, err := utils.GetPathInfo(opts.romPath)
	if err != nil {
		return fmt.Errorf("invalid ROM path: %w", err)
	}

	vm := cpu.NewCPU(cpu.WithLogger(logger))
	if _, err := rom.Load(vm, fullPath, logger); err != nil {
		return err
	}

	keypad := console.NewKeypad(console.DefaultKeyMap, opts.hold)
	con, err := console.Open(os.Stdin, os.Stdout, keypad, logger)
	if err != nil {
		return err
	}

	r := runner.New(vm, runner.Config{
		CyclesPerFrame: opts.cycles,
		Strict:         opts.strict,
		StallFrames:    config.DefaultStallFrames,
	}, logger)

	runErr := r.Run(ctx, con)
	if err := con.Close(); err != nil {
		logger.Error("restoring terminal failed", rlog.Err(err))
	}
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, runner.ErrStalled) {
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("cycles=%d frames=%d PC=0x%03X\n", r.Cycles(), r.Frames(), vm.PC)
	return nil
}
