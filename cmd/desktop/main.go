package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/app"
	rlog "github.com/retroenv/retrogolib/log"

	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/rom"
	"gochip8/pkg/runner"
	"gochip8/pkg/statsview"
	"gochip8/pkg/utils"
)

// keyMap maps each hex key to the host key that drives it, using the same
// 1234/QWER/ASDF/ZXCV layout as the console front end.
var keyMap = [cpu.KeyCount]ebiten.Key{
	0x1: ebiten.KeyDigit1, 0x2: ebiten.KeyDigit2, 0x3: ebiten.KeyDigit3, 0xC: ebiten.KeyDigit4,
	0x4: ebiten.KeyQ, 0x5: ebiten.KeyW, 0x6: ebiten.KeyE, 0xD: ebiten.KeyR,
	0x7: ebiten.KeyA, 0x8: ebiten.KeyS, 0x9: ebiten.KeyD, 0xE: ebiten.KeyF,
	0xA: ebiten.KeyZ, 0x0: ebiten.KeyX, 0xB: ebiten.KeyC, 0xF: ebiten.KeyV,
}

type Game struct {
	ctx     context.Context
	vm      *cpu.CPU
	runner  *runner.Runner
	logger  *rlog.Logger
	romPath string
	scale   int

	displayImg *ebiten.Image // reused 64×32 canvas
	pressed    func(ebiten.Key) bool
}

func NewGame(ctx context.Context, vm *cpu.CPU, r *runner.Runner, logger *rlog.Logger, romPath string, scale int) *Game {
	return &Game{
		ctx:     ctx,
		vm:      vm,
		runner:  r,
		logger:  logger,
		romPath: romPath,
		scale:   scale,
		pressed: ebiten.IsKeyPressed,
	}
}

func (g *Game) PollKeys(keys *[cpu.KeyCount]bool) {
	for i, k := range keyMap {
		keys[i] = g.pressed(k)
	}
}

func (g *Game) Present(display *[cpu.DisplaySize]byte) error {
	if g.displayImg == nil {
		g.displayImg = ebiten.NewImage(cpu.DisplayWidth, cpu.DisplayHeight)
	}
	g.displayImg.WritePixels(g.vm.FramebufferRGBA(cpu.DefaultOn, cpu.DefaultOff))
	return nil
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.screenshot()
	}

	done, err := g.runner.Tick(g)
	if err != nil {
		return err
	}
	if done {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) screenshot() {
	name := utils.ReplaceExt(g.romPath, time.Now().Format("-20060102-150405")+".png")
	if err := g.vm.SaveScreenshot(name, g.scale); err != nil {
		g.logger.Error("saving screenshot failed", rlog.Err(err))
		return
	}
	g.logger.Info("screenshot saved", rlog.String("file", name))
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.displayImg == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.displayImg, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.DisplayWidth * g.scale, cpu.DisplayHeight * g.scale
}

func main() {
	romPath := flag.String("rom", "", "ROM or assembly source to run")
	scale := flag.Int("scale", config.DefaultScale, "window scale factor")
	cycles := flag.Int("cycles", config.DefaultCyclesPerFrame, "instructions per frame")
	strict := flag.Bool("strict", false, "stop on unknown opcodes")
	debug := flag.Bool("debug", false, "enable debug logging")
	trace := flag.Bool("trace", false, "log every executed instruction")
	stats := flag.Bool("statsview", false, "serve runtime statistics (requires the statsview build tag)")
	flag.Parse()

	if *romPath == "" && flag.NArg() > 0 {
		*romPath = flag.Arg(0)
	}
	if *romPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	fullPath, _, err := utils.GetPathInfo(*romPath)
	if err != nil {
		log.Fatalf("Invalid ROM path: %v", err)
	}

	// Cancelled on SIGINT/SIGTERM; Update ends the game on the next tick.
	ctx := app.Context()
	logger := config.CreateLogger(*debug || *trace, false)

	if *stats {
		if !statsview.Available() {
			log.Fatalf("statsview not available in this build; rebuild with -tags statsview")
		}
		statsview.Launch(os.Stdout, config.DefaultStatsAddr)
	}

	vm := cpu.NewCPU(cpu.WithLogger(logger), cpu.WithTrace(*trace))
	n, err := rom.Load(vm, fullPath, logger)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}
	logger.Info("rom loaded", rlog.String("file", fullPath), rlog.Int("bytes", n))

	r := runner.New(vm, runner.Config{
		CyclesPerFrame: *cycles,
		Strict:         *strict,
	}, logger)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.DisplayWidth**scale, cpu.DisplayHeight**scale)
	ebiten.SetWindowTitle(fmt.Sprintf("gochip8 - %s", *romPath))
	ebiten.SetTPS(r.Config().FrameRate)

	game := NewGame(ctx, vm, r, logger, fullPath, *scale)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
