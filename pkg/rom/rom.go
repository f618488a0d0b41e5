// Package rom reads program images into machine memory.
package rom

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/asm"
	"gochip8/pkg/cpu"
	"gochip8/pkg/utils"
)

var (
	ErrOpen     = errors.New("opening rom")
	ErrEmptyROM = errors.New("rom is empty")
	ErrAssemble = errors.New("assembling rom source")
)

// SourceExtensions are the file extensions treated as assembly source.
var SourceExtensions = []string{".c8asm", ".asm"}

// Load reads the file at path into program memory and returns the number of
// bytes loaded. Assembly sources are assembled first. The logger may be nil.
func Load(c *cpu.CPU, path string, logger *log.Logger) (int, error) {
	if utils.HasExt(path, SourceExtensions...) {
		return LoadSource(c, path, logger)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	return LoadReader(c, f, logger)
}

// LoadReader copies at most cpu.MaxROMSize bytes from r into program memory.
// Anything past that is dropped and the truncation is logged.
func LoadReader(c *cpu.CPU, r io.Reader, logger *log.Logger) (int, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(cpu.MaxROMSize)+1))
	if err != nil {
		return 0, fmt.Errorf("reading rom: %w", err)
	}
	if len(data) == 0 {
		return 0, ErrEmptyROM
	}
	if len(data) > cpu.MaxROMSize {
		data = data[:cpu.MaxROMSize]
		if logger != nil {
			logger.Info("rom truncated to fit program memory", log.Int("bytes", cpu.MaxROMSize))
		}
	}

	if err := c.LoadROM(data); err != nil {
		return 0, err
	}
	if logger != nil {
		logger.Debug("rom loaded", log.Int("bytes", len(data)), log.Hex("start", cpu.ProgramStart))
	}
	return len(data), nil
}

// LoadSource assembles the source file at path and loads the result.
func LoadSource(c *cpu.CPU, path string, logger *log.Logger) (int, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	program, _, err := asm.Assemble(string(src))
	if err != nil {
		return 0, fmt.Errorf("%w %s: %w", ErrAssemble, path, err)
	}
	if len(program) == 0 {
		return 0, ErrEmptyROM
	}
	if err := c.LoadROM(program); err != nil {
		return 0, err
	}
	if logger != nil {
		logger.Debug("assembled rom loaded", log.String("source", path), log.Int("bytes", len(program)))
	}
	return len(program), nil
}
