// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// lc3 emulator and assembler.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ezrec/lc3/cpu"
	"github.com/ezrec/lc3/emulator"
)

func main() {
	var cli struct {
		Run runCmd `cmd:"" default:"1" help:"Run an LC-3 object image."`
		Asm asmCmd `cmd:"" help:"Assemble LC-3 source into an object image."`
	}

	ctx := kong.Parse(&cli)
	err := ctx.Run(&kong.Context{})
	ctx.FatalIfErrorf(err)
}

type runCmd struct {
	Verbose bool   `short:"v" help:"Verbose mode."`
	Image   string `arg:"" type:"existingfile" help:"Path to the .obj image."`
}

func (r *runCmd) Run(ctx *kong.Context) error {
	image, err := os.ReadFile(r.Image)
	if err != nil {
		return err
	}

	emu := emulator.NewEmulator()
	emu.Verbose = r.Verbose
	emu.Terminal.Input = os.Stdin
	emu.Terminal.Output = os.Stdout

	if err = emu.Load(image); err != nil {
		return fmt.Errorf("%v: %w", r.Image, err)
	}

	// Feed keys through as they are typed when attached to a tty.
	if restore, rawErr := enterRaw(os.Stdin.Fd()); rawErr == nil {
		defer restore()
	}

	if err = emu.Run(); err != nil {
		return err
	}

	fmt.Println("\nProgram halted")

	return nil
}

type asmCmd struct {
	Verbose bool   `short:"v" help:"Verbose mode."`
	Output  string `short:"o" help:"Output .obj path; defaults to the source path with an .obj extension."`
	Source  string `arg:"" type:"existingfile" help:"Path to the .asm source."`
}

func (a *asmCmd) Run(ctx *kong.Context) error {
	inf, err := os.Open(a.Source)
	if err != nil {
		return err
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: a.Verbose}

	// Machine constants (KBSR, PC_START, trap vectors) are visible to
	// the source as equates.
	for key, value := range emulator.NewEmulator().Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(inf)
	if err != nil {
		return fmt.Errorf("%v: %w", a.Source, err)
	}

	output := a.Output
	if output == "" {
		output = strings.TrimSuffix(a.Source, filepath.Ext(a.Source)) + ".obj"
	}

	return os.WriteFile(output, prog.Binary(), 0o644)
}
