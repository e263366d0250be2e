// Command lc3vm loads one or more LC-3 image files and runs them to
// completion against the host terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/k0kubun/pp/v3"

	"github.com/mossandro/lc3vm/internal/loader"
	"github.com/mossandro/lc3vm/internal/term"
	"github.com/mossandro/lc3vm/internal/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	fs := flag.NewFlagSet("lc3vm", flag.ContinueOnError)
	trace := fs.Bool("trace", false, "pretty-print register state after every instruction")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: lc3vm [-trace] image1.obj [image2.obj ...]")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	images := fs.Args()
	if len(images) == 0 {
		fs.Usage()
		return 1
	}

	console, err := term.New()
	if err != nil {
		logger.Error("failed to initialize terminal", "error", err)
		return 1
	}
	defer console.Close()

	machine := vm.NewMachine(console)

	for _, path := range images {
		if err := loader.LoadFile(machine, path); err != nil {
			logger.Error("failed to load image", "path", path, "error", err)
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *trace {
		err = runTraced(ctx, machine)
	} else {
		err = machine.Run(ctx)
	}

	console.Flush()

	if err == nil {
		return 0
	}

	var stepErr *vm.StepError
	if errors.As(err, &stepErr) {
		logger.Error("run aborted", "kind", stepErr.Kind.String(), "pc", fmt.Sprintf("0x%04x", stepErr.PC), "detail", stepErr.Detail)
	} else {
		logger.Error("run aborted", "error", err)
	}
	return 1
}

// runTraced mirrors Machine.Run's loop but pretty-prints register state
// after every step - a plain, non-interactive execution log, not an
// interactive debugger.
func runTraced(ctx context.Context, m *vm.Machine) error {
	printer := pp.New()
	printer.SetColoringEnabled(false)
	printer.SetOutput(os.Stderr)

	for {
		select {
		case <-ctx.Done():
			return &vm.StepError{Kind: vm.HostInterrupt, PC: m.PC(), Err: ctx.Err()}
		default:
		}

		outcome, err, regs := m.StepTraced(ctx)
		printer.Println(regs)

		switch outcome {
		case vm.OutcomeHalt:
			return nil
		case vm.OutcomeAbort:
			return err
		}
	}
}
