package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"regvm/assembler"
	"regvm/config"
	"regvm/vm"
)

// REPL reads assembly source line by line, assembles each line against
// one persistent Assembler, appends the resulting bytes to one
// persistent VM's program, and runs a single step. Program, register,
// and heap state are never reset between lines (spec.md §9).
type REPL struct {
	VM        *vm.VM
	Assembler *assembler.Assembler
	History   *CommandHistory

	Out io.Writer

	cfg *config.Config
}

// New creates a REPL with a fresh VM and Assembler, configured from cfg.
func New(cfg *config.Config, out io.Writer) *REPL {
	v := vm.New()
	v.MaxSteps = cfg.Execution.MaxSteps
	if cfg.Execution.InitialHeapCapacity > 0 {
		v.Heap = make([]byte, 0, vm.HeapCapacity(cfg.Execution.InitialHeapCapacity))
	}

	return &REPL{
		VM:        v,
		Assembler: assembler.NewAssembler(),
		History:   NewCommandHistory(cfg.REPL.HistorySize),
		Out:       out,
		cfg:       cfg,
	}
}

// Run drives the read-eval-print loop over in, printing a "> " prompt
// before each line and output/diagnostics to r.Out. It returns when in
// is exhausted or a quit command is issued.
func (r *REPL) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.Out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		r.History.Add(line)

		quit, err := r.handleLine(line)
		if err != nil {
			fmt.Fprintf(r.Out, "error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

// handleLine processes one line of input: a command if it starts with
// ':' or '!', otherwise assembly source fed through the pipeline.
func (r *REPL) handleLine(line string) (quit bool, err error) {
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, ":") || strings.HasPrefix(line, "!") {
		return r.dispatchCommand(line)
	}
	return false, r.assembleAndRun(line)
}

// assembleAndRun implements spec.md §5's REPL loop: assemble, append,
// run_once.
func (r *REPL) assembleAndRun(line string) error {
	code, err := r.Assembler.Assemble(line)
	if err != nil {
		return err
	}
	r.VM.Append(code)

	outcome, err := r.VM.RunOnce()
	if err != nil {
		return err
	}
	switch outcome {
	case vm.StepHalted:
		fmt.Fprintln(r.Out, "halted")
	case vm.StepIllegal:
		fmt.Fprintln(r.Out, "illegal instruction")
	}
	return nil
}
