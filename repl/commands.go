package repl

import (
	"fmt"
	"strings"

	"regvm/vm"
)

// commandHandler implements one REPL command. It returns quit=true to
// end the Run loop.
type commandHandler func(r *REPL, args []string) (quit bool, err error)

var commandTable = map[string]commandHandler{
	":q":         cmdQuit,
	":quit":      cmdQuit,
	":r":         cmdRegisters,
	":registers": cmdRegisters,
	":p":         cmdProgram,
	":program":   cmdProgram,
	":h":         cmdHeap,
	":heap":      cmdHeap,
}

// dispatchCommand looks up and runs the handler for a ':'/'!'-prefixed
// line (spec.md §6). Unknown commands report an error rather than
// falling through to the assembler.
func (r *REPL) dispatchCommand(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	handler, ok := commandTable[name]
	if !ok {
		return false, fmt.Errorf("unknown command: %s", name)
	}
	return handler(r, args)
}

func cmdQuit(r *REPL, _ []string) (bool, error) {
	return true, nil
}

// cmdRegisters implements spec.md §6's ":r"/":registers" register dump.
func cmdRegisters(r *REPL, _ []string) (bool, error) {
	for i, v := range r.VM.Registers {
		fmt.Fprintf(r.Out, "R%d = %d\n", i, v)
	}
	// Remainder stores a DIV result's bit pattern, which may be negative;
	// AsInt32 recovers the signed value instead of printing it as a huge
	// unsigned number.
	fmt.Fprintf(r.Out, "pc = %d, remainder = %d\n", r.VM.PC, vm.AsInt32(r.VM.Remainder))
	return false, nil
}

// cmdProgram implements spec.md §6's ":p"/":program" program dump.
func cmdProgram(r *REPL, _ []string) (bool, error) {
	for i := 0; i < len(r.VM.Program); i += 4 {
		end := i + 4
		if end > len(r.VM.Program) {
			end = len(r.VM.Program)
		}
		fmt.Fprintf(r.Out, "%04d: % X\n", i, r.VM.Program[i:end])
	}
	return false, nil
}

// cmdHeap dumps the heap as a hex byte grid, display.bytes_per_line bytes
// a row (16 if unset). Supplemented beyond spec.md §6's named commands
// (SPEC_FULL.md §4) since the heap is otherwise unobservable from the REPL.
func cmdHeap(r *REPL, _ []string) (bool, error) {
	bytesPerLine := r.cfg.Display.BytesPerLine
	if bytesPerLine <= 0 {
		bytesPerLine = 16
	}
	for i := 0; i < len(r.VM.Heap); i += bytesPerLine {
		end := i + bytesPerLine
		if end > len(r.VM.Heap) {
			end = len(r.VM.Heap)
		}
		fmt.Fprintf(r.Out, "%04d: % X\n", i, r.VM.Heap[i:end])
	}
	return false, nil
}
