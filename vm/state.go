package vm

// RegisterCount is the fixed number of general-purpose integer
// registers (spec.md §3).
const RegisterCount = 32

// VM is a register-based bytecode interpreter: a fixed register file, a
// program counter, a DIV remainder, a growable heap, and the code
// stream it executes. The VM is long-lived — program grows only by
// external append, never rewound (spec.md §5).
type VM struct {
	Registers [RegisterCount]int32
	PC        uint32
	Remainder uint32
	Heap      []byte
	Program   []byte

	// StepCount counts completed Step calls. MaxSteps, if non-zero,
	// bounds Run so a runaway program (e.g. an unconditional jump loop)
	// cannot hang the host process; it has no equivalent in spec.md and
	// is a supplemented safety rail. Only Run consults it; RunOnce, which
	// the REPL and API drivers call, executes one step regardless.
	StepCount uint64
	MaxSteps  uint64
}

// New creates a VM with empty registers, heap, and program.
func New() *VM {
	return &VM{}
}

// Append adds bytes to the end of the program buffer. It never rewinds
// or truncates existing program bytes.
func (v *VM) Append(code []byte) {
	v.Program = append(v.Program, code...)
}

// Reset clears registers, pc, remainder, and step count, but preserves
// Program and Heap. Intended for REPL/test harnesses that want a clean
// register file without reassembling the program from scratch.
func (v *VM) Reset() {
	v.Registers = [RegisterCount]int32{}
	v.PC = 0
	v.Remainder = 0
	v.StepCount = 0
}
